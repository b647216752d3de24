// Package actor implements the single-threaded cooperative event loop that
// drains the request/response and message streams and dispatches each
// delivered item to completion before taking the next (§4.4), grounded on
// the teacher's worker-pool dispatch pattern (internal/hft and
// internal/performance use panjf2000/ants for bounded concurrent work) but
// reworked around one single-consumer loop per §5's "single-threaded
// cooperative event loop for all domain-state mutation" requirement —
// ants here backs only the Offload escape hatch, never the loop itself.
package actor

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/tradecore/corebus/internal/clock"
)

// Dispatch is invoked once per message or request/response item taken off a
// stream. It must not block for long; long work belongs behind Offload.
type Dispatch func(msg interface{})

// Runner is the cooperative scheduler (§4.4 "Model"). It owns no domain
// state itself — Dispatch callbacks mutate the bus/cache/book on the
// runner's goroutine, satisfying §5's single-writer rule.
type Runner struct {
	log   *zap.Logger
	clock clock.Clock

	messages chan interface{}
	requests chan interface{}
	stop     chan struct{}
	done     chan struct{}

	dispatchMessage Dispatch
	dispatchRequest Dispatch

	stallThreshold time.Duration

	pool *ants.Pool
}

// Options configures a Runner.
type Options struct {
	Log             *zap.Logger
	Clock           clock.Clock
	MessageCapacity int
	RequestCapacity int
	StallThreshold  time.Duration // logged, not enforced, per §4.4
	OffloadPoolSize int
	DispatchMessage Dispatch
	DispatchRequest Dispatch
}

// New constructs a Runner. Panics if DispatchMessage/DispatchRequest are nil
// or OffloadPoolSize creates an invalid ants pool — both are programmer
// errors caught at wiring time, not runtime conditions to recover from.
func New(opts Options) *Runner {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewLiveClock()
	}
	if opts.DispatchMessage == nil || opts.DispatchRequest == nil {
		panic("actor: DispatchMessage and DispatchRequest are required")
	}
	if opts.MessageCapacity == 0 {
		opts.MessageCapacity = 1024
	}
	if opts.RequestCapacity == 0 {
		opts.RequestCapacity = 1024
	}
	if opts.StallThreshold == 0 {
		opts.StallThreshold = 50 * time.Millisecond
	}
	if opts.OffloadPoolSize == 0 {
		opts.OffloadPoolSize = 32
	}

	pool, err := ants.NewPool(opts.OffloadPoolSize, ants.WithNonblocking(false))
	if err != nil {
		panic("actor: failed to construct offload pool: " + err.Error())
	}

	return &Runner{
		log:             opts.Log,
		clock:           opts.Clock,
		messages:        make(chan interface{}, opts.MessageCapacity),
		requests:        make(chan interface{}, opts.RequestCapacity),
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
		dispatchMessage: opts.DispatchMessage,
		dispatchRequest: opts.DispatchRequest,
		stallThreshold:  opts.StallThreshold,
		pool:            pool,
	}
}

// PostMessage enqueues an item onto the message stream (WebSocket frames,
// fired timers). Safe to call from any goroutine.
func (r *Runner) PostMessage(msg interface{}) { r.messages <- msg }

// PostRequest enqueues an item onto the request/response stream (HTTP
// completions). Safe to call from any goroutine.
func (r *Runner) PostRequest(msg interface{}) { r.requests <- msg }

// Offload runs fn on the bounded worker pool instead of the loop goroutine,
// per §4.4's "long-running work must be offloaded" suspension rule. The
// result, if any, should be posted back via PostMessage/PostRequest from fn.
func (r *Runner) Offload(fn func()) error {
	return r.pool.Submit(fn)
}

// Run drains both streams until Stop is called. It blocks the calling
// goroutine; callers typically invoke it via `go runner.Run()`.
func (r *Runner) Run() {
	defer close(r.done)

	for {
		select {
		case <-r.stop:
			return
		case req := <-r.requests:
			r.process(r.dispatchRequest, req)
		case msg := <-r.messages:
			r.process(r.dispatchMessage, msg)
		}
	}
}

// process invokes dispatch to completion, logging if it ran past
// stallThreshold. The loop never preempts a handler (§4.4 "Timers").
func (r *Runner) process(dispatch Dispatch, item interface{}) {
	start := time.Now()
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("actor dispatch panicked", zap.Any("recover", rec))
			}
		}()
		dispatch(item)
	}()

	if elapsed := time.Since(start); elapsed > r.stallThreshold {
		r.log.Warn("actor handler exceeded stall threshold",
			zap.Duration("elapsed", elapsed), zap.Duration("threshold", r.stallThreshold))
	}
}

// Stop signals the loop to exit, waits up to grace for in-flight work to
// finish, cancels outstanding timers, and releases the offload pool (§4.4
// "Cancellation"). If Run is never started, Stop returns only once ctx is
// done. Stop must be called at most once.
func (r *Runner) Stop(ctx context.Context) {
	close(r.stop)

	select {
	case <-r.done:
	case <-ctx.Done():
		r.log.Warn("actor stop grace period elapsed before loop exited")
	}

	r.clock.CancelTimers()
	r.pool.Release()
}
