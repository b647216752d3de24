// Package wsworker is the reference WebSocket I/O worker feeding an
// actor.Runner's message stream (§5): a reader goroutine with a silence
// watchdog, exponential reconnect backoff, and inbound-channel backpressure,
// grounded on the teacher's WebSocket connection handling
// (services/websocket/websocket_core.go's read-deadline/pong-handler
// idiom) reworked from a server-side gateway into an outbound venue client.
package wsworker

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tradecore/corebus/internal/adapter"
)

const (
	backoffBase = time.Second
	backoffCap  = 30 * time.Second
	jitterFrac  = 0.10
)

// Options configures a Worker.
type Options struct {
	URL             string
	Log             *zap.Logger
	SilenceTimeout  time.Duration // watchdog: reconnect if no frame in this long
	HighWaterMark   int           // pause reads above this many buffered frames
	LowWaterMark    int           // resume reads once buffered frames drop to this
	Adapter         adapter.Adapter
	OnInbound       func(adapter.Inbound)
	OnTransportErr  func(err error)
	OnReconnected   func() // fires after a successful (re)connect, drives Resubscribe
	InboundCapacity int
}

// Worker owns one WebSocket connection's full lifecycle: connect, read
// pump, silence watchdog, reconnect with backoff, backpressure.
type Worker struct {
	opts Options

	mu       sync.Mutex
	conn     *websocket.Conn
	inbound  chan []byte
	lastRead time.Time
	attempt  int
}

// New constructs a Worker. It does not connect until Run is called.
func New(opts Options) *Worker {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.SilenceTimeout == 0 {
		opts.SilenceTimeout = 30 * time.Second
	}
	if opts.InboundCapacity == 0 {
		opts.InboundCapacity = 4096
	}
	if opts.HighWaterMark == 0 {
		opts.HighWaterMark = opts.InboundCapacity * 3 / 4
	}
	if opts.LowWaterMark == 0 {
		opts.LowWaterMark = opts.InboundCapacity / 4
	}
	return &Worker{
		opts:    opts,
		inbound: make(chan []byte, opts.InboundCapacity),
	}
}

// Run connects and reconnects until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := w.runOnce(ctx); err != nil {
			w.opts.Log.Warn("wsworker connection ended", zap.Error(err))
			if w.opts.OnTransportErr != nil {
				w.opts.OnTransportErr(err)
			}
		}
		if ctx.Err() != nil {
			return
		}
		w.sleepBackoff(ctx)
	}
}

func (w *Worker) runOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.opts.URL, nil)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.conn = conn
	w.attempt = 0
	w.lastRead = time.Now()
	w.mu.Unlock()

	if w.opts.OnReconnected != nil {
		w.opts.OnReconnected()
	}

	watchdogCtx, cancelWatchdog := context.WithCancel(ctx)
	defer cancelWatchdog()
	go w.watchdog(watchdogCtx, conn)

	return w.readPump(ctx, conn)
}

// watchdog closes the connection if no frame (including protocol pings) has
// arrived within SilenceTimeout, forcing the read pump to exit and a
// reconnect to begin (§5 "Cancellation and timeouts").
func (w *Worker) watchdog(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(w.opts.SilenceTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.mu.Lock()
			silent := time.Since(w.lastRead)
			w.mu.Unlock()
			if silent > w.opts.SilenceTimeout {
				w.opts.Log.Warn("wsworker silence watchdog tripped, closing connection",
					zap.Duration("silent_for", silent))
				conn.Close()
				return
			}
		}
	}
}

func (w *Worker) readPump(ctx context.Context, conn *websocket.Conn) error {
	conn.SetPongHandler(func(string) error {
		w.mu.Lock()
		w.lastRead = time.Now()
		w.mu.Unlock()
		return nil
	})
	defaultPing := conn.PingHandler()
	conn.SetPingHandler(func(appData string) error {
		w.mu.Lock()
		w.lastRead = time.Now()
		w.mu.Unlock()
		return defaultPing(appData)
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		w.mu.Lock()
		w.lastRead = time.Now()
		w.mu.Unlock()

		w.applyBackpressure()

		select {
		case w.inbound <- frame:
		case <-ctx.Done():
			return ctx.Err()
		}

		if w.opts.Adapter != nil {
			msg, err := w.opts.Adapter.Decode(frame)
			if err != nil {
				w.opts.Log.Warn("wsworker decode failed, dropping frame", zap.Error(err))
				continue
			}
			if msg == nil {
				continue // unknown frame, dropped not fatal (§4.5)
			}
			if w.opts.OnInbound != nil {
				w.opts.OnInbound(msg)
			}
		}
	}
}

// applyBackpressure pauses the caller (the read pump itself) while the
// inbound channel sits above HighWaterMark, resuming once it drains to
// LowWaterMark (§5 "Backpressure").
func (w *Worker) applyBackpressure() {
	if len(w.inbound) <= w.opts.HighWaterMark {
		return
	}
	for len(w.inbound) > w.opts.LowWaterMark {
		time.Sleep(time.Millisecond)
	}
}

func (w *Worker) sleepBackoff(ctx context.Context) {
	w.mu.Lock()
	w.attempt++
	attempt := w.attempt
	w.mu.Unlock()

	delay := backoffBase << uint(attempt-1)
	if delay > backoffCap || delay <= 0 {
		delay = backoffCap
	}
	jitter := time.Duration(float64(delay) * jitterFrac * (rand.Float64()*2 - 1))
	wait := delay + jitter

	w.opts.Log.Info("wsworker reconnecting after backoff", zap.Duration("wait", wait), zap.Int("attempt", attempt))

	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}

// Send encodes and writes an outbound canonical message.
func (w *Worker) Send(msg adapter.Outbound) error {
	frames, err := w.opts.Adapter.Encode(msg)
	if err != nil {
		return err
	}
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()
	if conn == nil {
		return websocket.ErrCloseSent
	}
	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, f); err != nil {
			return err
		}
	}
	return nil
}
