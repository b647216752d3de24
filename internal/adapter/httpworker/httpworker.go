// Package httpworker is the reference HTTP I/O worker for request/response
// venue operations (order submission, REST queries), grounded on the
// teacher's circuit-breaker wrapping
// (internal/architecture/fx/resilience/circuit_breaker.go's
// sony/gobreaker.Settings/ReadyToTrip/OnStateChange pattern) reworked around
// a single outbound HTTP client rather than an inbound fx-wired dependency.
package httpworker

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tradecore/corebus/internal/adapter"
)

// Options configures a Worker.
type Options struct {
	BaseURL        string
	Log            *zap.Logger
	Client         *http.Client
	RequestTimeout time.Duration
	Adapter        adapter.Adapter
	OnInbound      func(adapter.Inbound)
	ComponentId    adapter.ComponentId

	// RateLimit caps outbound requests per second, 0 disables limiting.
	// Grounded on the teacher's token-bucket rate limiter
	// (internal/trading/mitigation/rate_limiter.go), reworked onto
	// golang.org/x/time/rate directly rather than the teacher's
	// metrics-wrapped variant.
	RateLimit float64
	Burst     int
}

// Worker issues HTTP requests for outbound canonical messages and decodes
// responses back into inbound canonical messages, behind a circuit breaker
// that opens after a failure ratio trips (§5 "Cancellation and timeouts").
type Worker struct {
	opts    Options
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// New constructs a Worker with a breaker named after BaseURL.
func New(opts Options) *Worker {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 5 * time.Second
	}

	w := &Worker{opts: opts}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst == 0 {
			burst = 1
		}
		w.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	w.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "httpworker:" + opts.BaseURL,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			opts.Log.Warn("httpworker circuit breaker state change",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return w
}

// Do encodes msg, issues the HTTP request through the breaker with a
// per-request timeout, and decodes the response. On timeout or transport
// failure it returns a TransportError together with the underlying error,
// and also hands the TransportError to OnInbound (§5).
func (w *Worker) Do(ctx context.Context, method, path string, msg adapter.Outbound) (adapter.Inbound, error) {
	frames, err := w.opts.Adapter.Encode(msg)
	if err != nil {
		return nil, err
	}
	var body []byte
	if len(frames) > 0 {
		body = frames[0]
	}

	reqCtx, cancel := context.WithTimeout(ctx, w.opts.RequestTimeout)
	defer cancel()

	if w.limiter != nil {
		if err := w.limiter.Wait(reqCtx); err != nil {
			te := adapter.TransportError{
				ComponentId: w.opts.ComponentId,
				Message:     "rate limit wait: " + err.Error(),
				TsEvent:     time.Now().UnixNano(),
			}
			if w.opts.OnInbound != nil {
				w.opts.OnInbound(te)
			}
			return te, err
		}
	}

	result, err := w.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(reqCtx, method, w.opts.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		resp, err := w.opts.Client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return io.ReadAll(resp.Body)
	})

	if err != nil {
		te := adapter.TransportError{
			ComponentId: w.opts.ComponentId,
			Message:     err.Error(),
			TsEvent:     time.Now().UnixNano(),
		}
		if w.opts.OnInbound != nil {
			w.opts.OnInbound(te)
		}
		return te, err
	}

	respBody, _ := result.([]byte)
	inbound, err := w.opts.Adapter.Decode(respBody)
	if err != nil {
		return nil, err
	}
	if w.opts.OnInbound != nil && inbound != nil {
		w.opts.OnInbound(inbound)
	}
	return inbound, nil
}

// State reports the breaker's current state, useful for health checks.
func (w *Worker) State() gobreaker.State { return w.cb.State() }
