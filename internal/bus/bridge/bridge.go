// Package bridge mirrors bus traffic onto a NATS subject via watermill, for
// cross-process observers (a risk dashboard, an external logger) that must
// never sit in the critical path of in-process delivery (§1 non-goal:
// "no cross-process clustering of the bus itself" — this is a one-way,
// best-effort fan-out, not a second transport the bus depends on).
//
// Grounded on the teacher's Watermill event bus adapter
// (internal/architecture/cqrs/eventbus/watermill_adapter.go's
// gochannel-publisher-plus-router shape), reworked onto watermill-nats'
// JetStream-less publisher and narrowed from a full CQRS
// event bus down to a fire-and-forget mirror.
package bridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradecore/corebus/internal/bus"
)

// Options configures a Mirror.
type Options struct {
	NatsURL     string
	Subject     string // NATS subject every mirrored message is published under
	Log         *zap.Logger
	QueueDepth  int // buffered envelopes before the mirror starts dropping
	PublishWait time.Duration
}

// Mirror subscribes to a bus.Bus (via its own Handler registration) and
// republishes every delivered message onto NATS asynchronously. A full
// internal queue drops the newly delivered envelope rather than blocking the
// bus goroutine that published it.
type Mirror struct {
	opts      Options
	publisher message.Publisher
	queue     chan envelope
	done      chan struct{}
}

type envelope struct {
	topic   string
	payload []byte
}

// New constructs a Mirror and connects its NATS publisher. The caller
// must call Run to start draining the internal queue.
func New(opts Options) (*Mirror, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.QueueDepth == 0 {
		opts.QueueDepth = 4096
	}
	if opts.PublishWait == 0 {
		opts.PublishWait = 2 * time.Second
	}

	logger := watermill.NewStdLogger(false, false)
	publisher, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         opts.NatsURL,
		Marshaler:   &nats.GobMarshaler{},
		NatsOptions: nil,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &Mirror{
		opts:      opts,
		publisher: publisher,
		queue:     make(chan envelope, opts.QueueDepth),
		done:      make(chan struct{}),
	}, nil
}

// Handler returns a bus.Handler that enqueues every delivered message for
// mirroring. Register it on a bus.Bus subscription with a low priority so
// domain handlers are never delayed waiting on this one.
func (m *Mirror) Handler() bus.Handler {
	return bus.HandlerFunc{
		Name: "bridge.mirror",
		Fn: func(msg interface{}) {
			m.enqueue("corebus.mirror", msg)
		},
	}
}

func (m *Mirror) enqueue(topic string, msg interface{}) {
	payload, err := json.Marshal(msg)
	if err != nil {
		m.opts.Log.Warn("bridge: failed to marshal message for mirroring", zap.Error(err))
		return
	}
	env := envelope{topic: m.opts.Subject, payload: payload}
	select {
	case m.queue <- env:
	default:
		// Queue full: drop the newest envelope rather than block the
		// publishing bus goroutine. The mirror is best-effort only.
		m.opts.Log.Warn("bridge: mirror queue full, dropping envelope")
	}
}

// Run drains the queue and publishes to NATS until ctx is canceled.
func (m *Mirror) Run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-m.queue:
			wmsg := message.NewMessage(uuid.New().String(), env.payload)
			if err := m.publisher.Publish(env.topic, wmsg); err != nil {
				m.opts.Log.Warn("bridge: publish failed, envelope dropped", zap.Error(err))
			}
		}
	}
}

// Close releases the underlying publisher. Safe to call after Run's ctx is
// canceled.
func (m *Mirror) Close() error {
	return m.publisher.Close()
}
