package bus

import (
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/tradecore/corebus/internal/ids"
	cerrors "github.com/tradecore/corebus/pkg/errors"
)

// Handler is anything that can receive a bus message. ID is stable across
// the handler's lifetime and is how Unsubscribe finds it again.
type Handler interface {
	ID() string
	Handle(msg interface{})
}

// HandlerFunc adapts a plain function plus a stable id into a Handler.
type HandlerFunc struct {
	Name string
	Fn   func(msg interface{})
}

func (h HandlerFunc) ID() string             { return h.Name }
func (h HandlerFunc) Handle(msg interface{}) { h.Fn(msg) }

type subscription struct {
	pattern  pattern
	handler  Handler
	priority int
	seq      uint64
}

// Stats is a point-in-time snapshot of bus activity counters.
type Stats struct {
	Published       uint64
	Delivered       uint64
	HandlerPanics   uint64
	UnknownCorrel   uint64
	NoHandlerErrors uint64
}

// Bus is the in-process topic router and point-to-point endpoint registry
// (§4.3). All methods are safe for concurrent use, though the runtime is
// expected to drive Publish/Send/Request/Response from a single event loop
// (§5) — the locking here protects Subscribe/Register happening from setup
// code on another goroutine.
type Bus struct {
	log *zap.Logger

	mu            sync.RWMutex
	subscriptions []*subscription
	nextSeq       uint64
	generation    uint64

	endpoints map[string]Handler

	pendingMu sync.Mutex
	pending   map[string]func(msg interface{})

	cacheMu    sync.Mutex
	cacheGen   uint64
	matchCache map[string][]*subscription

	published       atomic.Uint64
	delivered       atomic.Uint64
	handlerPanics   atomic.Uint64
	unknownCorrel   atomic.Uint64
	noHandlerErrors atomic.Uint64
}

// New constructs an empty bus. A nil logger falls back to zap.NewNop().
func New(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		log:        log,
		endpoints:  make(map[string]Handler),
		pending:    make(map[string]func(msg interface{})),
		matchCache: make(map[string][]*subscription),
	}
}

// Subscribe registers handler against pattern at priority (higher first).
func (b *Bus) Subscribe(rawPattern string, handler Handler, priority int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	b.subscriptions = append(b.subscriptions, &subscription{
		pattern:  compilePattern(rawPattern),
		handler:  handler,
		priority: priority,
		seq:      b.nextSeq,
	})
	b.generation++
}

// Unsubscribe removes the subscription matching pattern and handlerId.
func (b *Bus) Unsubscribe(rawPattern, handlerId string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.subscriptions[:0]
	for _, s := range b.subscriptions {
		if s.pattern.raw == rawPattern && s.handler.ID() == handlerId {
			continue
		}
		out = append(out, s)
	}
	b.subscriptions = out
	b.generation++
}

// Publish delivers msg to every subscription whose pattern matches topic, in
// descending priority then registration order (§4.3). A handler panic is
// recovered, logged, and does not stop delivery to its siblings.
func (b *Bus) Publish(topic string, msg interface{}) {
	b.published.Add(1)
	for _, s := range b.matching(topic) {
		b.deliver(s.handler, msg)
	}
}

func (b *Bus) matching(topic string) []*subscription {
	b.mu.RLock()
	gen := b.generation
	b.mu.RUnlock()

	b.cacheMu.Lock()
	if b.cacheGen != gen {
		b.matchCache = make(map[string][]*subscription)
		b.cacheGen = gen
	}
	if cached, ok := b.matchCache[topic]; ok {
		b.cacheMu.Unlock()
		return cached
	}
	b.cacheMu.Unlock()

	segments := splitTopic(topic)
	b.mu.RLock()
	var matched []*subscription
	for _, s := range b.subscriptions {
		if s.pattern.matches(segments) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].priority != matched[j].priority {
			return matched[i].priority > matched[j].priority
		}
		return matched[i].seq < matched[j].seq
	})

	b.cacheMu.Lock()
	if b.cacheGen == gen {
		b.matchCache[topic] = matched
	}
	b.cacheMu.Unlock()

	return matched
}

func (b *Bus) deliver(h Handler, msg interface{}) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			b.log.Error("bus handler panicked", zap.String("handler", h.ID()), zap.Any("recover", r))
		}
	}()
	h.Handle(msg)
	b.delivered.Add(1)
}

// Register installs handler as the sole receiver for endpoint. Fails with
// AlreadyRegistered if the endpoint already has one.
func (b *Bus) Register(endpoint string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.endpoints[endpoint]; exists {
		return cerrors.New(cerrors.ErrAlreadyRegistered, "endpoint already registered: "+endpoint)
	}
	b.endpoints[endpoint] = handler
	return nil
}

// Deregister removes endpoint's handler, if any.
func (b *Bus) Deregister(endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.endpoints, endpoint)
}

// Send synchronously invokes endpoint's handler. Fails with NoHandler if
// none is registered.
func (b *Bus) Send(endpoint string, msg interface{}) error {
	b.mu.RLock()
	h, exists := b.endpoints[endpoint]
	b.mu.RUnlock()

	if !exists {
		b.noHandlerErrors.Add(1)
		return cerrors.New(cerrors.ErrNoHandler, "no handler registered for endpoint: "+endpoint)
	}
	b.deliver(h, msg)
	return nil
}

// Request sends msg to endpoint and records reply as the callback to invoke
// when a matching Response arrives (§4.3).
func (b *Bus) Request(endpoint string, msg interface{}, correlationId string, reply func(msg interface{})) error {
	b.pendingMu.Lock()
	b.pending[correlationId] = reply
	b.pendingMu.Unlock()

	return b.Send(endpoint, msg)
}

// Response routes result back to the handler that issued the matching
// Request and forgets the correlation id. An unknown correlation id is
// dropped with a warning and a counter increment, per §4.3.
func (b *Bus) Response(correlationId string, result interface{}) {
	b.pendingMu.Lock()
	reply, exists := b.pending[correlationId]
	if exists {
		delete(b.pending, correlationId)
	}
	b.pendingMu.Unlock()

	if !exists {
		b.unknownCorrel.Add(1)
		b.log.Warn("bus response for unknown correlation id", zap.String("correlation_id", correlationId))
		return
	}
	reply(result)
}

// GenerateCorrelationId returns a process-unique correlation id for pairing
// a Request with its later Response.
func GenerateCorrelationId() string {
	return ids.GenerateCorrelationId()
}

// Stats returns a snapshot of bus activity counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published:       b.published.Load(),
		Delivered:       b.delivered.Load(),
		HandlerPanics:   b.handlerPanics.Load(),
		UnknownCorrel:   b.unknownCorrel.Load(),
		NoHandlerErrors: b.noHandlerErrors.Load(),
	}
}

