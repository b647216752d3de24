// Package adapter defines the canonical message vocabulary and the
// encode/decode/factory contract venue adapters must satisfy (§4.5),
// grounded on the teacher's websocket/HTTP worker split (services/websocket,
// internal/architecture/fx/resilience) but reworked so the adapter itself
// carries no venue-specific wire logic — that is an external collaborator
// per §1 — only the canonical shapes both sides of the contract share.
package adapter

import "github.com/tradecore/corebus/internal/ids"

// Outbound is anything an adapter's Encode can turn into wire frames.
type Outbound interface{ isOutbound() }

// Inbound is anything an adapter's Decode can produce from a wire frame.
type Inbound interface{ isInbound() }

// Adapter is the venue-facing half of the contract (§4.5). Concrete
// implementations (wsworker, httpworker) live outside this package; this
// interface is what the actor runtime and factory depend on.
type Adapter interface {
	// Encode renders an outbound canonical message into one or more wire
	// frames. A multi-frame return is one atomic logical message.
	Encode(msg Outbound) ([][]byte, error)
	// Decode parses a wire frame into a canonical inbound message. Unknown
	// frames return (nil, nil): dropped, not fatal (§4.5).
	Decode(frame []byte) (Inbound, error)
}

// Factory selects a concrete Adapter implementation by URL prefix.
type Factory func(url string) (Adapter, error)

var factories = map[string]Factory{}

// Register associates prefix (e.g. "wss://", "https://binance.") with a
// Factory. Re-registering the same prefix overwrites the previous one —
// intentional, since adapters are registered once at process init.
func Register(prefix string, f Factory) { factories[prefix] = f }

// New resolves url against every registered prefix and constructs the
// matching Adapter. Returns an error if no prefix matches.
func New(url string) (Adapter, error) {
	for prefix, f := range factories {
		if len(url) >= len(prefix) && url[:len(prefix)] == prefix {
			return f(url)
		}
	}
	return nil, errNoAdapterFor(url)
}

type errNoAdapterFor string

func (e errNoAdapterFor) Error() string { return "adapter: no factory registered for url: " + string(e) }

// ComponentId identifies the adapter instance a message originated from or
// is addressed to, letting the actor runtime route without string parsing.
type ComponentId = ids.ComponentId
