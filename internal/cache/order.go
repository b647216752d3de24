// Package cache implements the in-memory order/position/instrument/account
// store with multi-field indexes (§4.2), grounded on the teacher's
// in-memory order book snapshot maps (internal/core/matching/order_book.go's
// GetStats/order lookup pattern) but reworked around arena handles and
// bits-and-blooms/bitset-backed membership sets per §9's indexing note, so
// conjunctive queries intersect bitmaps instead of walking multiple Go maps.
package cache

import (
	"github.com/tradecore/corebus/internal/book"
	"github.com/tradecore/corebus/internal/ids"
)

// OrderStatus is the lifecycle state of a cached order (§4.2, §3 "Lifecycles").
type OrderStatus uint8

const (
	Initialized OrderStatus = iota
	Submitted
	Accepted
	Open
	PartiallyFilled
	Filled
	Canceled
	Rejected
	Expired
	Denied
)

func (s OrderStatus) String() string {
	switch s {
	case Initialized:
		return "INITIALIZED"
	case Submitted:
		return "SUBMITTED"
	case Accepted:
		return "ACCEPTED"
	case Open:
		return "OPEN"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Filled:
		return "FILLED"
	case Canceled:
		return "CANCELED"
	case Rejected:
		return "REJECTED"
	case Expired:
		return "EXPIRED"
	case Denied:
		return "DENIED"
	default:
		return "UNKNOWN"
	}
}

// isOpen reports whether an order in this status rests live on a venue book.
func (s OrderStatus) isOpen() bool {
	return s == Accepted || s == Open || s == PartiallyFilled
}

// isInflight reports whether an order has been sent to the venue but not
// yet confirmed either way (submitted, pending cancel/modify acks land here
// too in the full system; this cross-section only models submission).
func (s OrderStatus) isInflight() bool {
	return s == Submitted
}

// isClosed reports whether an order has reached a terminal state.
func (s OrderStatus) isClosed() bool {
	switch s {
	case Filled, Canceled, Rejected, Expired, Denied:
		return true
	default:
		return false
	}
}

// OrderAny is the cache's order entity (§3 "Cache entities"). It carries
// enough of an order's identity and state for index membership; venue wire
// fields beyond this are an adapter concern, out of scope per §1.
type OrderAny struct {
	ClientOrderId ids.ClientOrderId
	VenueOrderId  ids.VenueOrderId
	TraderId      ids.TraderId
	StrategyId    ids.StrategyId
	InstrumentId  ids.InstrumentId
	Venue         ids.Venue
	Side          book.Side
	Price         ids.Price
	Quantity      ids.Quantity
	Status        OrderStatus
	Emulated      bool
	PositionId    ids.PositionId
	ClientId      ids.ClientId
	TsInit        int64
	TsLastEvent   int64
}
