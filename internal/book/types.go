// Package book implements the deterministic limit-order-book state machine:
// L1/L2/L3 market-by-price and market-by-order data with the aggregation
// and integrity rules of §4.1, grounded on the teacher's
// internal/core/matching order book (heap-based price priority) but
// reworked onto a price-ordered ladder (github.com/google/btree) because
// the spec requires an ordered map, not a priority heap, as the ladder's
// backing structure (§3, "Ladder").
package book

import "github.com/tradecore/corebus/internal/ids"

// Side is the side of the book an order rests on.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// BookType selects the granularity of data the book maintains (§3).
type BookType uint8

const (
	L1_MBP BookType = iota // top of book only
	L2_MBP                 // aggregated by price level
	L3_MBO                 // individual orders, by order id
)

func (t BookType) String() string {
	switch t {
	case L1_MBP:
		return "L1_MBP"
	case L2_MBP:
		return "L2_MBP"
	case L3_MBO:
		return "L3_MBO"
	default:
		return "UNKNOWN"
	}
}

// Action is the kind of mutation a Delta carries (§3).
type Action uint8

const (
	Add Action = iota
	Update
	Delete
	Clear
)

func (a Action) String() string {
	switch a {
	case Add:
		return "ADD"
	case Update:
		return "UPDATE"
	case Delete:
		return "DELETE"
	case Clear:
		return "CLEAR"
	default:
		return "UNKNOWN"
	}
}

// RecordFlags are the per-update bit flags from §3.
type RecordFlags uint8

const (
	F_TOB  RecordFlags = 1 << 0 // top-of-book update
	F_MBP  RecordFlags = 1 << 1 // market-by-price semantics
	F_LAST RecordFlags = 1 << 2 // end-of-atomic-batch
)

func (f RecordFlags) Has(bit RecordFlags) bool { return f&bit != 0 }

// Order is a single resting book order: (side, price, size, order_id).
// OrderId encoding depends on book type and is assigned by normalizeOrderId
// before the order ever reaches a Ladder (§4.1).
type Order struct {
	Side    Side
	Price   ids.Price
	Size    ids.Quantity
	OrderId uint64
	TsEvent int64
	TsInit  int64

	seq uint64 // insertion sequence assigned on Add; level order is FIFO by position
}

// Exposure returns price * size as a float64.
func (o *Order) Exposure() float64 {
	return o.Price.AsFloat() * o.Size.AsFloat()
}

// Delta is one inbound atomic update to the book.
type Delta struct {
	Action   Action
	Order    *Order // nil for a whole-book Clear
	Side     Side   // meaningful for a single-side Clear when Order is nil
	ClearAll bool   // Clear both sides
	Flags    RecordFlags
	Sequence uint64
	TsEvent  int64
	TsInit   int64
}
