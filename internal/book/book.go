package book

import (
	"fmt"
	"strings"

	"github.com/tradecore/corebus/internal/ids"
)

// CrossedBookPolicy decides what happens when applying a delta would leave
// the book crossed (best bid >= best ask). The book never decides this
// itself (§4.1 edge case: "crossed book").
type CrossedBookPolicy uint8

const (
	// RejectCrossed refuses the mutation and returns a BookIntegrityError;
	// the book is left exactly as it was before the offending delta.
	RejectCrossed CrossedBookPolicy = iota
	// AllowCrossed applies the mutation anyway. Useful while replaying raw
	// exchange feeds that can be transiently crossed mid-update.
	AllowCrossed
)

// OrderBook is two Ladders (bids, asks) plus the bookkeeping needed to
// apply the wire-level Delta stream deterministically (§4.1).
type OrderBook struct {
	InstrumentId ids.InstrumentId
	BookType     BookType
	Precision    uint8

	Bids *Ladder
	Asks *Ladder

	Policy CrossedBookPolicy

	sequence uint64
	seq      uint64 // order insertion sequence counter
	tsLast   int64
}

// NewOrderBook constructs an empty book for one instrument.
func NewOrderBook(instrumentId ids.InstrumentId, bookType BookType, precision uint8) *OrderBook {
	return &OrderBook{
		InstrumentId: instrumentId,
		BookType:     bookType,
		Precision:    precision,
		Bids:         NewLadder(true),
		Asks:         NewLadder(false),
		Policy:       RejectCrossed,
	}
}

func (b *OrderBook) ladderFor(side Side) *Ladder {
	if side == Buy {
		return b.Bids
	}
	return b.Asks
}

// ApplyDelta applies a single delta. Sequence must be monotonically
// increasing; an out-of-order delta is rejected (§4.1 edge case: "stale
// sequence"). On any error the book is left exactly as it was beforehand.
func (b *OrderBook) ApplyDelta(d *Delta) error {
	return b.ApplyDeltas([]*Delta{d})
}

// ApplyDeltas applies a batch atomically: either every delta in the batch
// lands, or none does. A batch is one logical unit delimited by F_LAST on
// its final delta (§9 Open Question, resolved: validate only once at
// batch end, not after every intermediate delta, so a transiently-crossed
// intermediate state within one exchange message does not get rejected).
func (b *OrderBook) ApplyDeltas(deltas []*Delta) error {
	for _, d := range deltas {
		if d.Sequence != 0 && b.sequence != 0 && d.Sequence <= b.sequence {
			return &InvalidBookOperation{Msg: fmt.Sprintf("stale sequence %d, last applied %d", d.Sequence, b.sequence)}
		}
	}

	snapshot := b.clone()
	var lastSeq uint64
	var lastTs int64
	for i, d := range deltas {
		wantCheck := d.Flags.Has(F_LAST) || i == len(deltas)-1
		if err := b.applyDeltaNoCheck(d); err != nil {
			*b = *snapshot
			return err
		}
		if wantCheck {
			if err := b.checkCrossed(); err != nil {
				*b = *snapshot
				return err
			}
		}
		if d.Sequence != 0 {
			lastSeq = d.Sequence
		}
		lastTs = d.TsEvent
	}
	if lastSeq != 0 {
		b.sequence = lastSeq
	}
	b.tsLast = lastTs
	return nil
}

func (b *OrderBook) applyDeltaNoCheck(d *Delta) error {
	switch d.Action {
	case Clear:
		if d.ClearAll {
			b.Bids.Clear()
			b.Asks.Clear()
		} else {
			b.ladderFor(d.Side).Clear()
		}
		return nil
	case Add:
		normalizeOrderId(b.BookType, d.Order, d.Flags)
		d.Order.seq = b.nextSeq()
		if b.BookType == L3_MBO && !d.Flags.Has(F_TOB) && !d.Flags.Has(F_MBP) {
			return b.ladderFor(d.Order.Side).Add(d.Order)
		}
		return b.ladderFor(d.Order.Side).Upsert(d.Order)
	case Update:
		normalizeOrderId(b.BookType, d.Order, d.Flags)
		return b.ladderFor(d.Order.Side).Update(d.Order)
	case Delete:
		normalizeOrderId(b.BookType, d.Order, d.Flags)
		return b.ladderFor(d.Order.Side).Delete(d.Order.OrderId)
	default:
		return &InvalidBookOperation{Msg: fmt.Sprintf("unknown action %v", d.Action)}
	}
}

// clone makes a copy sufficient to roll back a failed batch: new Ladders
// holding a copy of every resting order, since a size update mutates the
// resting Order value in place.
func (b *OrderBook) clone() *OrderBook {
	cp := *b
	cp.Bids = cloneLadder(b.Bids)
	cp.Asks = cloneLadder(b.Asks)
	return &cp
}

func cloneLadder(l *Ladder) *Ladder {
	out := NewLadder(l.desc)
	for _, lv := range l.Depth(l.Len()) {
		for _, o := range lv.Orders() {
			cp := *o
			out.Add(&cp)
		}
	}
	return out
}

func (b *OrderBook) nextSeq() uint64 {
	b.seq++
	return b.seq
}

func (b *OrderBook) checkCrossed() error {
	bid := b.Bids.Best()
	ask := b.Asks.Best()
	if bid == nil || ask == nil {
		return nil
	}
	if bid.PriceRaw < ask.PriceRaw {
		return nil
	}
	if b.Policy == AllowCrossed {
		return nil
	}
	return newBookCrossedError(bid.Price(), ask.Price())
}

// BestBid returns the best bid price, or ids.UndefPrice if the bid side is empty.
func (b *OrderBook) BestBid() ids.Price {
	lv := b.Bids.Best()
	if lv == nil {
		return ids.UndefPrice
	}
	return lv.Price()
}

// BestAsk returns the best ask price, or ids.UndefPrice if the ask side is empty.
func (b *OrderBook) BestAsk() ids.Price {
	lv := b.Asks.Best()
	if lv == nil {
		return ids.UndefPrice
	}
	return lv.Price()
}

// Mid returns (best_bid + best_ask) / 2, or ids.UndefPrice if either side is empty.
func (b *OrderBook) Mid() ids.Price {
	bid, ask := b.Bids.Best(), b.Asks.Best()
	if bid == nil || ask == nil {
		return ids.UndefPrice
	}
	mid := (bid.Price().AsFloat() + ask.Price().AsFloat()) / 2
	return ids.PriceFromFloat(mid, b.Precision)
}

// Spread returns best_ask - best_bid, or ids.UndefPrice if either side is empty.
func (b *OrderBook) Spread() ids.Price {
	bid, ask := b.Bids.Best(), b.Asks.Best()
	if bid == nil || ask == nil {
		return ids.UndefPrice
	}
	return ask.Price().Sub(bid.Price())
}

// Depth returns up to n price levels per side, best-first.
func (b *OrderBook) Depth(n int) (bids, asks []*Level) {
	return b.Bids.Depth(n), b.Asks.Depth(n)
}

// VolumeAt returns the total resting size at price on side.
func (b *OrderBook) VolumeAt(side Side, priceRaw int64) (ids.Quantity, bool) {
	return b.ladderFor(side).VolumeAt(priceRaw, b.Precision)
}

// OrdersAt returns the FIFO order list resting at price on side.
func (b *OrderBook) OrdersAt(side Side, priceRaw int64) []*Order {
	return b.ladderFor(side).OrdersAt(priceRaw)
}

// PrettyPrint renders the top n levels of both sides for debugging/logging.
func (b *OrderBook) PrettyPrint(n int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "OrderBook(%s, %s)\n", b.InstrumentId.String(), b.BookType.String())
	asks, bids := b.Asks.Depth(n), b.Bids.Depth(n)
	for i := len(asks) - 1; i >= 0; i-- {
		lv := asks[i]
		fmt.Fprintf(&sb, "  ASK %10s  %s\n", lv.Price().String(), lv.TotalSize().String())
	}
	fmt.Fprintf(&sb, "  --------\n")
	for _, lv := range bids {
		fmt.Fprintf(&sb, "  BID %10s  %s\n", lv.Price().String(), lv.TotalSize().String())
	}
	return sb.String()
}
