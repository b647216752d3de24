package cache

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/tradecore/corebus/internal/book"
	"github.com/tradecore/corebus/internal/ids"
)

// orderIndexes holds every secondary index over the order arena: keyed sets
// (venue, instrument, strategy, side) and the three unkeyed status sets
// (open, inflight, emulated). Each is a bitset.BitSet with one bit per arena
// handle, per §9's redesign note, so a conjunctive query over several
// filters intersects bitmaps in O(n/64) instead of walking Go map sets.
type orderIndexes struct {
	byVenue      map[ids.Venue]*bitset.BitSet
	byInstrument map[ids.InstrumentId]*bitset.BitSet
	byStrategy   map[ids.StrategyId]*bitset.BitSet
	bySide       map[book.Side]*bitset.BitSet
	byVenueOrder map[ids.VenueOrderId]uint32 // 1:1, no bitset needed

	open     *bitset.BitSet
	inflight *bitset.BitSet
	emulated *bitset.BitSet
	removed  *bitset.BitSet // tombstoned handles, set only by RemoveOrder (test-only)
}

func newOrderIndexes() *orderIndexes {
	return &orderIndexes{
		byVenue:      make(map[ids.Venue]*bitset.BitSet),
		byInstrument: make(map[ids.InstrumentId]*bitset.BitSet),
		byStrategy:   make(map[ids.StrategyId]*bitset.BitSet),
		bySide:       make(map[book.Side]*bitset.BitSet),
		byVenueOrder: make(map[ids.VenueOrderId]uint32),
		open:         bitset.New(0),
		inflight:     bitset.New(0),
		emulated:     bitset.New(0),
		removed:      bitset.New(0),
	}
}

func setBit(sets map[ids.Venue]*bitset.BitSet, key ids.Venue, handle uint32) {
	bs, ok := sets[key]
	if !ok {
		bs = bitset.New(0)
		sets[key] = bs
	}
	bs.Set(uint(handle))
}

func (ix *orderIndexes) insert(handle uint32, o *OrderAny) {
	setBit(ix.byVenue, o.Venue, handle)
	if bs, ok := ix.byInstrument[o.InstrumentId]; ok {
		bs.Set(uint(handle))
	} else {
		bs := bitset.New(0)
		bs.Set(uint(handle))
		ix.byInstrument[o.InstrumentId] = bs
	}
	if bs, ok := ix.byStrategy[o.StrategyId]; ok {
		bs.Set(uint(handle))
	} else {
		bs := bitset.New(0)
		bs.Set(uint(handle))
		ix.byStrategy[o.StrategyId] = bs
	}
	if bs, ok := ix.bySide[o.Side]; ok {
		bs.Set(uint(handle))
	} else {
		bs := bitset.New(0)
		bs.Set(uint(handle))
		ix.bySide[o.Side] = bs
	}
	if !o.VenueOrderId.IsZero() {
		ix.byVenueOrder[o.VenueOrderId] = handle
	}
	ix.applyStatus(handle, o.Status, o.Emulated)
}

// applyStatus moves handle between the open/inflight/emulated sets to match
// status. Called on insert and on every update_order status transition.
func (ix *orderIndexes) applyStatus(handle uint32, status OrderStatus, emulated bool) {
	setMembership(ix.open, handle, status.isOpen())
	setMembership(ix.inflight, handle, status.isInflight())
	setMembership(ix.emulated, handle, emulated)
}

// remove clears every index's membership for handle, tombstoning it so the
// unfiltered Orders() path skips it too. Test-only, mirroring RemoveOrder.
func (ix *orderIndexes) remove(handle uint32, o *OrderAny) {
	if bs, ok := ix.byVenue[o.Venue]; ok {
		bs.Clear(uint(handle))
	}
	if bs, ok := ix.byInstrument[o.InstrumentId]; ok {
		bs.Clear(uint(handle))
	}
	if bs, ok := ix.byStrategy[o.StrategyId]; ok {
		bs.Clear(uint(handle))
	}
	if bs, ok := ix.bySide[o.Side]; ok {
		bs.Clear(uint(handle))
	}
	if !o.VenueOrderId.IsZero() {
		delete(ix.byVenueOrder, o.VenueOrderId)
	}
	ix.open.Clear(uint(handle))
	ix.inflight.Clear(uint(handle))
	ix.emulated.Clear(uint(handle))
	ix.removed.Set(uint(handle))
}

func setMembership(bs *bitset.BitSet, handle uint32, member bool) {
	if member {
		bs.Set(uint(handle))
	} else {
		bs.Clear(uint(handle))
	}
}

// orderFilter names the optional conjunctive filters for orders(...) (§4.2).
type orderFilter struct {
	Venue        *ids.Venue
	InstrumentId *ids.InstrumentId
	StrategyId   *ids.StrategyId
	Side         *book.Side
}

// candidateSets returns the bitset for each filter actually set, in the
// order the caller supplied them (argument order defines filter priority
// per §4.2, used only as a tiebreak when two sets have equal cardinality).
func (ix *orderIndexes) candidateSets(f orderFilter) []*bitset.BitSet {
	var sets []*bitset.BitSet
	if f.Venue != nil {
		if bs, ok := ix.byVenue[*f.Venue]; ok {
			sets = append(sets, bs)
		} else {
			sets = append(sets, bitset.New(0))
		}
	}
	if f.InstrumentId != nil {
		if bs, ok := ix.byInstrument[*f.InstrumentId]; ok {
			sets = append(sets, bs)
		} else {
			sets = append(sets, bitset.New(0))
		}
	}
	if f.StrategyId != nil {
		if bs, ok := ix.byStrategy[*f.StrategyId]; ok {
			sets = append(sets, bs)
		} else {
			sets = append(sets, bitset.New(0))
		}
	}
	if f.Side != nil {
		if bs, ok := ix.bySide[*f.Side]; ok {
			sets = append(sets, bs)
		} else {
			sets = append(sets, bitset.New(0))
		}
	}
	return sets
}

// resolve applies the smallest-candidate-first intersection algorithm of
// §4.2: pick the smallest set as the base, then intersect the rest, then
// return handles in ascending (insertion) order.
func resolve(sets []*bitset.BitSet) []uint32 {
	if len(sets) == 0 {
		return nil
	}
	base := sets[0]
	for _, s := range sets[1:] {
		if s.Count() < base.Count() {
			base = s
		}
	}
	result := base.Clone()
	for _, s := range sets {
		if s != base {
			result.InPlaceIntersection(s)
		}
	}
	handles := make([]uint32, 0, result.Count())
	for i, ok := result.NextSet(0); ok; i, ok = result.NextSet(i + 1) {
		handles = append(handles, uint32(i))
	}
	return handles
}
