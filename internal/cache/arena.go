package cache

import "github.com/tradecore/corebus/internal/ids"

// orderArena stores OrderAny values behind small-integer handles (§9: "prefer
// arena + small-integer handles ... one u32 per order"). Handle 0 is valid
// here (unlike ids.Symbol) since the arena is never exposed outside the
// package; handles are assigned in strictly increasing insertion order, so
// iterating handles ascending is iterating in insertion order for free.
type orderArena struct {
	orders []OrderAny
	byCOID map[ids.ClientOrderId]uint32
}

func newOrderArena() *orderArena {
	return &orderArena{byCOID: make(map[ids.ClientOrderId]uint32)}
}

func (a *orderArena) handleOf(coid ids.ClientOrderId) (uint32, bool) {
	h, ok := a.byCOID[coid]
	return h, ok
}

func (a *orderArena) get(handle uint32) *OrderAny {
	if int(handle) >= len(a.orders) {
		return nil
	}
	return &a.orders[handle]
}

// insert appends a new order and returns its handle.
func (a *orderArena) insert(o OrderAny) uint32 {
	handle := uint32(len(a.orders))
	a.orders = append(a.orders, o)
	a.byCOID[o.ClientOrderId] = handle
	return handle
}

func (a *orderArena) len() int { return len(a.orders) }
