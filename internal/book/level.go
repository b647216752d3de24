package book

import "github.com/tradecore/corebus/internal/ids"

// Level holds every order resting at a single price, in FIFO insertion
// order (§3, "Book level"). For L1/L2 books a level holds exactly one
// synthetic order, since normalizeOrderId collapses all adds at that
// price/side onto a single order id.
type Level struct {
	PriceRaw  int64
	Precision uint8

	orders []*Order // index 0 is first-in-time
	total  uint64   // sum of orders[i].Size.Raw, at the orders' size precision
}

func newLevel(priceRaw int64, precision uint8) *Level {
	return &Level{PriceRaw: priceRaw, Precision: precision}
}

func (lv *Level) Price() ids.Price { return ids.PriceFromRaw(lv.PriceRaw, lv.Precision) }

func (lv *Level) add(o *Order) {
	lv.orders = append(lv.orders, o)
	lv.total += o.Size.Raw
}

func (lv *Level) update(orderId uint64, newSize ids.Quantity) bool {
	for _, o := range lv.orders {
		if o.OrderId == orderId {
			lv.total = lv.total - o.Size.Raw + newSize.Raw
			o.Size = newSize
			return true
		}
	}
	return false
}

func (lv *Level) remove(orderId uint64) bool {
	for i, o := range lv.orders {
		if o.OrderId == orderId {
			lv.total -= o.Size.Raw
			lv.orders = append(lv.orders[:i], lv.orders[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of distinct orders resting at this level.
func (lv *Level) Len() int { return len(lv.orders) }

// TotalSize is the aggregate resting size at this level.
func (lv *Level) TotalSize() ids.Quantity {
	var precision uint8
	if len(lv.orders) > 0 {
		precision = lv.orders[0].Size.Precision
	}
	return ids.QuantityFromRaw(lv.total, precision)
}

// First returns the first-in-time order at this level, or nil if empty.
func (lv *Level) First() *Order {
	if len(lv.orders) == 0 {
		return nil
	}
	return lv.orders[0]
}

// Orders returns a defensive copy of the level's orders in FIFO order.
func (lv *Level) Orders() []*Order {
	out := make([]*Order, len(lv.orders))
	copy(out, lv.orders)
	return out
}
