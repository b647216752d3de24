package book

import (
	"github.com/google/btree"

	"github.com/tradecore/corebus/internal/ids"
)

const btreeDegree = 32

// BookPrice is the Ladder's sort key: the raw fixed-point price, compared
// directly since every order in one OrderBook shares a precision.
type BookPrice struct {
	Raw int64
}

type priceItem struct {
	price BookPrice
	level *Level
}

func (a *priceItem) Less(b btree.Item) bool {
	return a.price.Raw < b.(*priceItem).price.Raw
}

// Ladder is an ordered map from BookPrice to BookLevel (§3). Bid ladders
// iterate descending (highest price first), ask ladders ascending —
// grounded on the b-tree-backed order book side from the pack's perp-dex
// example (x/orderbook/keeper/orderbook_btree.go), which stores prices
// ascending internally and flips iteration direction with a `desc` flag
// rather than keeping two tree orderings.
type Ladder struct {
	tree       *btree.BTree
	desc       bool
	orderIndex map[uint64]int64 // order id -> the price raw it currently rests at
}

// NewLadder constructs an empty ladder. desc=true for the bid side.
func NewLadder(desc bool) *Ladder {
	return &Ladder{
		tree:       btree.New(btreeDegree),
		desc:       desc,
		orderIndex: make(map[uint64]int64),
	}
}

func (l *Ladder) levelAt(priceRaw int64) *Level {
	item := l.tree.Get(&priceItem{price: BookPrice{Raw: priceRaw}})
	if item == nil {
		return nil
	}
	return item.(*priceItem).level
}

func (l *Ladder) getOrCreateLevel(priceRaw int64, precision uint8) *Level {
	if lv := l.levelAt(priceRaw); lv != nil {
		return lv
	}
	lv := newLevel(priceRaw, precision)
	l.tree.ReplaceOrInsert(&priceItem{price: BookPrice{Raw: priceRaw}, level: lv})
	return lv
}

func (l *Ladder) removeLevelIfEmpty(priceRaw int64) {
	if lv := l.levelAt(priceRaw); lv != nil && lv.Len() == 0 {
		l.tree.Delete(&priceItem{price: BookPrice{Raw: priceRaw}})
	}
}

// Best returns the best (highest bid / lowest ask) level, or nil if empty.
func (l *Ladder) Best() *Level {
	var item btree.Item
	if l.desc {
		item = l.tree.Max()
	} else {
		item = l.tree.Min()
	}
	if item == nil {
		return nil
	}
	return item.(*priceItem).level
}

// Len returns the number of distinct price levels.
func (l *Ladder) Len() int { return l.tree.Len() }

// Depth returns up to n levels, best-first.
func (l *Ladder) Depth(n int) []*Level {
	if n <= 0 {
		return nil
	}
	levels := make([]*Level, 0, n)
	visit := func(item btree.Item) bool {
		levels = append(levels, item.(*priceItem).level)
		return len(levels) < n
	}
	if l.desc {
		l.tree.Descend(visit)
	} else {
		l.tree.Ascend(visit)
	}
	return levels
}

// Add inserts a brand-new order. Returns ErrAlreadyExists if its order id
// already rests in this ladder (L3 duplicate-add integrity rule).
func (l *Ladder) Add(order *Order) error {
	if _, exists := l.orderIndex[order.OrderId]; exists {
		return ErrAlreadyExists
	}
	lv := l.getOrCreateLevel(order.Price.Raw, order.Price.Precision)
	lv.add(order)
	l.orderIndex[order.OrderId] = order.Price.Raw
	return nil
}

// Upsert inserts order if its id is unseen, otherwise updates it in place.
// Used for L1/L2 books, where a duplicate Add overwrites rather than errors.
func (l *Ladder) Upsert(order *Order) error {
	if _, exists := l.orderIndex[order.OrderId]; exists {
		return l.Update(order)
	}
	return l.Add(order)
}

// Update mutates the size (and, if changed, the price) of an existing order.
func (l *Ladder) Update(order *Order) error {
	priceRaw, exists := l.orderIndex[order.OrderId]
	if !exists {
		return ErrNotFound
	}
	if priceRaw == order.Price.Raw {
		l.levelAt(priceRaw).update(order.OrderId, order.Size)
		return nil
	}
	oldLevel := l.levelAt(priceRaw)
	oldLevel.remove(order.OrderId)
	l.removeLevelIfEmpty(priceRaw)

	newLevel := l.getOrCreateLevel(order.Price.Raw, order.Price.Precision)
	newLevel.add(order)
	l.orderIndex[order.OrderId] = order.Price.Raw
	return nil
}

// Delete removes an order by id.
func (l *Ladder) Delete(orderId uint64) error {
	priceRaw, exists := l.orderIndex[orderId]
	if !exists {
		return ErrNotFound
	}
	l.levelAt(priceRaw).remove(orderId)
	l.removeLevelIfEmpty(priceRaw)
	delete(l.orderIndex, orderId)
	return nil
}

// Clear empties the ladder entirely.
func (l *Ladder) Clear() {
	l.tree.Clear(false)
	l.orderIndex = make(map[uint64]int64)
}

// OrdersAt returns the FIFO order list resting at price, or nil.
func (l *Ladder) OrdersAt(priceRaw int64) []*Order {
	lv := l.levelAt(priceRaw)
	if lv == nil {
		return nil
	}
	return lv.Orders()
}

// VolumeAt returns the aggregate size resting at price.
func (l *Ladder) VolumeAt(priceRaw int64, precision uint8) (ids.Quantity, bool) {
	lv := l.levelAt(priceRaw)
	if lv == nil {
		return ids.Quantity{}, false
	}
	return lv.TotalSize(), true
}
