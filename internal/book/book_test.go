package book_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradecore/corebus/internal/book"
	"github.com/tradecore/corebus/internal/ids"
)

func instrument(t *testing.T, symbol, venue string) ids.InstrumentId {
	t.Helper()
	return ids.NewInstrumentId(symbol, venue)
}

func priceAt(v float64) ids.Price  { return ids.PriceFromFloat(v, 1) }
func qtyAt(v float64) ids.Quantity { return ids.QuantityFromFloat(v, 0) }

func addDelta(side book.Side, price ids.Price, size ids.Quantity, seq uint64) *book.Delta {
	return &book.Delta{
		Action:   book.Add,
		Sequence: seq,
		Order:    &book.Order{Side: side, Price: price, Size: size},
	}
}

// S1 — L2 sequence.
func TestOrderBookL2Sequence(t *testing.T) {
	ob := book.NewOrderBook(instrument(t, "XBTUSD", "BITMEX"), book.L2_MBP, 1)

	require.NoError(t, ob.ApplyDelta(addDelta(book.Buy, priceAt(30000.0), qtyAt(1), 1)))
	assert.Equal(t, 30000.0, ob.BestBid().AsFloat())

	require.NoError(t, ob.ApplyDelta(addDelta(book.Buy, priceAt(29999.5), qtyAt(2), 2)))
	assert.Equal(t, 30000.0, ob.BestBid().AsFloat())
	bids, _ := ob.Depth(2)
	require.Len(t, bids, 2)
	assert.Equal(t, 30000.0, bids[0].Price().AsFloat())
	assert.Equal(t, 1.0, bids[0].TotalSize().AsFloat())
	assert.Equal(t, 29999.5, bids[1].Price().AsFloat())
	assert.Equal(t, 2.0, bids[1].TotalSize().AsFloat())

	require.NoError(t, ob.ApplyDelta(addDelta(book.Sell, priceAt(30001.0), qtyAt(1), 3)))
	assert.Equal(t, 30001.0, ob.BestAsk().AsFloat())
	assert.InDelta(t, 1.0, ob.Spread().AsFloat(), 1e-9)

	update := &book.Delta{
		Action:   book.Update,
		Sequence: 4,
		Order:    &book.Order{Side: book.Buy, Price: priceAt(30000.0), Size: qtyAt(3)},
	}
	require.NoError(t, ob.ApplyDelta(update))
	assert.Equal(t, 3.0, ob.Bids.Best().TotalSize().AsFloat())

	del := &book.Delta{
		Action:   book.Delete,
		Sequence: 5,
		Order:    &book.Order{Side: book.Buy, Price: priceAt(30000.0)},
	}
	require.NoError(t, ob.ApplyDelta(del))
	assert.Equal(t, 29999.5, ob.BestBid().AsFloat())
}

// S2 — L3 tie-break.
func TestOrderBookL3TieBreak(t *testing.T) {
	ob := book.NewOrderBook(instrument(t, "XBTUSD", "BITMEX"), book.L3_MBO, 0)

	add1 := &book.Delta{Action: book.Add, Sequence: 1, Order: &book.Order{
		Side: book.Buy, Price: priceAt0(100), Size: qtyAt(5), OrderId: 1, TsEvent: 1,
	}}
	add2 := &book.Delta{Action: book.Add, Sequence: 2, Order: &book.Order{
		Side: book.Buy, Price: priceAt0(100), Size: qtyAt(5), OrderId: 2, TsEvent: 2,
	}}
	require.NoError(t, ob.ApplyDelta(add1))
	require.NoError(t, ob.ApplyDelta(add2))

	orders := ob.OrdersAt(book.Buy, 100)
	require.Len(t, orders, 2)
	assert.Equal(t, uint64(1), orders[0].OrderId)
	assert.Equal(t, uint64(2), orders[1].OrderId)

	del := &book.Delta{Action: book.Delete, Sequence: 3, Order: &book.Order{
		Side: book.Buy, Price: priceAt0(100), OrderId: 1,
	}}
	require.NoError(t, ob.ApplyDelta(del))

	orders = ob.OrdersAt(book.Buy, 100)
	require.Len(t, orders, 1)
	assert.Equal(t, uint64(2), orders[0].OrderId)
}

func priceAt0(v int64) ids.Price { return ids.PriceFromRaw(v, 0) }

func TestOrderBookCrossedRejected(t *testing.T) {
	ob := book.NewOrderBook(instrument(t, "XBTUSD", "BITMEX"), book.L2_MBP, 1)
	require.NoError(t, ob.ApplyDelta(addDelta(book.Buy, priceAt(100.0), qtyAt(1), 1)))
	require.NoError(t, ob.ApplyDelta(addDelta(book.Sell, priceAt(101.0), qtyAt(1), 2)))

	err := ob.ApplyDelta(addDelta(book.Buy, priceAt(101.5), qtyAt(1), 3))
	require.Error(t, err)
	var crossed *book.BookIntegrityError
	assert.ErrorAs(t, err, &crossed)

	// rejected delta must not have mutated book state
	assert.Equal(t, 100.0, ob.BestBid().AsFloat())
}

func TestOrderBookClearAll(t *testing.T) {
	ob := book.NewOrderBook(instrument(t, "XBTUSD", "BITMEX"), book.L2_MBP, 1)
	require.NoError(t, ob.ApplyDelta(addDelta(book.Buy, priceAt(100.0), qtyAt(1), 1)))
	require.NoError(t, ob.ApplyDelta(addDelta(book.Sell, priceAt(101.0), qtyAt(1), 2)))

	require.NoError(t, ob.ApplyDelta(&book.Delta{Action: book.Clear, ClearAll: true, Sequence: 3}))
	assert.True(t, ob.BestBid().IsUndef())
	assert.True(t, ob.BestAsk().IsUndef())
}

func TestOrderBookVWAPAndImbalance(t *testing.T) {
	ob := book.NewOrderBook(instrument(t, "XBTUSD", "BITMEX"), book.L2_MBP, 1)
	require.NoError(t, ob.ApplyDelta(addDelta(book.Buy, priceAt(100.0), qtyAt(10), 1)))
	require.NoError(t, ob.ApplyDelta(addDelta(book.Buy, priceAt(99.0), qtyAt(10), 2)))
	require.NoError(t, ob.ApplyDelta(addDelta(book.Sell, priceAt(101.0), qtyAt(5), 3)))

	vwap, ok := ob.VWAP(book.Buy, 2)
	require.True(t, ok)
	assert.InDelta(t, 99.5, vwap, 1e-9)

	imbalance, ok := ob.ImbalanceRatio(2)
	require.True(t, ok)
	assert.Greater(t, imbalance, 0.0)
}
