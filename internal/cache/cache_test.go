package cache_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradecore/corebus/internal/book"
	"github.com/tradecore/corebus/internal/cache"
	"github.com/tradecore/corebus/internal/ids"
)

func mkCOID(n int) ids.ClientOrderId {
	return ids.NewClientOrderId(fmt.Sprintf("O-%06d", n))
}

// S3 — Cache index consistency.
func TestCacheIndexConsistency(t *testing.T) {
	c := cache.New()

	venueA := ids.NewVenue("V1")
	venueB := ids.NewVenue("V2")
	instA := ids.NewInstrumentId("A", "V1")
	instB := ids.NewInstrumentId("B", "V1")
	strat := ids.NewStrategyId("S-1")

	n := 0
	for _, v := range []ids.Venue{venueA, venueB} {
		for i := 0; i < 500; i++ {
			inst := instA
			if i%2 == 1 {
				inst = instB
			}
			if v == venueB {
				inst = ids.NewInstrumentId(inst.Symbol.String(), "V2")
			}
			o := cache.OrderAny{
				ClientOrderId: mkCOID(n),
				Venue:         v,
				InstrumentId:  inst,
				StrategyId:    strat,
				Side:          book.Buy,
				Status:        cache.Submitted,
			}
			require.NoError(t, c.AddOrder(o, false))
			n++
		}
	}

	v1 := venueA
	a := instA
	got := c.Orders(cache.OrderQuery{Venue: &v1})
	assert.Len(t, got, 500)

	gotVA := c.Orders(cache.OrderQuery{Venue: &v1, InstrumentId: &a})
	assert.Len(t, gotVA, 250)

	// transition 10 of V1/A's orders to Open
	opened := 0
	for _, o := range gotVA {
		if opened == 10 {
			break
		}
		o.Status = cache.Open
		require.NoError(t, c.UpdateOrder(o))
		opened++
	}

	openVA := c.OrdersOpen(cache.OrderQuery{Venue: &v1, InstrumentId: &a})
	assert.Len(t, openVA, 10)

	// orders(V1, A) must remain unchanged at 250 after the transition
	gotVA2 := c.Orders(cache.OrderQuery{Venue: &v1, InstrumentId: &a})
	assert.Len(t, gotVA2, 250)
}

func TestCacheAddOrderDuplicateRejected(t *testing.T) {
	c := cache.New()
	coid := mkCOID(1)
	o := cache.OrderAny{ClientOrderId: coid, Venue: ids.NewVenue("V1")}
	require.NoError(t, c.AddOrder(o, false))

	err := c.AddOrder(o, false)
	require.Error(t, err)
}

func TestCacheAddOrderOverrideExisting(t *testing.T) {
	c := cache.New()
	coid := mkCOID(1)
	o := cache.OrderAny{ClientOrderId: coid, Venue: ids.NewVenue("V1"), Status: cache.Submitted}
	require.NoError(t, c.AddOrder(o, false))

	o.Status = cache.Open
	require.NoError(t, c.AddOrder(o, true))

	got, ok := c.Order(coid)
	require.True(t, ok)
	assert.Equal(t, cache.Open, got.Status)
}

func TestCacheRemoveOrderIsTestOnlyButConsistent(t *testing.T) {
	c := cache.New()
	coid := mkCOID(1)
	v := ids.NewVenue("V1")
	o := cache.OrderAny{ClientOrderId: coid, Venue: v, Status: cache.Open}
	require.NoError(t, c.AddOrder(o, false))
	require.Len(t, c.OrdersOpen(cache.OrderQuery{Venue: &v}), 1)

	require.NoError(t, c.RemoveOrder(coid))

	assert.Len(t, c.Orders(cache.OrderQuery{Venue: &v}), 0)
	assert.Len(t, c.OrdersOpen(cache.OrderQuery{Venue: &v}), 0)
	_, ok := c.Order(coid)
	assert.False(t, ok)
}

func TestCacheOrdersOpenSubsetOfOrders(t *testing.T) {
	c := cache.New()
	v := ids.NewVenue("V1")
	for i := 0; i < 20; i++ {
		status := cache.Submitted
		if i%3 == 0 {
			status = cache.Open
		}
		require.NoError(t, c.AddOrder(cache.OrderAny{
			ClientOrderId: mkCOID(i), Venue: v, Status: status,
		}, false))
	}

	all := c.Orders(cache.OrderQuery{Venue: &v})
	open := c.OrdersOpen(cache.OrderQuery{Venue: &v})
	assert.Greater(t, len(all), len(open))
	assert.LessOrEqual(t, len(open), len(all))
}
