package bus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradecore/corebus/internal/bus"
)

func TestPatternMatchSingleAndSuffixWildcard(t *testing.T) {
	b := bus.New(nil)

	var order []string
	h1 := bus.HandlerFunc{Name: "H1", Fn: func(msg interface{}) { order = append(order, "H1:"+msg.(string)) }}
	h2 := bus.HandlerFunc{Name: "H2", Fn: func(msg interface{}) { order = append(order, "H2:"+msg.(string)) }}

	b.Subscribe("data.quotes.*.BTC-USDT", h1, 10)
	b.Subscribe("data.quotes.>", h2, 0)

	b.Publish("data.quotes.BINANCE.BTC-USDT", "tick1")
	assert.Equal(t, []string{"H1:tick1", "H2:tick1"}, order)

	order = nil
	b.Publish("data.quotes.BINANCE.BTC-USDT.extra", "tick2")
	assert.Equal(t, []string{"H2:tick2"}, order)
}

func TestPublishDeliversInPriorityThenRegistrationOrder(t *testing.T) {
	b := bus.New(nil)
	var order []string

	b.Subscribe("x.y", bus.HandlerFunc{Name: "low", Fn: func(interface{}) { order = append(order, "low") }}, 0)
	b.Subscribe("x.y", bus.HandlerFunc{Name: "high", Fn: func(interface{}) { order = append(order, "high") }}, 10)
	b.Subscribe("x.y", bus.HandlerFunc{Name: "mid", Fn: func(interface{}) { order = append(order, "mid") }}, 5)

	b.Publish("x.y", nil)
	assert.Equal(t, []string{"high", "mid", "low"}, order)
}

func TestPublishSurvivesHandlerPanic(t *testing.T) {
	b := bus.New(nil)
	called := false

	b.Subscribe("x", bus.HandlerFunc{Name: "bad", Fn: func(interface{}) { panic("boom") }}, 10)
	b.Subscribe("x", bus.HandlerFunc{Name: "good", Fn: func(interface{}) { called = true }}, 0)

	assert.NotPanics(t, func() { b.Publish("x", nil) })
	assert.True(t, called)
	assert.Equal(t, uint64(1), b.Stats().HandlerPanics)
}

func TestUnsubscribeRemovesHandler(t *testing.T) {
	b := bus.New(nil)
	calls := 0
	h := bus.HandlerFunc{Name: "h", Fn: func(interface{}) { calls++ }}
	b.Subscribe("x", h, 0)
	b.Publish("x", nil)
	b.Unsubscribe("x", "h")
	b.Publish("x", nil)
	assert.Equal(t, 1, calls)
}

func TestRegisterSendAndDuplicateRegistration(t *testing.T) {
	b := bus.New(nil)
	var got interface{}
	h := bus.HandlerFunc{Name: "ep", Fn: func(msg interface{}) { got = msg }}

	require.NoError(t, b.Register("market-data", h))
	require.Error(t, b.Register("market-data", h))

	require.NoError(t, b.Send("market-data", "ping"))
	assert.Equal(t, "ping", got)

	b.Deregister("market-data")
	err := b.Send("market-data", "ping")
	require.Error(t, err)
}

// S5 — Request/response.
func TestRequestResponseRoundTrip(t *testing.T) {
	b := bus.New(nil)
	corr := "C"

	endpointHandler := bus.HandlerFunc{Name: "market-data", Fn: func(msg interface{}) {
		// endpoint processes asynchronously and later calls Response itself
	}}
	require.NoError(t, b.Register("market-data", endpointHandler))

	var received interface{}
	require.NoError(t, b.Request("market-data", "give me quotes", corr, func(msg interface{}) {
		received = msg
	}))

	b.Response(corr, "quote result")
	assert.Equal(t, "quote result", received)

	// a second response for the same (now-removed) correlation id is dropped
	b.Response(corr, "late result")
	assert.Equal(t, "quote result", received)
	assert.Equal(t, uint64(1), b.Stats().UnknownCorrel)
}
