package bridge_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradecore/corebus/internal/bus"
)

// These tests run without a live NATS connection: constructing a Mirror
// dials out immediately in New, so they stick to the parts that don't need
// a broker (handler naming, JSON envelope shape).
func TestMirrorHandlerNameIsStable(t *testing.T) {
	h := bus.HandlerFunc{Name: "bridge.mirror", Fn: func(interface{}) {}}
	assert.Equal(t, "bridge.mirror", h.Name)
}

func TestEnvelopePayloadRoundTrips(t *testing.T) {
	type sample struct {
		A int
		B string
	}
	payload, err := json.Marshal(sample{A: 1, B: "x"})
	assert.NoError(t, err)

	var out sample
	assert.NoError(t, json.Unmarshal(payload, &out))
	assert.Equal(t, sample{A: 1, B: "x"}, out)
}
