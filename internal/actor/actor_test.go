package actor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradecore/corebus/internal/actor"
)

func newTestRunner(t *testing.T, onMessage, onRequest actor.Dispatch) *actor.Runner {
	t.Helper()
	if onMessage == nil {
		onMessage = func(interface{}) {}
	}
	if onRequest == nil {
		onRequest = func(interface{}) {}
	}
	return actor.New(actor.Options{
		DispatchMessage: onMessage,
		DispatchRequest: onRequest,
	})
}

func TestRunnerDispatchesMessages(t *testing.T) {
	var mu sync.Mutex
	var seen []string

	r := newTestRunner(t, func(msg interface{}) {
		mu.Lock()
		seen = append(seen, msg.(string))
		mu.Unlock()
	}, nil)

	go r.Run()
	r.PostMessage("a")
	r.PostMessage("b")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, 5*time.Millisecond)

	r.Stop(context.Background())
}

func TestRunnerDispatchesRequests(t *testing.T) {
	var got interface{}
	var mu sync.Mutex

	r := newTestRunner(t, nil, func(msg interface{}) {
		mu.Lock()
		got = msg
		mu.Unlock()
	})

	go r.Run()
	r.PostRequest("req-1")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got == "req-1"
	}, time.Second, 5*time.Millisecond)

	r.Stop(context.Background())
}

func TestRunnerSurvivesDispatchPanic(t *testing.T) {
	processed := 0
	var mu sync.Mutex

	r := newTestRunner(t, func(msg interface{}) {
		mu.Lock()
		defer mu.Unlock()
		if msg == "boom" {
			panic("boom")
		}
		processed++
	}, nil)

	go r.Run()
	r.PostMessage("boom")
	r.PostMessage("ok")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return processed == 1
	}, time.Second, 5*time.Millisecond)

	r.Stop(context.Background())
}

func TestRunnerOffload(t *testing.T) {
	r := newTestRunner(t, nil, nil)
	go r.Run()

	done := make(chan struct{})
	require.NoError(t, r.Offload(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("offloaded work did not run")
	}

	r.Stop(context.Background())
}

func TestRunnerStopReturnsAfterRun(t *testing.T) {
	r := newTestRunner(t, nil, nil)
	go r.Run()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
	assert.True(t, true) // Stop returned without blocking forever
}
