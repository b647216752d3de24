package wsworker_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/tradecore/corebus/internal/adapter/wsworker"
)

// echoUpgrader accepts a connection and echoes nothing on its own; the test
// drives writes from the server side explicitly per scenario.
var echoUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func TestWorkerReconnectsAfterSilence(t *testing.T) {
	var connects int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := echoUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		atomic.AddInt32(&connects, 1)
		// Never write again; the client's silence watchdog must trip and
		// force a reconnect (scenario: "WebSocket silent for K+1 seconds").
		<-r.Context().Done()
		conn.Close()
	}))
	defer srv.Close()

	url := "ws" + srv.URL[len("http"):]

	var reconnects int32
	w := wsworker.New(wsworker.Options{
		URL:            url,
		SilenceTimeout: 80 * time.Millisecond,
		OnReconnected: func() {
			atomic.AddInt32(&reconnects, 1)
		},
	})

	// The watchdog trips within ~120ms; the first reconnect then waits out
	// the 1s (+-10%) base backoff.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	go w.Run(ctx)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&reconnects) >= 2
	}, 2500*time.Millisecond, 10*time.Millisecond, "expected at least one reconnect driven by the silence watchdog")
}

func TestWorkerResubscribesAfterReconnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := echoUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		<-r.Context().Done()
		conn.Close()
	}))
	defer srv.Close()

	url := "ws" + srv.URL[len("http"):]

	var fired int32
	activeSubscriptions := []string{"BTC-USD", "ETH-USD"}

	w := wsworker.New(wsworker.Options{
		URL:            url,
		SilenceTimeout: 50 * time.Millisecond,
		OnReconnected: func() {
			// Every prior active subscription is republished on reconnect.
			for range activeSubscriptions {
				atomic.AddInt32(&fired, 1)
			}
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	go w.Run(ctx)

	// The initial connect fires once per subscription; the reconnect after
	// the watchdog trip and the 1s base backoff fires again.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fired) >= int32(2*len(activeSubscriptions))
	}, 2500*time.Millisecond, 5*time.Millisecond)
}
