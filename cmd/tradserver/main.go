// Command tradserver is the composition root wiring the message bus, cache,
// order book, and actor runtime into one running process, grounded on the
// teacher's cmd/server/main.go signal-driven graceful shutdown shape.
// Configuration loading is an explicit out-of-scope external collaborator,
// so wiring here reads a handful of environment variables directly rather
// than through a config-file library.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tradecore/corebus/internal/actor"
	"github.com/tradecore/corebus/internal/book"
	"github.com/tradecore/corebus/internal/bus"
	"github.com/tradecore/corebus/internal/bus/bridge"
	"github.com/tradecore/corebus/internal/cache"
	"github.com/tradecore/corebus/internal/clock"
	"github.com/tradecore/corebus/internal/ids"
)

const (
	envShutdownGrace = "TRADSERVER_SHUTDOWN_GRACE"
	envNatsURL       = "TRADSERVER_NATS_URL"
	envMirrorSubject = "TRADSERVER_MIRROR_SUBJECT"
	envInstrument    = "TRADSERVER_INSTRUMENT"
	envVenue         = "TRADSERVER_VENUE"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	shutdownGrace := envDuration(envShutdownGrace, 5*time.Second)
	instrumentSymbol := envOr(envInstrument, "BTC-USD")
	venueName := envOr(envVenue, "SIM")

	messageBus := bus.New(logger.Named("bus"))
	orderCache := cache.New()

	instrumentId := ids.NewInstrumentId(instrumentSymbol, venueName)
	ob := book.NewOrderBook(instrumentId, book.L2_MBP, 2)

	runner := actor.New(actor.Options{
		Log:   logger.Named("actor"),
		Clock: clock.NewLiveClock(),
		DispatchMessage: func(msg interface{}) {
			dispatchDomainMessage(logger, messageBus, ob, msg)
		},
		DispatchRequest: func(msg interface{}) {
			dispatchDomainMessage(logger, messageBus, ob, msg)
		},
	})

	go runner.Run()
	logger.Info("tradserver started",
		zap.String("instrument", instrumentId.String()),
		zap.Int("cache_orders", orderCache.Stats().Orders))

	var mirror *bridge.Mirror
	if natsURL := os.Getenv(envNatsURL); natsURL != "" {
		mirror, err = bridge.New(bridge.Options{
			NatsURL: natsURL,
			Subject: envOr(envMirrorSubject, "corebus.mirror"),
			Log:     logger.Named("bridge"),
		})
		if err != nil {
			logger.Warn("bridge mirror unavailable, continuing without it", zap.Error(err))
		} else {
			messageBus.Subscribe(">", mirror.Handler(), -100)
			mirrorCtx, cancelMirror := context.WithCancel(context.Background())
			defer cancelMirror()
			go mirror.Run(mirrorCtx)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("tradserver shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	runner.Stop(stopCtx)

	if mirror != nil {
		if err := mirror.Close(); err != nil {
			logger.Warn("error closing bridge mirror", zap.Error(err))
		}
	}

	logger.Info("tradserver stopped")
}

// dispatchDomainMessage is the Runner's single entry point into domain
// state (§5 "single-writer rule"): it is the only place book/cache
// mutations happen, and it republishes side effects onto the bus.
func dispatchDomainMessage(logger *zap.Logger, messageBus *bus.Bus, ob *book.OrderBook, msg interface{}) {
	switch m := msg.(type) {
	case *book.Delta:
		if err := ob.ApplyDelta(m); err != nil {
			logger.Warn("order book delta rejected", zap.Error(err))
			return
		}
		messageBus.Publish("book.delta."+ob.InstrumentId.String(), m)
	case []*book.Delta:
		if err := ob.ApplyDeltas(m); err != nil {
			logger.Warn("order book delta batch rejected", zap.Error(err))
			return
		}
		messageBus.Publish("book.delta."+ob.InstrumentId.String(), m)
	default:
		messageBus.Publish("unhandled", m)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
