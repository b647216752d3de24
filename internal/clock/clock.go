// Package clock provides the monotonic clock abstraction the runtime
// injects everywhere it would otherwise call time.Now(): a LiveClock for
// production and a TestClock that advances deterministically under test
// control (§9, "Global clock singleton" re-architecture note).
package clock

import "time"

// TimeEvent is passed to a timer's Callback when it fires; the actor runtime
// turns it into its own TimerEvent message on the message stream (§4.4).
type TimeEvent struct {
	Name    string
	TsEvent int64 // nanoseconds since epoch, producer (the clock) assigned
	TsInit  int64 // nanoseconds since epoch, first-ingest into the runtime
}

// Callback receives a fired TimeEvent.
type Callback func(TimeEvent)

// Clock is the monotonic time source and timer scheduler every component
// takes by reference instead of calling time.Now()/time.AfterFunc directly.
type Clock interface {
	Now() time.Time
	TimestampNs() int64

	// SetTimer schedules callback to fire every interval starting at
	// Now()+interval. If repeat is false it fires once and is removed.
	SetTimer(name string, interval time.Duration, repeat bool, callback Callback) error

	// SetTimeAlert schedules callback to fire once at the given absolute time.
	SetTimeAlert(name string, at time.Time, callback Callback) error

	// CancelTimer removes a single named timer, if present.
	CancelTimer(name string)

	// CancelTimers removes every registered timer.
	CancelTimers()

	// Timers lists the names of currently registered timers.
	Timers() []string
}
