package actor

import (
	"time"

	"github.com/tradecore/corebus/internal/clock"
)

// TimerEvent is what a fired timer enqueues onto the message stream (§4.4
// "Timers": fired timers are messages, they never preempt an executing
// handler).
type TimerEvent struct {
	Name    string
	TsEvent int64
	TsInit  int64
}

// SetTimer arms a named timer whose firings are delivered as TimerEvent
// messages through the runner's own message stream, so timer callbacks
// observe the same single-writer guarantee as any other dispatched message.
func (r *Runner) SetTimer(name string, interval time.Duration, repeat bool) error {
	return r.clock.SetTimer(name, interval, repeat, func(ev clock.TimeEvent) {
		r.PostMessage(TimerEvent{Name: ev.Name, TsEvent: ev.TsEvent, TsInit: ev.TsInit})
	})
}

// SetTimeAlert arms a named one-shot timer firing at an absolute time.
func (r *Runner) SetTimeAlert(name string, at time.Time) error {
	return r.clock.SetTimeAlert(name, at, func(ev clock.TimeEvent) {
		r.PostMessage(TimerEvent{Name: ev.Name, TsEvent: ev.TsEvent, TsInit: ev.TsInit})
	})
}

// CancelTimer cancels a previously armed timer by name.
func (r *Runner) CancelTimer(name string) { r.clock.CancelTimer(name) }
