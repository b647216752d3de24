package clock

import (
	"container/heap"
	"sync"
	"time"
)

// TestClock is a virtual clock for deterministic tests: time only advances
// when AdvanceTime is called, and every due timer fires synchronously in
// fire-time order at that point — no goroutines, no flakiness.
type TestClock struct {
	mu      sync.Mutex
	now     time.Time
	pending pendingHeap
	byName  map[string]*pendingTimer
}

type pendingTimer struct {
	name     string
	fireAt   time.Time
	interval time.Duration
	repeat   bool
	callback Callback
	index    int // heap.Interface bookkeeping
}

type pendingHeap []*pendingTimer

func (h pendingHeap) Len() int            { return len(h) }
func (h pendingHeap) Less(i, j int) bool  { return h[i].fireAt.Before(h[j].fireAt) }
func (h pendingHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *pendingHeap) Push(x interface{}) {
	t := x.(*pendingTimer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *pendingHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// NewTestClock constructs a TestClock starting at the given time.
func NewTestClock(start time.Time) *TestClock {
	return &TestClock{now: start, byName: make(map[string]*pendingTimer)}
}

func (c *TestClock) Now() time.Time     { return c.snapshotNow() }
func (c *TestClock) TimestampNs() int64 { return c.snapshotNow().UnixNano() }

func (c *TestClock) snapshotNow() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *TestClock) SetTimer(name string, interval time.Duration, repeat bool, callback Callback) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked(name)
	t := &pendingTimer{name: name, fireAt: c.now.Add(interval), interval: interval, repeat: repeat, callback: callback}
	heap.Push(&c.pending, t)
	c.byName[name] = t
	return nil
}

func (c *TestClock) SetTimeAlert(name string, at time.Time, callback Callback) error {
	c.mu.Lock()
	interval := at.Sub(c.now)
	c.mu.Unlock()
	if interval < 0 {
		interval = 0
	}
	return c.SetTimer(name, interval, false, callback)
}

func (c *TestClock) CancelTimer(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked(name)
}

func (c *TestClock) cancelLocked(name string) {
	t, ok := c.byName[name]
	if !ok {
		return
	}
	heap.Remove(&c.pending, t.index)
	delete(c.byName, name)
}

func (c *TestClock) CancelTimers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
	c.byName = make(map[string]*pendingTimer)
}

func (c *TestClock) Timers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	return names
}

// AdvanceTime moves the clock to `to` and synchronously fires, in fire-time
// order, every timer due at or before `to`. Repeating timers are
// rescheduled from their previous fireAt (not from `to`), so a long
// AdvanceTime can fire a repeating timer more than once.
func (c *TestClock) AdvanceTime(to time.Time) []TimeEvent {
	var fired []TimeEvent
	for {
		c.mu.Lock()
		if len(c.pending) == 0 || c.pending[0].fireAt.After(to) {
			c.now = to
			c.mu.Unlock()
			break
		}
		t := heap.Pop(&c.pending).(*pendingTimer)
		delete(c.byName, t.name)
		c.now = t.fireAt
		ev := TimeEvent{Name: t.name, TsEvent: t.fireAt.UnixNano(), TsInit: t.fireAt.UnixNano()}
		if t.repeat {
			t.fireAt = t.fireAt.Add(t.interval)
			heap.Push(&c.pending, t)
			c.byName[t.name] = t
		}
		c.mu.Unlock()

		t.callback(ev)
		fired = append(fired, ev)
	}
	return fired
}
