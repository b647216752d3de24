package clock

import (
	"testing"
	"time"
)

func TestTestClockFiresDueTimer(t *testing.T) {
	start := time.Unix(0, 0)
	c := NewTestClock(start)

	var fired []string
	_ = c.SetTimer("heartbeat", time.Second, false, func(ev TimeEvent) {
		fired = append(fired, ev.Name)
	})

	c.AdvanceTime(start.Add(500 * time.Millisecond))
	if len(fired) != 0 {
		t.Fatalf("timer fired early: %v", fired)
	}

	c.AdvanceTime(start.Add(time.Second))
	if len(fired) != 1 || fired[0] != "heartbeat" {
		t.Fatalf("expected single heartbeat fire, got %v", fired)
	}
}

func TestTestClockRepeatingTimerFiresMultipleTimes(t *testing.T) {
	start := time.Unix(0, 0)
	c := NewTestClock(start)

	count := 0
	_ = c.SetTimer("tick", time.Second, true, func(ev TimeEvent) {
		count++
	})

	c.AdvanceTime(start.Add(3500 * time.Millisecond))
	if count != 3 {
		t.Fatalf("expected 3 ticks, got %d", count)
	}
}

func TestTestClockCancelTimer(t *testing.T) {
	start := time.Unix(0, 0)
	c := NewTestClock(start)

	fired := false
	_ = c.SetTimer("x", time.Second, false, func(ev TimeEvent) { fired = true })
	c.CancelTimer("x")
	c.AdvanceTime(start.Add(2 * time.Second))
	if fired {
		t.Fatalf("cancelled timer must not fire")
	}
}

func TestTestClockFireOrder(t *testing.T) {
	start := time.Unix(0, 0)
	c := NewTestClock(start)

	var order []string
	_ = c.SetTimer("b", 2*time.Second, false, func(ev TimeEvent) { order = append(order, "b") })
	_ = c.SetTimer("a", time.Second, false, func(ev TimeEvent) { order = append(order, "a") })

	c.AdvanceTime(start.Add(3 * time.Second))
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("expected fire order [a b], got %v", order)
	}
}
