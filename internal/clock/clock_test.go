package clock

import (
	"testing"
	"time"
)

func TestSimSleepSingleEntityAdvancesSimTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(Sim, start)
	c.Activate()

	c.Sleep(1 * time.Second)
	c.Sleep(1 * time.Second)
	c.Sleep(1 * time.Second)

	want := start.Add(3 * time.Second)
	if got := c.Now(); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestSleepNegativeDeltaIsNoop(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(Sim, start)
	c.Activate()

	c.Sleep(-5 * time.Second)
	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %v, want unchanged %v", got, start)
	}
}

func TestEndHandsOffBatonToSuspendedSibling(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(Sim, start)
	c.Activate() // entity A
	c.Activate() // entity B

	woke := make(chan struct{})
	go func() {
		c.Sleep(5 * time.Second) // A suspends: B is still active, so A takes the "else" branch.
		close(woke)
	}()

	// Give A time to register its future event and suspend.
	time.Sleep(50 * time.Millisecond)

	c.End() // B exits without ever sleeping; must hand the baton to A.

	select {
	case <-woke:
	case <-time.After(2 * time.Second):
		t.Fatal("entity A never woke after sibling End()")
	}

	want := start.Add(5 * time.Second)
	if got := c.Now(); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestReleaseAllWakesAllPendingSleepers(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(Sim, start)
	c.Activate()
	c.Activate()
	c.Activate()

	n := 3
	woke := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			c.Sleep(time.Hour) // would never return on its own within the test timeout.
			woke <- struct{}{}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	c.ReleaseAll()

	for i := 0; i < n; i++ {
		select {
		case <-woke:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d/%d sleepers woke after ReleaseAll", i, n)
		}
	}
}

func TestRealModeSleepInterruptedByReleaseAll(t *testing.T) {
	c := New(Real, time.Now())
	c.Activate()

	done := make(chan struct{})
	go func() {
		c.Sleep(time.Hour)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	c.ReleaseAll()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("REAL-mode sleep was not interrupted by ReleaseAll")
	}
}
