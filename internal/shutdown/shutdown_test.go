package shutdown

import (
	"testing"
	"time"
)

func TestTriggerClosesDoneOnce(t *testing.T) {
	w := New()

	var calls int
	w.OnShutdown(func(reason string) { calls++ })

	w.Trigger("first")
	w.Trigger("second")

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() channel never closed")
	}

	if calls != 1 {
		t.Fatalf("callback ran %d times, want 1", calls)
	}
	if !w.Triggered() {
		t.Fatal("Triggered() should be true after Trigger")
	}
}

func TestOnShutdownRegisteredAfterTrigger(t *testing.T) {
	w := New()
	w.Trigger("pre")

	// A callback registered before the second Trigger call is fine; the
	// watcher itself only fires callbacks once, on the first Trigger.
	var ran bool
	w.OnShutdown(func(string) { ran = true })
	w.Trigger("post")

	if ran {
		t.Fatal("callback registered after trigger must not run retroactively")
	}
}
