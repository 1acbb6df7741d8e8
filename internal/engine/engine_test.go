package engine

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/implydata/imply-eventgenerator/internal/clock"
	"github.com/implydata/imply-eventgenerator/internal/config"
	"github.com/implydata/imply-eventgenerator/internal/control"
	"github.com/implydata/imply-eventgenerator/internal/distributions"
	"github.com/implydata/imply-eventgenerator/internal/record"
	"github.com/implydata/imply-eventgenerator/internal/render"
)

type collectingSink struct {
	mu   sync.Mutex
	logs []string
}

func (s *collectingSink) Emit(rendered string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, rendered)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Error(string, ...interface{}) {}

func constantDist(v float64) map[string]interface{} {
	return map[string]interface{}{"type": "constant", "value": v}
}

// TestDeterministicRunThreeRecords reproduces SPEC_FULL.md §8 scenario 1:
// one state looping to itself, a constant-7 field, deterministic SIM
// clock, -n 3, -m 1. Expects timestamps 00:00:00/01/02 and x=7 on every
// line.
func TestDeterministicRunThreeRecords(t *testing.T) {
	cfg := &config.Config{
		Interarrival: constantDist(0.1),
		Emitters: []config.EmitterSpec{{
			Name: "e1",
			Dimensions: []map[string]interface{}{
				{"name": "x", "kind": "int", "distribution": constantDist(7)},
			},
		}},
		States: []config.StateSpec{{
			Name:    "S1",
			Emitter: "e1",
			Delay:   constantDist(1.0),
			Transitions: []config.TransitionSpec{
				{Next: "S1", Probability: 1.0},
			},
		}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.New(clock.Sim, start)
	sampler := distributions.NewSampler(1)

	machine, interarrival, err := Compile(cfg, sampler, clk)
	if err != nil {
		t.Fatal(err)
	}

	ctrl := control.New(clk, 3, 0)
	snk := &collectingSink{}
	renderer := render.NewDefault()

	sp := NewSpawner(machine, interarrival, clk, ctrl, sampler, snk, renderer, nil, nopLogger{}, 1)
	sp.Run()

	if len(snk.logs) < 3 {
		t.Fatalf("got %d records, want at least 3", len(snk.logs))
	}

	wantTimes := []string{
		"2024-01-01T00:00:00.000",
		"2024-01-01T00:00:01.000",
		"2024-01-01T00:00:02.000",
	}
	for i, want := range wantTimes {
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(snk.logs[i]), &decoded); err != nil {
			t.Fatalf("record %d not valid JSON: %v", i, err)
		}
		if decoded["time"] != want {
			t.Fatalf("record %d time = %v, want %v", i, decoded["time"], want)
		}
		if decoded["x"] != float64(7) {
			t.Fatalf("record %d x = %v, want 7", i, decoded["x"])
		}
	}
}

// TestStopTransitionOneRecordPerEntity reproduces scenario 2: a single
// state whose only transition is to "stop", -n 100, -m 1 -> exactly one
// record per entity and the run completes once 100 entities have each
// emitted once.
func TestStopTransitionOneRecordPerEntity(t *testing.T) {
	cfg := &config.Config{
		Interarrival: constantDist(0.01),
		Emitters: []config.EmitterSpec{{
			Name: "e1",
			Dimensions: []map[string]interface{}{
				{"name": "x", "kind": "int", "distribution": constantDist(1)},
			},
		}},
		States: []config.StateSpec{{
			Name:    "S1",
			Emitter: "e1",
			Delay:   constantDist(0.0),
			Transitions: []config.TransitionSpec{
				{Next: "stop", Probability: 1.0},
			},
		}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	clk := clock.New(clock.Sim, time.Now())
	sampler := distributions.NewSampler(1)
	machine, interarrival, err := Compile(cfg, sampler, clk)
	if err != nil {
		t.Fatal(err)
	}

	ctrl := control.New(clk, 100, 0)
	snk := &collectingSink{}
	sp := NewSpawner(machine, interarrival, clk, ctrl, sampler, snk, render.NewDefault(), nil, nopLogger{}, 1)
	sp.Run()

	if len(snk.logs) < 100 {
		t.Fatalf("got %d records, want >= 100", len(snk.logs))
	}
	if got := ctrl.TotalSpawned(); int64(len(snk.logs)) != got {
		t.Fatalf("got %d records from %d entities, want exactly one record per entity", len(snk.logs), got)
	}
}

// TestTemplateRendering reproduces scenario 4.
func TestTemplateRendering(t *testing.T) {
	rec := record.New()
	rec.Set("time", "2024-01-01T00:00:00.000")
	rec.Set("x", int64(42))

	r := render.NewTemplate("{{time}} x={{x}}\n")
	out, err := r.Render(rec)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := out, "2024-01-01T00:00:00.000 x=42\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
