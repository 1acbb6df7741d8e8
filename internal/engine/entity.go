package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/implydata/imply-eventgenerator/internal/dimensions"
	"github.com/implydata/imply-eventgenerator/internal/distributions"
	"github.com/implydata/imply-eventgenerator/internal/record"
)

// SimClock is everything an entity or the spawner needs from the virtual
// clock: Now/Sleep for the simulation's own notion of time, plus
// Activate/End to register as a live SIM-mode participant.
// internal/clock.Clock satisfies this structurally.
type SimClock interface {
	Now() time.Time
	Sleep(d time.Duration)
	Activate()
	End()
}

// Controller is what an entity/spawner needs from the simulation
// controller. internal/control.Controller satisfies this structurally.
type Controller interface {
	AddEntity()
	RemoveEntity()
	EntityCount() int64
	IncRecord()
	IsDone() bool
	Terminate()
}

// Sink is the rendered-record consumer. internal/sink.Sink satisfies this
// structurally.
type Sink interface {
	Emit(rendered string) error
}

// Renderer turns a built Record into its wire line. internal/render.Renderer
// satisfies this structurally.
type Renderer interface {
	Render(rec *record.Record) (string, error)
}

// Metrics is the optional instrumentation hook; a nil-safe no-op
// implementation is used when metrics are disabled.
type Metrics interface {
	IncRecords()
	SetActiveEntities(n int64)
}

// Logger is the small subset of internal/logging.Logger an entity needs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// noopMetrics discards every call; used when no metrics.Metrics is wired.
type noopMetrics struct{}

func (noopMetrics) IncRecords()             {}
func (noopMetrics) SetActiveEntities(int64) {}

// Entity is one concurrent session traversing the compiled Machine from
// its initial state to "stop" or run-wide termination. Grounded on
// ieg/core.py's worker_thread.
type Entity struct {
	ID       string
	Machine  *Machine
	Clock    SimClock
	Ctrl     Controller
	Sampler  *distributions.Sampler
	Sink     Sink
	Renderer Renderer
	Metrics  Metrics
	Logger   Logger
}

// NewEntity builds an Entity with a fresh random ID and a no-op Metrics if
// m is nil.
func NewEntity(machine *Machine, clk SimClock, ctrl Controller, sampler *distributions.Sampler, snk Sink, renderer Renderer, m Metrics, logger Logger) *Entity {
	if m == nil {
		m = noopMetrics{}
	}
	return &Entity{
		ID:       uuid.NewString(),
		Machine:  machine,
		Clock:    clk,
		Ctrl:     ctrl,
		Sampler:  sampler,
		Sink:     snk,
		Renderer: renderer,
		Metrics:  m,
		Logger:   logger,
	}
}

// Run drives the entity's state-machine loop to completion. It recovers
// from any panic raised while sampling/rendering/emitting a record,
// converting it into an error-level log line plus Controller.Terminate(), the Go
// equivalent of the chaos framework's Orchestrator.Execute deferred
// recovery — one misbehaving entity must not crash the whole run.
//
// The caller (the spawner) must have already registered this entity with
// Clock.Activate before starting the goroutine that calls Run, so the
// clock's activeEntities count is correct before the spawner's own next
// Sleep runs; Run only deregisters via Clock.End on the way out.
func (e *Entity) Run() {
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("entity panicked, terminating run", "entity_id", e.ID, "panic", r)
			e.Ctrl.Terminate()
		}
		e.Clock.End()
		e.Ctrl.RemoveEntity()
	}()

	current := e.Machine.Initial
	vars := make(map[string]interface{})

	for {
		e.sampleVariables(current, vars)

		rec := e.buildRecord(current, vars)
		rendered, err := e.Renderer.Render(rec)
		if err != nil {
			e.Logger.Error("rendering record, terminating run", "entity_id", e.ID, "error", err)
			e.Ctrl.Terminate()
			return
		}
		if err := e.Sink.Emit(rendered); err != nil {
			e.Logger.Error("emitting record, terminating run", "entity_id", e.ID, "error", err)
			e.Ctrl.Terminate()
			return
		}
		e.Metrics.IncRecords()
		e.Ctrl.IncRecord()
		if e.Ctrl.IsDone() {
			return
		}

		delay := current.Delay.Sample(e.Sampler)
		e.Clock.Sleep(durationFromSeconds(delay))
		if e.Ctrl.IsDone() {
			return
		}

		next := current.ChooseNext(e.Sampler)
		if next.Stop {
			return
		}
		current = e.Machine.States[next.NextState]
	}
}

// sampleVariables samples current's per-visit variable dimensions and
// snapshots them into vars, once per state entry, per SPEC_FULL.md §4.5
// step 1.
func (e *Entity) sampleVariables(current *State, vars map[string]interface{}) {
	ctx := &dimensions.Context{Sampler: e.Sampler, Vars: vars}
	for _, v := range current.Variables {
		r := v.Render(ctx)
		vars[v.Name()] = r.Value
	}
}

// buildRecord renders every dimension of current's emitter, in order,
// omitting Missing fields (the implicit time dimension is never missing).
func (e *Entity) buildRecord(current *State, vars map[string]interface{}) *record.Record {
	ctx := &dimensions.Context{Sampler: e.Sampler, Vars: vars}
	rec := record.New()
	for _, d := range current.Dimensions {
		r := d.Render(ctx)
		if r.Missing {
			continue
		}
		rec.Set(d.Name(), r.Value)
	}
	return rec
}

func durationFromSeconds(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
