package engine

import (
	"sync"
	"time"

	"github.com/implydata/imply-eventgenerator/internal/distributions"
)

// idleBackoff is how long the spawner sleeps on the clock when it is at
// the concurrency cap before re-checking, per SPEC_FULL.md §4.6.
const idleBackoff = 5 * time.Second

// Spawner admits entities at the interarrival rate up to MaxEntities,
// orchestrating each one's lifecycle. Grounded on ieg/core.py's
// spawning_thread; the sync.WaitGroup fan-out/drain is the pattern the
// chaos framework's Orchestrator.Execute uses for its own concurrent
// worker fan-out, applied here to entity goroutines instead of test
// targets.
type Spawner struct {
	Machine      *Machine
	Interarrival distributions.Distribution
	Clock        SimClock
	Ctrl         Controller
	Sampler      *distributions.Sampler
	Sink         Sink
	Renderer     Renderer
	Metrics      Metrics
	Logger       Logger
	MaxEntities  int64
}

// NewSpawner builds a Spawner, defaulting Metrics to a no-op when m is nil.
func NewSpawner(machine *Machine, interarrival distributions.Distribution, clk SimClock, ctrl Controller, sampler *distributions.Sampler, snk Sink, renderer Renderer, m Metrics, logger Logger, maxEntities int64) *Spawner {
	if m == nil {
		m = noopMetrics{}
	}
	return &Spawner{
		Machine:      machine,
		Interarrival: interarrival,
		Clock:        clk,
		Ctrl:         ctrl,
		Sampler:      sampler,
		Sink:         snk,
		Renderer:     renderer,
		Metrics:      m,
		Logger:       logger,
		MaxEntities:  maxEntities,
	}
}

// Run admits entities until Ctrl.IsDone(), then deregisters itself from
// the clock and waits for every spawned entity to finish before
// returning — cmd/eventgen's runGenerate waits for exactly this, per
// SPEC_FULL.md §4.6.
func (sp *Spawner) Run() {
	sp.Clock.Activate()

	var wg sync.WaitGroup
	for !sp.Ctrl.IsDone() {
		if sp.Ctrl.EntityCount() < sp.MaxEntities {
			sp.Ctrl.AddEntity()
			sp.Metrics.SetActiveEntities(sp.Ctrl.EntityCount())
			entity := NewEntity(sp.Machine, sp.Clock, sp.Ctrl, sp.Sampler, sp.Sink, sp.Renderer, sp.Metrics, sp.Logger)
			sp.Logger.Debug("spawning entity", "entity_id", entity.ID)
			// Activate the entity as a clock participant synchronously, before
			// starting its goroutine: activating from inside the goroutine races
			// with the spawner's own next Sleep, which could see activeEntities==1
			// (itself only) and advance simTime without ever waiting for the
			// entity to run, making the first record's timestamp non-deterministic
			// (SPEC_FULL.md §5/§8 scenario 1).
			sp.Clock.Activate()
			wg.Add(1)
			go func() {
				defer wg.Done()
				entity.Run()
				sp.Metrics.SetActiveEntities(sp.Ctrl.EntityCount())
			}()
			delay := sp.Interarrival.Sample(sp.Sampler)
			sp.Clock.Sleep(durationFromSeconds(delay))
		} else {
			sp.Clock.Sleep(idleBackoff)
		}
	}

	sp.Clock.End()
	wg.Wait()
}
