// Package control implements the simulation controller: the single
// instance that tracks record and entity counts, measures elapsed time
// against the clock's own time domain, and decides when a run is done.
package control

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock is the minimal time source the controller needs to measure
// elapsed duration in whichever domain (wall-clock or simulated) the run
// is using. internal/clock.Clock satisfies this structurally.
type Clock interface {
	Now() time.Time
}

// Controller gates termination for a run: target_total_records,
// target_duration, or neither (unbounded).
type Controller struct {
	clk       Clock
	startedAt time.Time

	targetRecords  int64 // 0 = unbounded
	targetDuration time.Duration // 0 = unbounded

	recordCount   atomic.Int64
	entityCount   atomic.Int64
	totalSpawned  atomic.Int64

	mu         sync.Mutex
	terminated bool
	releaser   func()
}

// New builds a Controller. targetRecords <= 0 means no record-count bound;
// targetDuration <= 0 means no duration bound. clk.Now() at construction
// time is taken as the run's start instant.
func New(clk Clock, targetRecords int64, targetDuration time.Duration) *Controller {
	return &Controller{
		clk:            clk,
		startedAt:      clk.Now(),
		targetRecords:  targetRecords,
		targetDuration: targetDuration,
	}
}

// AddEntity records that a new entity has been spawned.
func (c *Controller) AddEntity() {
	c.entityCount.Add(1)
	c.totalSpawned.Add(1)
}

// RemoveEntity records that an entity's loop has exited.
func (c *Controller) RemoveEntity() { c.entityCount.Add(-1) }

// EntityCount returns the number of currently live entities.
func (c *Controller) EntityCount() int64 { return c.entityCount.Load() }

// TotalSpawned returns the number of entities spawned over the life of
// the run, never decremented as entities exit — used for the end-of-run
// report rather than the concurrency-cap check.
func (c *Controller) TotalSpawned() int64 { return c.totalSpawned.Load() }

// IncRecord records one emitted record and, if target_total_records has
// just been reached, flips the termination latch.
func (c *Controller) IncRecord() {
	n := c.recordCount.Add(1)
	if c.targetRecords > 0 && n >= c.targetRecords {
		c.Terminate()
	}
}

// RecordCount returns the number of records emitted so far.
func (c *Controller) RecordCount() int64 { return c.recordCount.Load() }

// Elapsed returns the time elapsed since construction, in the clock's own
// time domain (simulated or wall-clock).
func (c *Controller) Elapsed() time.Duration {
	return c.clk.Now().Sub(c.startedAt)
}

// IsDone reports whether the run should stop: the record target was
// reached, the duration bound has elapsed, or Terminate was called.
func (c *Controller) IsDone() bool {
	c.mu.Lock()
	terminated := c.terminated
	c.mu.Unlock()
	if terminated {
		return true
	}
	if c.targetRecords > 0 && c.recordCount.Load() >= c.targetRecords {
		return true
	}
	if c.targetDuration > 0 && c.Elapsed() >= c.targetDuration {
		return true
	}
	return false
}

// Terminate forces the run done. Idempotent. If a clock releaser was
// registered via OnTerminate, it fires so every entity suspended on the
// virtual clock wakes and observes IsDone, per SPEC_FULL.md §5.
func (c *Controller) Terminate() {
	c.mu.Lock()
	already := c.terminated
	c.terminated = true
	releaser := c.releaser
	c.mu.Unlock()
	if !already && releaser != nil {
		releaser()
	}
}

// OnTerminate registers fn to run the first time Terminate is called
// (including the implicit terminate IncRecord performs when the record
// target is reached). Typically wired to the clock's ReleaseAll so a
// record-count or duration bound wakes every suspended entity immediately
// instead of at its next natural checkpoint.
func (c *Controller) OnTerminate(fn func()) {
	c.mu.Lock()
	c.releaser = fn
	c.mu.Unlock()
}
