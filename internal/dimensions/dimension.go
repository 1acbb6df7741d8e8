// Package dimensions wraps the distribution library into typed field
// generators: integer, float, string, timestamp, IP address, enum,
// counter, nested object, list, and variable-reference dimensions, each
// with independent null/missing semantics and optional cardinality pools.
//
// Grounded on the Python source's ieg/dimensions.py (DimensionBase and its
// per-kind subclasses).
package dimensions

import (
	"fmt"

	"github.com/implydata/imply-eventgenerator/internal/distributions"
)

// Result is what a dimension contributes to one record: either Missing
// (the field is omitted entirely) or a Value (which may itself be nil,
// meaning an explicit JSON null).
type Result struct {
	Missing bool
	Value   interface{}
}

// Context carries what a dimension needs to produce one value: the shared
// RNG and the entity's current variable map (for the variable dimension
// kind; unused by every other kind).
type Context struct {
	Sampler *distributions.Sampler
	Vars    map[string]interface{}
}

// Dimension is the common capability every field generator exposes.
type Dimension interface {
	Name() string
	Render(rc *Context) Result
}

// Base implements the shared null/missing/cardinality machinery that every
// dimension kind except Counter and the implicit Time dimension inherits.
type Base struct {
	name           string
	percentNulls   float64
	percentMissing float64
	pool           []interface{}
	poolDist       distributions.Distribution
}

func (b *Base) Name() string { return b.name }

// missing draws the independent missing Bernoulli.
func (b *Base) missing(s *distributions.Sampler) bool { return s.Bernoulli(b.percentMissing) }

// null draws the independent null Bernoulli.
func (b *Base) null(s *distributions.Sampler) bool { return s.Bernoulli(b.percentNulls) }

// hasPool reports whether this dimension has a cardinality pool.
func (b *Base) hasPool() bool { return len(b.pool) > 0 }

// fromPool selects a pooled value via the cardinality_distribution, index
// clamped into range.
func (b *Base) fromPool(s *distributions.Sampler) interface{} {
	idx := int(b.poolDist.Sample(s))
	idx = distributions.ClampIndex(idx, len(b.pool))
	return b.pool[idx]
}

// buildPool rejection-samples n distinct values from sample, keyed by
// keyOf for uniqueness comparison. Returns an error if distinct values
// can't be found within a generous attempt budget (a too-narrow
// distribution for the requested cardinality is a configuration error,
// not a runtime hang).
func buildPool(n int, sample func() interface{}, keyOf func(interface{}) string) ([]interface{}, error) {
	seen := make(map[string]bool, n)
	pool := make([]interface{}, 0, n)
	const maxAttempts = 1000
	attempts := 0
	for len(pool) < n {
		attempts++
		if attempts > maxAttempts*n {
			return nil, fmt.Errorf("dimensions: could not sample %d distinct values (got %d after %d attempts)", n, len(pool), attempts)
		}
		v := sample()
		k := keyOf(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		pool = append(pool, v)
	}
	return pool, nil
}
