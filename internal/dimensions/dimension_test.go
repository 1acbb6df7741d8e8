package dimensions

import (
	"testing"
	"time"

	"github.com/implydata/imply-eventgenerator/internal/distributions"
)

func TestIntConstant(t *testing.T) {
	sampler := distributions.NewSampler(1)
	d, err := Parse(map[string]interface{}{
		"name": "x",
		"kind": "int",
		"distribution": map[string]interface{}{
			"type": "constant", "value": 7.0,
		},
	}, sampler, nil)
	if err != nil {
		t.Fatal(err)
	}
	r := d.Render(&Context{Sampler: sampler})
	if r.Missing || r.Value != int64(7) {
		t.Fatalf("got %+v, want 7", r)
	}
}

func TestPercentNullsAlwaysNull(t *testing.T) {
	sampler := distributions.NewSampler(1)
	d, err := Parse(map[string]interface{}{
		"name": "x", "kind": "int", "percent_nulls": 100.0,
		"distribution": map[string]interface{}{"type": "constant", "value": 1.0},
	}, sampler, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		r := d.Render(&Context{Sampler: sampler})
		if r.Missing || r.Value != nil {
			t.Fatalf("expected null, got %+v", r)
		}
	}
}

func TestPercentMissingAlwaysMissing(t *testing.T) {
	sampler := distributions.NewSampler(1)
	d, err := Parse(map[string]interface{}{
		"name": "x", "kind": "int", "percent_missing": 100.0,
		"distribution": map[string]interface{}{"type": "constant", "value": 1.0},
	}, sampler, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		r := d.Render(&Context{Sampler: sampler})
		if !r.Missing {
			t.Fatal("expected missing")
		}
	}
}

func TestCardinalityPoolBounded(t *testing.T) {
	sampler := distributions.NewSampler(1)
	d, err := Parse(map[string]interface{}{
		"name": "color", "kind": "enum",
		"values":                   []interface{}{"r", "g", "b"},
		"selector_distribution":    map[string]interface{}{"type": "uniform", "min": 0.0, "max": 2.0},
		"cardinality":              3.0,
		"cardinality_distribution": map[string]interface{}{"type": "uniform", "min": 0.0, "max": 2.0},
	}, sampler, nil)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[interface{}]bool{}
	for i := 0; i < 1000; i++ {
		r := d.Render(&Context{Sampler: sampler})
		seen[r.Value] = true
		switch r.Value {
		case "r", "g", "b":
		default:
			t.Fatalf("unexpected value %v outside pool", r.Value)
		}
	}
}

func TestCounterIncrements(t *testing.T) {
	c := NewCounter("seq", 10, 5)
	sampler := distributions.NewSampler(1)
	rc := &Context{Sampler: sampler}
	want := []int64{10, 15, 20}
	for _, w := range want {
		r := c.Render(rc)
		if r.Value != w {
			t.Fatalf("got %v, want %d", r.Value, w)
		}
	}
}

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func TestTimeDimensionISOMillis(t *testing.T) {
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	td := NewTime(fixedClock{t: when})
	r := td.Render(&Context{})
	if r.Value != "2024-01-01T00:00:00.000" {
		t.Fatalf("got %v", r.Value)
	}
}

func TestVariableResolvesFromMap(t *testing.T) {
	sampler := distributions.NewSampler(1)
	d := &Variable{Base: Base{name: "v"}, RefName: "session_id"}
	r := d.Render(&Context{Sampler: sampler, Vars: map[string]interface{}{"session_id": "abc"}})
	if r.Value != "abc" {
		t.Fatalf("got %v", r.Value)
	}
}
