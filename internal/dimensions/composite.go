package dimensions

import (
	"time"

	"github.com/implydata/imply-eventgenerator/internal/distributions"
)

// Object renders a nested dimension list as { name: { child: val, ... } }.
type Object struct {
	Base
	Children []Dimension
}

func (d *Object) Render(rc *Context) Result {
	if d.missing(rc.Sampler) {
		return Result{Missing: true}
	}
	if d.null(rc.Sampler) {
		return Result{Value: nil}
	}
	obj := make(map[string]interface{}, len(d.Children))
	for _, child := range d.Children {
		r := child.Render(rc)
		if r.Missing {
			continue
		}
		obj[child.Name()] = r.Value
	}
	return Result{Value: obj}
}

// List draws a length from LengthDist and, for each slot, selects one of
// Elements via SelectionDist.
type List struct {
	Base
	LengthDist    distributions.Distribution
	SelectionDist distributions.Distribution
	Elements      []Dimension
}

func (d *List) Render(rc *Context) Result {
	if d.missing(rc.Sampler) {
		return Result{Missing: true}
	}
	if d.null(rc.Sampler) {
		return Result{Value: nil}
	}
	n := int(d.LengthDist.Sample(rc.Sampler))
	if n < 0 {
		n = 0
	}
	out := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		idx := distributions.ClampIndex(int(d.SelectionDist.Sample(rc.Sampler)), len(d.Elements))
		r := d.Elements[idx].Render(rc)
		if r.Missing {
			continue
		}
		out = append(out, r.Value)
	}
	return Result{Value: out}
}

// Variable resolves its value from the entity's current variable map at
// render time rather than sampling a distribution itself; RefName names
// the variable dimension whose sampled value populated that map on state
// entry.
type Variable struct {
	Base
	RefName string
}

func (d *Variable) Render(rc *Context) Result {
	if d.missing(rc.Sampler) {
		return Result{Missing: true}
	}
	if d.null(rc.Sampler) {
		return Result{Value: nil}
	}
	v, ok := rc.Vars[d.RefName]
	if !ok {
		return Result{Value: nil}
	}
	return Result{Value: v}
}

// Clock is the minimal time source the implicit time dimension needs.
type Clock interface {
	Now() time.Time
}

// Time is the implicit dimension prepended to every emitter: always
// present, never null or missing, always clock.Now() in ISO-8601
// millisecond form.
type Time struct {
	clk Clock
}

func NewTime(clk Clock) *Time { return &Time{clk: clk} }

func (d *Time) Name() string { return "time" }

func (d *Time) Render(rc *Context) Result {
	return Result{Value: FormatISOMillis(d.clk.Now())}
}
