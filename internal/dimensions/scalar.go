package dimensions

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/implydata/imply-eventgenerator/internal/distributions"
)

// Int samples int(dist.Sample()).
type Int struct {
	Base
	Dist distributions.Distribution
}

func (d *Int) Render(rc *Context) Result {
	if d.missing(rc.Sampler) {
		return Result{Missing: true}
	}
	if d.null(rc.Sampler) {
		return Result{Value: nil}
	}
	if d.hasPool() {
		return Result{Value: d.fromPool(rc.Sampler)}
	}
	return Result{Value: int64(d.Dist.Sample(rc.Sampler))}
}

// Float samples float64(dist.Sample()), optionally rounded to Precision
// decimal places at render time.
type Float struct {
	Base
	Dist      distributions.Distribution
	Precision int // -1 means unset (full precision)
}

func (d *Float) Render(rc *Context) Result {
	if d.missing(rc.Sampler) {
		return Result{Missing: true}
	}
	if d.null(rc.Sampler) {
		return Result{Value: nil}
	}
	var v float64
	if d.hasPool() {
		v = d.fromPool(rc.Sampler).(float64)
	} else {
		v = d.Dist.Sample(rc.Sampler)
	}
	if d.Precision >= 0 {
		// Format at fixed precision and embed the string as a raw JSON number
		// literal, rather than rounding the float64 and letting json.Marshal
		// re-shrink it — matching the Python source's '%.Nf' % value string
		// formatting, trailing zeros included (DimensionFloat.get_value).
		return Result{Value: FormattedFloat(fmt.Sprintf("%.*f", d.Precision, v))}
	}
	return Result{Value: v}
}

// FormattedFloat is a float rendered at a fixed decimal precision. It
// marshals as the literal formatted digits (so "3.10" stays "3.10" instead
// of being renormalized to "3.1") and stringifies the same way for a
// template placeholder.
type FormattedFloat string

func (f FormattedFloat) MarshalJSON() ([]byte, error) { return []byte(f), nil }
func (f FormattedFloat) String() string               { return string(f) }

// String samples a length from LengthDist and draws that many characters
// uniformly from Chars (default printable ASCII).
type String struct {
	Base
	LengthDist distributions.Distribution
	Chars      string
}

const defaultPrintableASCII = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~ \t\n"

func (d *String) Render(rc *Context) Result {
	if d.missing(rc.Sampler) {
		return Result{Missing: true}
	}
	if d.null(rc.Sampler) {
		return Result{Value: nil}
	}
	if d.hasPool() {
		return Result{Value: d.fromPool(rc.Sampler)}
	}
	n := int(d.LengthDist.Sample(rc.Sampler))
	if n < 0 {
		n = 0
	}
	alphabet := d.Chars
	if alphabet == "" {
		alphabet = defaultPrintableASCII
	}
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(alphabet[rc.Sampler.Intn(len(alphabet))])
	}
	return Result{Value: sb.String()}
}

// Timestamp samples POSIX seconds from a timestamp distribution and
// renders an ISO-8601 string truncated to millisecond precision.
type Timestamp struct {
	Base
	Dist distributions.Distribution
}

func (d *Timestamp) Render(rc *Context) Result {
	if d.missing(rc.Sampler) {
		return Result{Missing: true}
	}
	if d.null(rc.Sampler) {
		return Result{Value: nil}
	}
	secs := d.Dist.Sample(rc.Sampler)
	t := time.Unix(0, int64(secs*float64(time.Second))).UTC()
	return Result{Value: FormatISOMillis(t)}
}

// FormatISOMillis renders t as ISO-8601 truncated to millisecond
// precision, e.g. "2024-01-01T00:00:00.000" — the format the clock's
// implicit time dimension and the timestamp dimension both use.
func FormatISOMillis(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000")
}

// IPAddress samples a 32-bit integer and formats it as a dotted quad.
type IPAddress struct {
	Base
	Dist distributions.Distribution
}

func (d *IPAddress) Render(rc *Context) Result {
	if d.missing(rc.Sampler) {
		return Result{Missing: true}
	}
	if d.null(rc.Sampler) {
		return Result{Value: nil}
	}
	var n uint32
	if d.hasPool() {
		n = d.fromPool(rc.Sampler).(uint32)
	} else {
		n = uint32(int64(d.Dist.Sample(rc.Sampler)))
	}
	return Result{Value: fmt.Sprintf("%d.%d.%d.%d", byte(n>>24), byte(n>>16), byte(n>>8), byte(n))}
}

// Enum chooses among Values via SelectorDist, an index into the list.
type Enum struct {
	Base
	Values       []string
	SelectorDist distributions.Distribution
}

func (d *Enum) Render(rc *Context) Result {
	if d.missing(rc.Sampler) {
		return Result{Missing: true}
	}
	if d.null(rc.Sampler) {
		return Result{Value: nil}
	}
	if d.hasPool() {
		return Result{Value: d.fromPool(rc.Sampler)}
	}
	idx := distributions.ClampIndex(int(d.SelectorDist.Sample(rc.Sampler)), len(d.Values))
	return Result{Value: d.Values[idx]}
}

// Counter is stateful: start, start+increment, start+2*increment, ... It
// has no null/missing/cardinality behavior (SPEC_FULL.md §9c) and is
// always present. Must be safe under concurrent use (§5), so the running
// value is an atomic.Int64.
type Counter struct {
	name      string
	increment int64
	value     atomic.Int64
}

func NewCounter(name string, start, increment int64) *Counter {
	c := &Counter{name: name, increment: increment}
	c.value.Store(start - increment)
	return c
}

func (d *Counter) Name() string { return d.name }

func (d *Counter) Render(rc *Context) Result {
	return Result{Value: d.value.Add(d.increment)}
}
