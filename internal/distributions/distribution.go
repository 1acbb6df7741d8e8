package distributions

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Clock is the minimal time source gmm_temporal needs: the current instant,
// in whatever domain (wall clock or simulated) the caller's clock runs in.
// Defined here, rather than imported from internal/clock, so this package
// has no dependency on the clock package at all — internal/clock satisfies
// this interface structurally.
type Clock interface {
	Now() time.Time
}

// Distribution samples a scalar. Implementations must be safe for
// concurrent use — in practice this just means routing every draw through
// the shared Sampler.
type Distribution interface {
	Sample(s *Sampler) float64
}

// Constant always returns the configured value.
type Constant struct{ Value float64 }

func (c Constant) Sample(*Sampler) float64 { return c.Value }

// Uniform samples continuously on [Min, Max+1). The +1 upper bias is the
// quirk documented in SPEC_FULL.md §9 and DESIGN.md — preserved rather than
// corrected, for bit-compatible behavior with the source this was distilled
// from; an index distribution like uniform[0,2] relies on it to ever reach
// index 2 once truncated to int.
type Uniform struct{ Min, Max float64 }

func (u Uniform) Sample(s *Sampler) float64 { return s.Uniform01Range(u.Min, u.Max+1) }

// Exponential samples a mean-scaled exponential: mean * Exp(1).
type Exponential struct{ Mean float64 }

func (e Exponential) Sample(s *Sampler) float64 { return e.Mean * s.ExpFloat64() }

// Normal samples a Gaussian with the given mean and standard deviation.
type Normal struct{ Mean, StdDev float64 }

func (n Normal) Sample(s *Sampler) float64 { return n.Mean + n.StdDev*s.NormFloat64() }

// Component is one Gaussian bump in a gmm_temporal day profile: centered at
// MeanHour (0-23.999...) with spread SigmaHours and relative Weight.
type Component struct {
	MeanHour    float64
	SigmaHours  float64
	Weight      float64
}

// GMMTemporal modulates a base exponential interarrival by time-of-day and
// day-of-week, per SPEC_FULL.md §4.1. Days is keyed by ISO weekday
// (1=Monday ... 7=Sunday).
type GMMTemporal struct {
	Mean  float64
	Days  map[int][]Component
	Clock Clock
}

func (g GMMTemporal) Sample(s *Sampler) float64 {
	now := g.Clock.Now().UTC()
	weekday := isoWeekday(now)
	profile, ok := nearestPriorProfile(g.Days, weekday)
	if !ok {
		// No profile exists for any weekday: fall back to the unmodulated
		// exponential rather than panicking mid-run.
		return Exponential{Mean: g.Mean}.Sample(s)
	}

	hour := float64(now.Hour()) + float64(now.Minute())/60 + float64(now.Second())/3600
	m := multiplier(profile, hour)
	if m < 0.001 {
		m = 0.001
	}
	return Exponential{Mean: g.Mean / m}.Sample(s)
}

func multiplier(profile []Component, hour float64) float64 {
	total := 0.0
	for _, c := range profile {
		if c.SigmaHours <= 0 {
			continue
		}
		for _, offset := range [3]float64{-24, 0, 24} {
			z := (hour - c.MeanHour + offset) / c.SigmaHours
			total += c.Weight * math.Exp(-0.5*z*z)
		}
	}
	if isNaNOrInf(total) {
		return 0
	}
	return total
}

// isoWeekday converts Go's time.Weekday (Sunday=0) to ISO weekday
// (Monday=1 ... Sunday=7).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// nearestPriorProfile walks backward from weekday (inclusive) modulo 7
// until it finds a configured day profile.
func nearestPriorProfile(days map[int][]Component, weekday int) ([]Component, bool) {
	for i := 0; i < 7; i++ {
		d := ((weekday-1-i)%7 + 7) % 7
		d++ // back to 1..7
		if profile, ok := days[d]; ok {
			return profile, true
		}
	}
	return nil, false
}

// Parse builds a Distribution from a decoded JSON object, dispatching on
// the lowercased "type" field — the same shape as the Python source's
// parse_distribution. clk is only consulted for gmm_temporal.
func Parse(raw map[string]interface{}, clk Clock) (Distribution, error) {
	kindRaw, ok := raw["type"]
	if !ok {
		return nil, fmt.Errorf("distribution: missing \"type\"")
	}
	kind, ok := kindRaw.(string)
	if !ok {
		return nil, fmt.Errorf("distribution: \"type\" must be a string")
	}

	switch strings.ToLower(kind) {
	case "constant":
		v, err := floatField(raw, "value")
		if err != nil {
			return nil, err
		}
		return Constant{Value: v}, nil

	case "uniform":
		min, err := floatField(raw, "min")
		if err != nil {
			return nil, err
		}
		max, err := floatField(raw, "max")
		if err != nil {
			return nil, err
		}
		return Uniform{Min: min, Max: max}, nil

	case "exponential":
		mean, err := floatField(raw, "mean")
		if err != nil {
			return nil, err
		}
		return Exponential{Mean: mean}, nil

	case "normal":
		mean, err := floatField(raw, "mean")
		if err != nil {
			return nil, err
		}
		std, err := floatField(raw, "std_dev")
		if err != nil {
			return nil, err
		}
		return Normal{Mean: mean, StdDev: std}, nil

	case "gmm_temporal":
		mean, err := floatField(raw, "mean")
		if err != nil {
			return nil, err
		}
		days, err := parseDays(raw["days"])
		if err != nil {
			return nil, err
		}
		if len(days) == 0 {
			return nil, fmt.Errorf("distribution: gmm_temporal requires at least one day profile")
		}
		if clk == nil {
			return nil, fmt.Errorf("distribution: gmm_temporal requires a clock")
		}
		return GMMTemporal{Mean: mean, Days: days, Clock: clk}, nil

	default:
		return nil, fmt.Errorf("distribution: unknown type %q", kind)
	}
}

func parseDays(raw interface{}) (map[int][]Component, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("gmm_temporal: \"days\" must be an object keyed by ISO weekday")
	}
	days := make(map[int][]Component, len(obj))
	for key, v := range obj {
		weekday, err := weekdayKey(key)
		if err != nil {
			return nil, err
		}
		list, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("gmm_temporal: day %q must be a list of components", key)
		}
		components := make([]Component, 0, len(list))
		for _, item := range list {
			c, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("gmm_temporal: component in day %q must be an object", key)
			}
			mean, err := floatField(c, "mean_hour")
			if err != nil {
				return nil, err
			}
			sigma, err := floatField(c, "sigma_hours")
			if err != nil {
				return nil, err
			}
			weight, err := floatField(c, "weight")
			if err != nil {
				return nil, err
			}
			components = append(components, Component{MeanHour: mean, SigmaHours: sigma, Weight: weight})
		}
		days[weekday] = components
	}
	return days, nil
}

var isoWeekdayNames = map[string]int{
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
	"sun": 7, "sunday": 7,
}

func weekdayKey(key string) (int, error) {
	if n, ok := isoWeekdayNames[strings.ToLower(key)]; ok {
		return n, nil
	}
	// strconv.Atoi, unlike fmt.Sscanf, rejects a string with trailing
	// garbage after the digits instead of silently accepting the numeric
	// prefix (e.g. "3xyz" must not parse as weekday 3).
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 7 {
		return n, nil
	}
	return 0, fmt.Errorf("gmm_temporal: invalid day key %q (want 1-7 or a weekday name)", key)
}

func floatField(raw map[string]interface{}, key string) (float64, error) {
	v, ok := raw[key]
	if !ok {
		return 0, fmt.Errorf("distribution: missing field %q", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("distribution: field %q must be a number", key)
	}
	return f, nil
}
