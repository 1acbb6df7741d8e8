package distributions

import (
	"testing"
	"time"
)

type stubClock struct{ t time.Time }

func (c stubClock) Now() time.Time { return c.t }

func TestUniformSamplesUpToMaxPlusOne(t *testing.T) {
	s := NewSampler(1)
	u := Uniform{Min: 0, Max: 2}
	max := 0.0
	for i := 0; i < 5000; i++ {
		v := u.Sample(s)
		if v < 0 || v >= 3 {
			t.Fatalf("sample %v outside [0,3)", v)
		}
		if v > max {
			max = v
		}
	}
	if max <= 2 {
		t.Fatalf("expected samples to exceed Max=2 thanks to the +1 quirk, max seen was %v", max)
	}
}

func TestConstantAlwaysSameValue(t *testing.T) {
	s := NewSampler(1)
	c := Constant{Value: 42}
	for i := 0; i < 10; i++ {
		if c.Sample(s) != 42 {
			t.Fatal("constant drifted")
		}
	}
}

func TestParseUnknownTypeErrors(t *testing.T) {
	_, err := Parse(map[string]interface{}{"type": "bogus"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown distribution type")
	}
}

func TestGMMTemporalNearestPriorProfile(t *testing.T) {
	// Only Monday (1) has a profile; querying on Wednesday should fall back
	// to Monday's profile via nearest-prior wraparound.
	days := map[int][]Component{
		1: {{MeanHour: 12, SigmaHours: 2, Weight: 1}},
	}
	wed := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC) // a Wednesday
	profile, ok := nearestPriorProfile(days, isoWeekday(wed))
	if !ok || len(profile) != 1 || profile[0].MeanHour != 12 {
		t.Fatalf("expected Monday's profile, got %+v ok=%v", profile, ok)
	}
}

func TestGMMTemporalNearestPriorWrapsAroundSunday(t *testing.T) {
	// Only Sunday (7) has a profile; querying on Monday (1) should wrap
	// around to the most recent prior day, Sunday.
	days := map[int][]Component{
		7: {{MeanHour: 6, SigmaHours: 1, Weight: 1}},
	}
	profile, ok := nearestPriorProfile(days, 1)
	if !ok || len(profile) != 1 || profile[0].MeanHour != 6 {
		t.Fatalf("expected Sunday's profile via wraparound, got %+v ok=%v", profile, ok)
	}
}

func TestGMMTemporalMultiplierFloor(t *testing.T) {
	// Far from every component's mean hour, the Gaussian bump contribution
	// should underflow toward zero and get clamped to the 0.001 floor
	// rather than collapsing the mean to zero or infinity.
	profile := []Component{{MeanHour: 12, SigmaHours: 0.01, Weight: 1}}
	m := multiplier(profile, 0) // 12 hours away from the spike, tiny sigma
	if m != 0 {
		t.Fatalf("expected near-zero raw multiplier far from the spike, got %v", m)
	}

	days := map[int][]Component{1: profile}
	clk := stubClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)} // Monday midnight
	g := GMMTemporal{Mean: 10, Days: days, Clock: clk}
	s := NewSampler(1)
	v := g.Sample(s)
	if v <= 0 {
		t.Fatalf("expected a positive sample even with a near-zero multiplier, got %v", v)
	}
}

func TestParseTimestampConvertsISOStrings(t *testing.T) {
	d, err := ParseTimestamp(map[string]interface{}{
		"type": "uniform",
		"min":  "2024-01-01T00:00:00Z",
		"max":  "2024-01-01T01:00:00Z",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	u, ok := d.(Uniform)
	if !ok {
		t.Fatalf("expected Uniform, got %T", d)
	}
	if u.Min != 1704067200 {
		t.Fatalf("got Min=%v, want POSIX seconds for 2024-01-01T00:00:00Z", u.Min)
	}
}
