package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// simpleDurationRE matches the CLI's short-form run length: a number
// followed by s, m, or h (e.g. "90s", "5m", "2h").
var simpleDurationRE = regexp.MustCompile(`^(\d+(?:\.\d+)?)([smh])$`)

// isoDurationRE matches the restricted ISO-8601 duration grammar this
// generator supports: PnDTnHnMnS, every component optional but at least
// one must be present. No calendar months/years, since a run length in
// months is meaningless for this domain.
var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration parses a CLI -r value: either "<n>s|m|h" or a restricted
// ISO-8601 duration string, per SPEC_FULL.md §6.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("duration: empty string")
	}

	if m := simpleDurationRE.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("duration: %q: %w", s, err)
		}
		switch m[2] {
		case "s":
			return time.Duration(n * float64(time.Second)), nil
		case "m":
			return time.Duration(n * float64(time.Minute)), nil
		case "h":
			return time.Duration(n * float64(time.Hour)), nil
		}
	}

	if m := isoDurationRE.FindStringSubmatch(s); m != nil && (m[1] != "" || m[2] != "" || m[3] != "" || m[4] != "") {
		var total time.Duration
		if m[1] != "" {
			days, _ := strconv.Atoi(m[1])
			total += time.Duration(days) * 24 * time.Hour
		}
		if m[2] != "" {
			hours, _ := strconv.Atoi(m[2])
			total += time.Duration(hours) * time.Hour
		}
		if m[3] != "" {
			minutes, _ := strconv.Atoi(m[3])
			total += time.Duration(minutes) * time.Minute
		}
		if m[4] != "" {
			secs, _ := strconv.ParseFloat(m[4], 64)
			total += time.Duration(secs * float64(time.Second))
		}
		return total, nil
	}

	return 0, fmt.Errorf("duration: %q is neither <n>s|m|h nor a supported ISO-8601 duration", s)
}

// ParseStartTime parses the CLI -s value, an ISO-8601 instant.
func ParseStartTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("start time: %q: %w", s, err)
	}
	return t, nil
}
