package distributions

import (
	"fmt"
	"strings"
	"time"
)

// timestampFields lists, per distribution kind, which keys accept an
// ISO-8601 string instead of a bare number when parsed via ParseTimestamp.
var timestampFields = map[string][]string{
	"constant":    {"value"},
	"uniform":     {"min", "max"},
	"exponential": {"mean"},
	"normal":      {"mean"},
}

// ParseTimestamp parses a distribution the same way Parse does, except
// that any field named in timestampFields for this distribution's type may
// be given as an ISO-8601 string; such strings are converted to POSIX
// seconds before the distribution is constructed, so Sample returns POSIX
// seconds rather than a human date.
func ParseTimestamp(raw map[string]interface{}, clk Clock) (Distribution, error) {
	kind, _ := raw["type"].(string)
	converted := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		converted[k] = v
	}
	for _, field := range timestampFields[strings.ToLower(kind)] {
		s, ok := converted[field].(string)
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("timestamp distribution: field %q: %w", field, err)
		}
		converted[field] = float64(t.Unix())
	}
	return Parse(converted, clk)
}
