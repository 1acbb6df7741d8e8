// Package record defines the ordered field map that flows from the state
// machine's dimension emission through the renderer to a sink: an ordered
// list of keys (time always first, per the emitter's dimension order) plus
// the values those keys resolve to, including nested maps produced by
// object dimensions.
package record

import "strings"

// Record is one emitted event: an ordered key list plus its value map.
// Order matters only at the top level (the implicit "time" field is always
// first); nested object/list values carry whatever structure their
// dimension produced.
type Record struct {
	Keys   []string
	Values map[string]interface{}
}

// New returns an empty Record ready for Set calls.
func New() *Record {
	return &Record{Values: make(map[string]interface{})}
}

// Set appends key to the order (if not already present) and stores value,
// which may be nil (an explicit JSON null).
func (r *Record) Set(key string, value interface{}) {
	if _, exists := r.Values[key]; !exists {
		r.Keys = append(r.Keys, key)
	}
	r.Values[key] = value
}

// Get resolves a dotted key ("a.b.c") by walking nested maps, the way the
// Python source's DataDriver.get_value does. Returns (nil, false) if any
// segment is missing or the path dead-ends on a non-map before exhausting
// the key.
func (r *Record) Get(dotted string) (interface{}, bool) {
	segments := strings.Split(dotted, ".")
	var cur interface{} = r.Values
	for _, seg := range segments {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}
