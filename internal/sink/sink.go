// Package sink implements the generator's pluggable output targets:
// stdout, file, and Kafka/Confluent message-bus topics. Every sink exposes
// the single-method contract the state machine depends on; construction
// failures (missing required config fields) are reported as plain errors
// so main can abort startup with a diagnostic, per SPEC_FULL.md §7.
//
// Grounded on the Python source's ieg/targets.py (TargetStdout, TargetFile,
// TargetKafka, TargetConfluent).
package sink

// Sink is the narrow contract the entity runtime depends on: hand it one
// already-rendered record line.
type Sink interface {
	Emit(rendered string) error
	Close() error
}

// New builds a Sink from a decoded target config map, dispatching on the
// lowercased "type" field, mirroring ieg/targets.py's DataDriver
// constructor dispatch.
func New(raw map[string]interface{}) (Sink, error) {
	return build(raw)
}
