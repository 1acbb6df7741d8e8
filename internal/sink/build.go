package sink

import (
	"fmt"
	"strings"
)

// build dispatches on raw["type"], pulling the per-type required fields
// out of the decoded JSON map the way ieg/core.py's DataDriver constructor
// does inline, just split into its own function per sink kind.
func build(raw map[string]interface{}) (Sink, error) {
	kind, _ := raw["type"].(string)
	switch strings.ToLower(kind) {
	case "stdout", "":
		return NewStdout(), nil

	case "file":
		path, _ := raw["path"].(string)
		return NewFile(path)

	case "kafka":
		endpoint, _ := raw["endpoint"].(string)
		topic, _ := raw["topic"].(string)
		return NewKafka(KafkaConfig{
			Endpoint:         endpoint,
			Topic:            topic,
			SecurityProtocol: stringOr(raw, "security_protocol", "PLAINTEXT"),
			CompressionType:  stringField(raw, "compression_type"),
			TopicKey:         stringSliceField(raw, "topic_key"),
		})

	case "confluent":
		servers, _ := raw["servers"].(string)
		topic, _ := raw["topic"].(string)
		username, _ := raw["username"].(string)
		password, _ := raw["password"].(string)
		return NewConfluent(servers, topic, username, password, stringSliceField(raw, "topic_key"))

	default:
		return nil, fmt.Errorf("sink: unknown target type %q", kind)
	}
}

func stringField(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return s
}

func stringOr(raw map[string]interface{}, key, def string) string {
	if s, ok := raw[key].(string); ok && s != "" {
		return s
	}
	return def
}

func stringSliceField(raw map[string]interface{}, key string) []string {
	list, ok := raw[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
