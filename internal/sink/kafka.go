package sink

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
)

// Kafka publishes one message per record to a named topic over
// github.com/IBM/sarama. Grounded on ieg/targets.py's TargetKafka; when
// TopicKey names fields, the record is parsed back as JSON and the key is
// the concatenation of those fields' values, exactly as the Python source
// does it.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
	topicKey []string
}

// KafkaConfig carries the fields ieg/targets.py's TargetKafka constructor
// requires, plus the optional SASL_SSL fields the "confluent" target type
// layers on top of the same transport (§4.8, §9).
type KafkaConfig struct {
	Endpoint         string
	Topic            string
	SecurityProtocol string // default PLAINTEXT
	CompressionType  string
	TopicKey         []string
	Username         string
	Password         string
	SASLSSL          bool
}

// NewKafka builds a Kafka sink. Endpoint and Topic are required; a missing
// one is a fatal configuration error per §7.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("sink: kafka target requires an \"endpoint\"")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("sink: kafka target requires a \"topic\"")
	}

	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	if compression, ok := compressionCodecs[strings.ToLower(cfg.CompressionType)]; ok {
		sc.Producer.Compression = compression
	}
	if cfg.SASLSSL || strings.EqualFold(cfg.SecurityProtocol, "SASL_SSL") {
		sc.Net.TLS.Enable = true
		sc.Net.SASL.Enable = true
		sc.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		sc.Net.SASL.User = cfg.Username
		sc.Net.SASL.Password = cfg.Password
	}

	producer, err := sarama.NewSyncProducer(strings.Split(cfg.Endpoint, ","), sc)
	if err != nil {
		return nil, fmt.Errorf("sink: connecting kafka producer to %s: %w", cfg.Endpoint, err)
	}
	return &Kafka{producer: producer, topic: cfg.Topic, topicKey: cfg.TopicKey}, nil
}

// NewConfluent is NewKafka with the SASL_SSL knobs forced on, covering the
// distinct "confluent" target type (§4.8, §9) over the same transport.
func NewConfluent(servers, topic, username, password string, topicKey []string) (*Kafka, error) {
	if username == "" {
		return nil, fmt.Errorf("sink: confluent target requires a \"username\"")
	}
	if password == "" {
		return nil, fmt.Errorf("sink: confluent target requires a \"password\"")
	}
	return NewKafka(KafkaConfig{
		Endpoint: servers,
		Topic:    topic,
		TopicKey: topicKey,
		Username: username,
		Password: password,
		SASLSSL:  true,
	})
}

var compressionCodecs = map[string]sarama.CompressionCodec{
	"gzip":   sarama.CompressionGZIP,
	"snappy": sarama.CompressionSnappy,
	"lz4":    sarama.CompressionLZ4,
	"zstd":   sarama.CompressionZSTD,
}

func (k *Kafka) Emit(rendered string) error {
	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Value: sarama.StringEncoder(rendered),
	}
	if len(k.topicKey) > 0 {
		key, err := k.buildKey(rendered)
		if err != nil {
			return fmt.Errorf("sink: kafka topic_key: %w", err)
		}
		msg.Key = sarama.StringEncoder(key)
	}
	_, _, err := k.producer.SendMessage(msg)
	return err
}

// buildKey parses rendered as JSON and concatenates the named fields'
// string values, matching ieg/targets.py's TargetKafka.print.
func (k *Kafka) buildKey(rendered string) (string, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(rendered), &fields); err != nil {
		return "", fmt.Errorf("record is not JSON, required for topic_key: %w", err)
	}
	var sb strings.Builder
	for _, name := range k.topicKey {
		sb.WriteString(fmt.Sprint(fields[name]))
	}
	return sb.String(), nil
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}
