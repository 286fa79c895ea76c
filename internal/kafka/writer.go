package kafka

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	kgo "github.com/segmentio/kafka-go"
)

type Writer interface {
	WriteJSON(ctx context.Context, v any) error
	Close() error
}

// Keyed values choose their own partition key.
type Keyed interface {
	Key() string
}

type writer struct {
	w   *kgo.Writer
	now func() time.Time
}

// NewWriter creates a Kafka writer for topic.
// Env overrides (optional):
//   - KAFKA_REQUIRED_ACKS: "none" | "one" | "all" (default: "one")
//   - KAFKA_ASYNC: "true" | "false" (default: "false")
func NewWriter(brokers, topic string) (Writer, error) {
	addrs := splitBrokers(brokers)
	if len(addrs) == 0 {
		addrs = []string{"kafka:9092"}
	}
	w := &kgo.Writer{
		Addr:                   kgo.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kgo.Hash{},
		RequiredAcks:           requiredAcks(os.Getenv("KAFKA_REQUIRED_ACKS")),
		Async:                  strings.EqualFold(os.Getenv("KAFKA_ASYNC"), "true"),
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &writer{w: w, now: time.Now}, nil
}

func (wr *writer) WriteJSON(ctx context.Context, v any) error {
	msg, err := wr.message(v)
	if err != nil {
		return err
	}
	return wr.w.WriteMessages(ctx, msg)
}

func (wr *writer) message(v any) (kgo.Message, error) {
	var b []byte
	switch t := v.(type) {
	case []byte:
		b = t
	default:
		var err error
		if b, err = json.Marshal(v); err != nil {
			return kgo.Message{}, err
		}
	}
	msg := kgo.Message{Value: b, Time: wr.now()}
	if k, ok := v.(Keyed); ok {
		msg.Key = []byte(k.Key())
	}
	return msg, nil
}

func (wr *writer) Close() error { return wr.w.Close() }

func requiredAcks(s string) kgo.RequiredAcks {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return kgo.RequireNone
	case "all":
		return kgo.RequireAll
	}
	return kgo.RequireOne
}

func splitBrokers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
