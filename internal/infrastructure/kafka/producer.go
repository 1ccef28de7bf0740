package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// HeaderEventType carries the event type so consumers can filter without decoding
const HeaderEventType = "event-type"

// Message is one event to publish. Value is encoded as JSON.
type Message struct {
	Key   string
	Type  string
	Value any
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer}
}

// Publish writes msg keyed by msg.Key, so events of one entity stay ordered
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg.Value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", msg.Type)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(msg.Key),
		Value:   data,
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(msg.Type)}},
		Time:    time.Now(),
	})
	return errors.Wrapf(err, "publish %s", msg.Type)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
