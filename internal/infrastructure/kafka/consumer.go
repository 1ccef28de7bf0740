package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// MessageHandler handles one message. eventType is empty when the producer set no type header.
type MessageHandler func(ctx context.Context, eventType string, key, value []byte) error

type Consumer struct {
	reader *kafka.Reader
	log    *log.Entry
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{
		reader: reader,
		log:    log.WithFields(log.Fields{"topic": topic, "group": groupID}),
	}
}

// Consume blocks until ctx is done. Handler errors are logged and the message is skipped.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.WithError(err).Error("read message")
				continue
			}

			eventType := headerValue(msg.Headers, HeaderEventType)
			if err := handler(ctx, eventType, msg.Key, msg.Value); err != nil {
				c.log.WithError(err).WithFields(log.Fields{
					"type":   eventType,
					"offset": msg.Offset,
				}).Error("handle message")
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func headerValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
