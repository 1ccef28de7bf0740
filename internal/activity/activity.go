package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/ec-catalog-cart/internal/infrastructure/kafka"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Event is the envelope of every activity message
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh id
func NewEvent(eventType, key string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, errors.Wrapf(err, "encode %s", eventType)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}, nil
}

// Decode unmarshals the payload of e into dst
func (e Event) Decode(dst any) error {
	return errors.Wrapf(json.Unmarshal(e.Data, dst), "decode %s", e.Type)
}

// Sink delivers encoded events. *kafka.Producer is the production sink.
type Sink interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Publisher emits activity events after a successful operation.
// Failures are logged and counted, never returned.
type Publisher struct {
	sink     Sink
	failures prometheus.Counter
	log      *log.Entry
}

// NewPublisher returns a Publisher writing to sink. A nil sink discards every event.
func NewPublisher(sink Sink, failures prometheus.Counter) *Publisher {
	return &Publisher{
		sink:     sink,
		failures: failures,
		log:      log.WithField("component", "activity"),
	}
}

func (p *Publisher) Emit(ctx context.Context, eventType, key string, data any) {
	if p == nil || p.sink == nil {
		return
	}

	event, err := NewEvent(eventType, key, data)
	if err == nil {
		err = p.sink.Publish(ctx, kafka.Message{Key: key, Type: eventType, Value: event})
	}
	if err != nil {
		if p.failures != nil {
			p.failures.Inc()
		}
		p.log.WithError(err).WithField("type", eventType).Warn("activity event dropped")
		return
	}
	p.log.WithFields(log.Fields{"type": eventType, "key": key}).Debug("activity event published")
}
