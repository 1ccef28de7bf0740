package activity

import (
	"context"
	"sync"

	"github.com/example/ec-catalog-cart/internal/infrastructure/kafka"
)

// Recorder is an in-memory Sink for tests
type Recorder struct {
	mu       sync.Mutex
	messages []kafka.Message

	// Err, when set, is returned by Publish
	Err error
}

func (r *Recorder) Publish(ctx context.Context, msg kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, msg)
	return nil
}

// Types returns the types of the recorded events in publish order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.messages))
	for i, m := range r.messages {
		types[i] = m.Type
	}
	return types
}

// Events returns the recorded envelopes in publish order
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]Event, 0, len(r.messages))
	for _, m := range r.messages {
		if e, ok := m.Value.(Event); ok {
			events = append(events, e)
		}
	}
	return events
}
