package audit

import (
	"context"

	"github.com/google/uuid"
)

// Emitter is what domain services depend on to record audit events.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists audit events. The postgres implementation writes to the
// transactional outbox; the memory implementation backs unit tests.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subjectHash string) ([]Event, error)
}

// OutboxMessage is one serialized event pending relay to Kafka.
type OutboxMessage struct {
	ID       uuid.UUID
	Topic    string
	Payload  []byte
	Attempts int
}
