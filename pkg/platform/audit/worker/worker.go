// Package worker relays audit events from the transactional outbox to
// Kafka. It polls for unpublished rows, produces them in order, and marks
// them published only after broker acknowledgement, so events survive
// crashes on either side of the relay.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "patra/pkg/platform/audit"
	"patra/pkg/platform/circuit"
)

// Outbox is the slice of the audit store the relay needs.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxMessage, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, cause string) error
}

// Publisher produces one acknowledged record.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Worker polls the outbox and relays rows to Kafka. A circuit breaker
// guards the producer: while open, each cycle sends a single probe row
// instead of a full batch.
type Worker struct {
	outbox   Outbox
	producer Publisher
	breaker  *circuit.Breaker
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the worker's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithInterval sets the poll interval.
func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithBatchSize sets how many rows one cycle relays.
func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batch = n
		}
	}
}

// WithBreaker replaces the default producer breaker.
func WithBreaker(breaker *circuit.Breaker) Option {
	return func(w *Worker) {
		if breaker != nil {
			w.breaker = breaker
		}
	}
}

// New creates a relay worker over the given outbox and producer.
func New(outbox Outbox, producer Publisher, opts ...Option) *Worker {
	w := &Worker{
		outbox:   outbox,
		producer: producer,
		breaker:  circuit.New("audit-producer", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:   slog.Default(),
		interval: time.Second,
		batch:    100,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("audit outbox worker started", "interval", w.interval, "batch", w.batch)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("audit outbox worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.relayOnce(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("outbox relay cycle failed", "error", err)
			}
		}
	}
}

func (w *Worker) relayOnce(ctx context.Context) error {
	limit := w.batch
	if w.breaker.IsOpen() {
		limit = 1
	}

	messages, err := w.outbox.FetchUnpublished(ctx, limit)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(messages))
	for _, msg := range messages {
		if err := w.producer.Publish(ctx, msg.Topic, []byte(msg.ID.String()), msg.Payload); err != nil {
			if markErr := w.outbox.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
				w.logger.Error("marking outbox row failed", "id", msg.ID, "error", markErr)
			}
			if _, change := w.breaker.RecordFailure(); change.Opened {
				w.logger.Warn("audit producer circuit opened", "breaker", w.breaker.Name())
			}
			w.logger.Error("audit publish failed",
				"id", msg.ID,
				"topic", msg.Topic,
				"attempts", msg.Attempts+1,
				"error", err,
			)
			break
		}
		if _, change := w.breaker.RecordSuccess(); change.Closed {
			w.logger.Info("audit producer circuit closed", "breaker", w.breaker.Name())
		}
		published = append(published, msg.ID)
	}

	if len(published) == 0 {
		return nil
	}
	if err := w.outbox.MarkPublished(ctx, published); err != nil {
		// Rows stay unpublished and will be produced again; consumers
		// dedupe on event ID.
		return err
	}
	return nil
}
