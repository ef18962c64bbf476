// Package publisher emits audit events to a store, synchronously by default
// or through a bounded buffer when losing an occasional operations event is
// acceptable. Compliance emission should stay synchronous: the store writes
// to the transactional outbox, so a failed Emit fails the surrounding action.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	audit "patra/pkg/platform/audit"
)

// ErrBufferFull is returned in async mode when the buffer cannot take more.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher implements audit.Emitter over an audit.Store.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	clock  func() time.Time

	// operations-category sampling: keep one event in sampleEvery.
	sampleEvery uint64
	opsSeen     atomic.Uint64

	inbox     chan audit.Event
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches Emit to a bounded non-blocking buffer of the
// given size, drained by a background goroutine.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.inbox = make(chan audit.Event, size)
		}
	}
}

// WithLogger sets the logger for drop and append failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(p *Publisher) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithOperationsSampling keeps one in every n operations-category events.
// Compliance and security events are never sampled.
func WithOperationsSampling(n int) Option {
	return func(p *Publisher) {
		if n > 1 {
			p.sampleEvery = uint64(n)
		}
	}
}

// NewPublisher creates a publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records one audit event. The category is derived from the action when
// unset and a zero timestamp is filled from the clock. In sync mode a store
// failure is the caller's failure; in async mode a full buffer drops the
// event with ErrBufferFull.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock()
	}

	if event.Category == audit.CategoryOperations && p.sampleEvery > 1 {
		if p.opsSeen.Add(1)%p.sampleEvery != 1 {
			return nil
		}
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
		return ErrBufferFull
	}
}

// List returns the stored events for one subject hash.
func (p *Publisher) List(ctx context.Context, subjectHash string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subjectHash)
}

// Close drains the async buffer and stops the background goroutine. Safe to
// call on a sync publisher and safe to call twice.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("failed to append audit event", "action", event.Action, "error", err)
		}
	}
}
