package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patra/internal/platform/kafka/consumer"
	audit "patra/pkg/platform/audit"
)

type appendedEvent struct {
	id    uuid.UUID
	event audit.Event
}

type fakeEventStore struct {
	appended []appendedEvent
	err      error
}

func (f *fakeEventStore) AppendEvent(_ context.Context, eventID uuid.UUID, event audit.Event) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, appendedEvent{id: eventID, event: event})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decisionMessage(id uuid.UUID) *consumer.Message {
	return &consumer.Message{
		Topic: "patra.audit.compliance",
		Key:   []byte(id.String()),
		Value: []byte(`{
			"ID": "` + id.String() + `",
			"Category": "compliance",
			"Timestamp": "2024-06-01T10:30:00Z",
			"Action": "decision_made",
			"SubjectHash": "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
			"SchemeCode": "pm-kisan",
			"RulesetVersion": "2024.1",
			"Decision": "eligible",
			"ClientID": "portal",
			"RequestID": "req-1"
		}`),
	}
}

func TestPersistHandler_MaterializesEvent(t *testing.T) {
	store := &fakeEventStore{}
	h := NewPersistHandler(store, testLogger())
	id := uuid.New()

	require.NoError(t, h.Handle(context.Background(), decisionMessage(id)))

	require.Len(t, store.appended, 1)
	got := store.appended[0]
	assert.Equal(t, id, got.id)
	assert.Equal(t, audit.CategoryCompliance, got.event.Category)
	assert.Equal(t, string(audit.EventDecisionMade), got.event.Action)
	assert.Equal(t, "pm-kisan", got.event.SchemeCode)
	assert.Equal(t, "2024.1", got.event.RulesetVersion)
	assert.Equal(t, "eligible", got.event.Decision)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC), got.event.Timestamp.UTC())
}

func TestPersistHandler_MalformedKeyCommits(t *testing.T) {
	store := &fakeEventStore{}
	h := NewPersistHandler(store, testLogger())

	msg := &consumer.Message{Topic: "patra.audit.compliance", Key: []byte("not-a-uuid"), Value: []byte("{}")}
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Empty(t, store.appended)
}

func TestPersistHandler_MalformedPayloadCommits(t *testing.T) {
	store := &fakeEventStore{}
	h := NewPersistHandler(store, testLogger())

	msg := &consumer.Message{
		Topic: "patra.audit.operations",
		Key:   []byte(uuid.New().String()),
		Value: []byte("{not json"),
	}
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Empty(t, store.appended)
}

func TestPersistHandler_ComplianceRequiresSubjectHash(t *testing.T) {
	store := &fakeEventStore{}
	h := NewPersistHandler(store, testLogger())

	msg := &consumer.Message{
		Topic: "patra.audit.compliance",
		Key:   []byte(uuid.New().String()),
		Value: []byte(`{"Category":"compliance","Action":"decision_made"}`),
	}
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Empty(t, store.appended, "compliance event without subject must be skipped")
}

func TestPersistHandler_OperationsEventNeedsNoSubject(t *testing.T) {
	store := &fakeEventStore{}
	h := NewPersistHandler(store, testLogger())

	msg := &consumer.Message{
		Topic: "patra.audit.operations",
		Key:   []byte(uuid.New().String()),
		Value: []byte(`{"Action":"ruleset_reloaded"}`),
	}
	require.NoError(t, h.Handle(context.Background(), msg))
	require.Len(t, store.appended, 1)
	assert.Equal(t, audit.CategoryOperations, store.appended[0].event.Category)
	assert.False(t, store.appended[0].event.Timestamp.IsZero())
}

func TestPersistHandler_StoreErrorRedelivers(t *testing.T) {
	store := &fakeEventStore{err: errors.New("connection refused")}
	h := NewPersistHandler(store, testLogger())

	err := h.Handle(context.Background(), decisionMessage(uuid.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store audit event")
}

func TestRouter_DispatchesByTopic(t *testing.T) {
	var handled []string
	record := func(name string) TopicHandler {
		return HandlerFunc(func(context.Context, *consumer.Message) error {
			handled = append(handled, name)
			return nil
		})
	}

	router := NewRouter(testLogger(), nil)
	router.Register("patra.audit.compliance", record("compliance"))
	router.Register("patra.audit.security", record("security"))

	require.NoError(t, router.Handle(context.Background(), &consumer.Message{Topic: "patra.audit.security"}))
	assert.Equal(t, []string{"security"}, handled)
}

func TestRouter_FallbackHandlesUnknownTopic(t *testing.T) {
	fallbackCalled := false
	fallback := HandlerFunc(func(context.Context, *consumer.Message) error {
		fallbackCalled = true
		return nil
	})

	router := NewRouter(testLogger(), fallback)
	require.NoError(t, router.Handle(context.Background(), &consumer.Message{Topic: "unknown.topic"}))
	assert.True(t, fallbackCalled)
}

func TestRouter_UnknownTopicWithoutFallbackCommits(t *testing.T) {
	router := NewRouter(testLogger(), nil)
	err := router.Handle(context.Background(), &consumer.Message{Topic: "unknown.topic", Key: []byte("k")})
	assert.NoError(t, err)
}
