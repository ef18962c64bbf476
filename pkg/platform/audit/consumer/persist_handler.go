package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"patra/internal/platform/kafka/consumer"
	audit "patra/pkg/platform/audit"
)

// EventStore is the storage interface for materialized events.
type EventStore interface {
	AppendEvent(ctx context.Context, eventID uuid.UUID, event audit.Event) error
}

// PersistHandler writes consumed audit events to long-term storage. One
// handler serves all three topics; the store deduplicates on event ID, so
// redelivered messages are harmless.
type PersistHandler struct {
	store  EventStore
	logger *slog.Logger
}

// NewPersistHandler creates a persistence handler.
func NewPersistHandler(store EventStore, logger *slog.Logger) *PersistHandler {
	return &PersistHandler{
		store:  store,
		logger: logger,
	}
}

// eventPayload matches the JSON the outbox worker publishes.
type eventPayload struct {
	ID             string `json:"ID"`
	Category       string `json:"Category"`
	Timestamp      string `json:"Timestamp"`
	Action         string `json:"Action"`
	SubjectHash    string `json:"SubjectHash"`
	SchemeCode     string `json:"SchemeCode"`
	RulesetVersion string `json:"RulesetVersion"`
	Decision       string `json:"Decision"`
	Reason         string `json:"Reason"`
	ClientID       string `json:"ClientID"`
	RequestID      string `json:"RequestID"`
	ActorID        string `json:"ActorID"`
}

// Handle materializes one audit event. Malformed messages are logged and
// committed so they cannot block the partition.
func (h *PersistHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	eventID, err := uuid.Parse(string(msg.Key))
	if err != nil {
		h.logger.Error("CRITICAL: failed to parse audit event ID",
			"topic", msg.Topic,
			"key", string(msg.Key),
			"error", err,
		)
		// Return nil to commit - malformed messages should not block
		return nil
	}

	var payload eventPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.Error("CRITICAL: failed to unmarshal audit payload",
			"event_id", eventID,
			"topic", msg.Topic,
			"error", err,
		)
		return nil
	}

	category := audit.EventCategory(payload.Category)
	if category == "" {
		category = audit.AuditEvent(payload.Action).Category()
	}

	// Compliance events must carry the subject they concern.
	if category == audit.CategoryCompliance && payload.SubjectHash == "" {
		h.logger.Error("CRITICAL: compliance event missing subject hash",
			"event_id", eventID,
			"action", payload.Action,
		)
		return nil
	}

	event := audit.Event{
		Category:       category,
		Action:         payload.Action,
		SubjectHash:    payload.SubjectHash,
		SchemeCode:     payload.SchemeCode,
		RulesetVersion: payload.RulesetVersion,
		Decision:       payload.Decision,
		Reason:         payload.Reason,
		ClientID:       payload.ClientID,
		RequestID:      payload.RequestID,
		ActorID:        payload.ActorID,
	}

	if payload.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339Nano, payload.Timestamp); err == nil {
			event.Timestamp = ts
		} else {
			event.Timestamp = time.Now().UTC()
		}
	} else {
		event.Timestamp = time.Now().UTC()
	}

	if err := h.store.AppendEvent(ctx, eventID, event); err != nil {
		h.logger.Error("failed to store audit event",
			"event_id", eventID,
			"action", event.Action,
			"error", err,
		)
		return fmt.Errorf("store audit event: %w", err)
	}

	h.logger.Debug("stored audit event",
		"event_id", eventID,
		"category", event.Category,
		"action", event.Action,
	)

	return nil
}
