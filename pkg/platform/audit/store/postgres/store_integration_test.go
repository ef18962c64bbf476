//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"patra/pkg/platform/audit"
	"patra/pkg/platform/audit/store/postgres"
	"patra/pkg/platform/tx"
	"patra/pkg/testutil/containers"
)

type AuditStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestAuditStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)

	err := s.store.EnsureSchema(context.Background())
	s.Require().NoError(err)
}

func (s *AuditStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "audit_outbox", "audit_events")
	s.Require().NoError(err)
}

func decisionEvent() audit.Event {
	return audit.Event{
		Action:         string(audit.EventDecisionMade),
		SubjectHash:    "a1b2c3",
		SchemeCode:     "pm-kisan",
		RulesetVersion: "2024.1",
		Decision:       "ineligible",
		Reason:         "exclusions: income_tax_payer",
		ClientID:       "portal",
		RequestID:      "req-1",
		Timestamp:      time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
	}
}

func (s *AuditStoreSuite) TestAppendAndFetchUnpublished() {
	ctx := context.Background()

	err := s.store.Append(ctx, decisionEvent())
	s.Require().NoError(err)

	msgs, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)

	// decision_made is a compliance event, so it rides the compliance topic.
	s.Equal(audit.TopicCompliance, msgs[0].Topic)
	s.Equal(0, msgs[0].Attempts)
	s.NotEqual(uuid.Nil, msgs[0].ID)

	var payload map[string]any
	s.Require().NoError(json.Unmarshal(msgs[0].Payload, &payload))
	s.Equal("decision_made", payload["Action"])
	s.Equal("a1b2c3", payload["SubjectHash"])
	s.Equal("pm-kisan", payload["SchemeCode"])
	s.Equal("ineligible", payload["Decision"])
}

func (s *AuditStoreSuite) TestFetchUnpublishedOldestFirst() {
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	store := postgres.New(s.postgres.DB, postgres.WithClock(func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}))

	for i := 0; i < 3; i++ {
		event := decisionEvent()
		event.RequestID = string(rune('a' + i))
		s.Require().NoError(store.Append(ctx, event))
	}

	msgs, err := store.FetchUnpublished(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(msgs, 2)

	var first, second map[string]any
	s.Require().NoError(json.Unmarshal(msgs[0].Payload, &first))
	s.Require().NoError(json.Unmarshal(msgs[1].Payload, &second))
	s.Equal("a", first["RequestID"])
	s.Equal("b", second["RequestID"])
}

func (s *AuditStoreSuite) TestMarkPublishedRemovesFromBacklog() {
	ctx := context.Background()

	s.Require().NoError(s.store.Append(ctx, decisionEvent()))
	s.Require().NoError(s.store.Append(ctx, decisionEvent()))

	msgs, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(msgs, 2)

	err = s.store.MarkPublished(ctx, []uuid.UUID{msgs[0].ID})
	s.Require().NoError(err)

	remaining, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal(msgs[1].ID, remaining[0].ID)
}

func (s *AuditStoreSuite) TestMarkFailedKeepsRowFetchable() {
	ctx := context.Background()

	s.Require().NoError(s.store.Append(ctx, decisionEvent()))

	msgs, err := s.store.FetchUnpublished(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)

	s.Require().NoError(s.store.MarkFailed(ctx, msgs[0].ID, "broker unavailable"))
	s.Require().NoError(s.store.MarkFailed(ctx, msgs[0].ID, "broker unavailable"))

	msgs, err = s.store.FetchUnpublished(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1, "failed rows stay in the backlog for retry")
	s.Equal(2, msgs[0].Attempts)
}

func (s *AuditStoreSuite) TestAppendRollsBackWithTransaction() {
	ctx := context.Background()
	runner := tx.NewRunner(s.postgres.DB)

	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Append(ctx, decisionEvent()); err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	s.Require().Error(err)

	msgs, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(msgs, "rolled back append should leave no outbox row")
}

func (s *AuditStoreSuite) TestAppendEventIsIdempotent() {
	ctx := context.Background()
	eventID := uuid.New()

	s.Require().NoError(s.store.AppendEvent(ctx, eventID, decisionEvent()))

	// Redelivery of the same event ID is a no-op.
	replay := decisionEvent()
	replay.Reason = "should not overwrite"
	s.Require().NoError(s.store.AppendEvent(ctx, eventID, replay))

	events, err := s.store.ListBySubject(ctx, "a1b2c3")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("exclusions: income_tax_payer", events[0].Reason)
}

func (s *AuditStoreSuite) TestListBySubjectFilters() {
	ctx := context.Background()

	first := decisionEvent()
	s.Require().NoError(s.store.AppendEvent(ctx, uuid.New(), first))

	other := decisionEvent()
	other.SubjectHash = "zzz"
	s.Require().NoError(s.store.AppendEvent(ctx, uuid.New(), other))

	events, err := s.store.ListBySubject(ctx, "a1b2c3")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("a1b2c3", events[0].SubjectHash)
	s.Equal(audit.CategoryCompliance, events[0].Category)
	s.Equal("pm-kisan", events[0].SchemeCode)
}

func (s *AuditStoreSuite) TestListRecent() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		event := decisionEvent()
		event.Timestamp = event.Timestamp.Add(time.Duration(i) * time.Hour)
		event.RequestID = string(rune('a' + i))
		s.Require().NoError(s.store.AppendEvent(ctx, uuid.New(), event))
	}

	events, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal("c", events[0].RequestID, "newest event first")
	s.Equal("b", events[1].RequestID)
}
