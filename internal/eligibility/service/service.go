// Package service implements eligibility determinations: resolve the active
// ruleset, evaluate the applicant, persist the outcome, and emit the
// compliance audit event. Persistence and the audit append share one
// transaction, so a determination that cannot be recorded is not served.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"patra/internal/applicant"
	"patra/internal/eligibility/metrics"
	"patra/internal/eligibility/models"
	"patra/internal/eligibility/ports"
	"patra/internal/engine"
	"patra/internal/ruleset"
	"patra/pkg/domain"
	dErrors "patra/pkg/domain-errors"
	"patra/pkg/platform/audit"
	"patra/pkg/platform/privacy"
	"patra/pkg/requestcontext"
)

// Type aliases for shared interfaces.
type (
	Rulesets       = ports.RulesetSource
	Store          = ports.DecisionStore
	Cache          = ports.DecisionCache
	Transactor     = ports.Transactor
	AuditPublisher = ports.AuditPublisher
)

var tracer = otel.Tracer("patra/eligibility")

const (
	defaultCacheTTL     = 5 * time.Minute
	defaultBulkLimit    = 100
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type Service struct {
	rulesets       Rulesets
	store          Store
	cache          Cache
	transactor     Transactor
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	clock          func() time.Time
	cacheTTL       time.Duration
	bulkLimit      int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithTransactor(transactor Transactor) Option {
	return func(s *Service) {
		s.transactor = transactor
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock fixes the evaluation time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func WithBulkLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bulkLimit = n
		}
	}
}

func New(rulesets Rulesets, opts ...Option) (*Service, error) {
	if rulesets == nil {
		return nil, fmt.Errorf("ruleset source is required")
	}

	svc := &Service{
		rulesets:  rulesets,
		cacheTTL:  defaultCacheTTL,
		bulkLimit: defaultBulkLimit,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// now prefers the injected clock, then the request-scoped time.
func (s *Service) now(ctx context.Context) time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return requestcontext.Now(ctx)
}

// Check performs one eligibility determination.
func (s *Service) Check(ctx context.Context, req models.CheckRequest) (*models.CheckResult, error) {
	start := time.Now()

	if req.Applicant == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "applicant record is required")
	}
	if req.SchemeCode == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "scheme_code is required")
	}

	ctx, span := tracer.Start(ctx, "eligibility.check",
		trace.WithAttributes(attribute.String("scheme", string(req.SchemeCode))))
	defer span.End()

	rs, err := s.rulesets.Get(req.SchemeCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ruleset lookup failed")
		return nil, err
	}

	cacheKey := fmt.Sprintf("patra:decision:%s:%s:%s", rs.SchemeCode, rs.Version, req.Applicant.Fingerprint())
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		s.metrics.ObserveCheckLatency(time.Since(start))
		return &models.CheckResult{DecisionID: cached.ID, Decision: cached.Decision, FromCache: true}, nil
	}

	facts := applicant.BuildFacts(req.Applicant)
	evaluatedAt := s.now(ctx)
	decision := engine.Evaluate(rs, facts, evaluatedAt)

	outcome := "ineligible"
	if decision.Eligible {
		outcome = "eligible"
	}
	s.metrics.IncrementOutcome(string(rs.SchemeCode), outcome)
	for _, rule := range decision.ActiveExclusions {
		s.metrics.IncrementExclusion(string(rs.SchemeCode), rule)
	}
	span.SetAttributes(
		attribute.Bool("eligible", decision.Eligible),
		attribute.Int("finding_count", decision.ReasonCount()),
	)

	subjectHash := privacy.HashSubjectID(req.Applicant.SubjectID())
	record := &models.DecisionRecord{
		ID:             uuid.NewString(),
		SubjectHash:    subjectHash,
		SchemeCode:     rs.SchemeCode,
		RulesetVersion: rs.Version,
		Eligible:       decision.Eligible,
		Decision:       decision,
		ClientID:       requestcontext.ClientID(ctx),
		RequestID:      requestcontext.RequestID(ctx),
		CreatedAt:      evaluatedAt,
	}

	if err := s.persist(ctx, record, outcome); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record determination")
	}

	s.toCache(ctx, cacheKey, record.ID, decision)

	if s.logger != nil {
		s.logger.InfoContext(ctx, "eligibility determined",
			"request_id", record.RequestID,
			"scheme", rs.SchemeCode,
			"ruleset_version", rs.Version,
			"eligible", decision.Eligible,
			"finding_count", decision.ReasonCount(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	s.metrics.ObserveCheckLatency(time.Since(start))

	return &models.CheckResult{DecisionID: record.ID, Decision: decision}, nil
}

// persist saves the record and appends the compliance event. With a
// transactor both share one transaction; serving an unrecorded
// determination is not an option, so any failure fails the check.
func (s *Service) persist(ctx context.Context, record *models.DecisionRecord, outcome string) error {
	if s.store == nil {
		return nil
	}

	save := func(ctx context.Context) error {
		if err := s.store.Save(ctx, record); err != nil {
			return err
		}
		if s.auditPublisher == nil {
			return nil
		}
		return s.auditPublisher.Emit(ctx, audit.Event{
			Category:       audit.CategoryCompliance,
			Timestamp:      record.CreatedAt,
			Action:         string(audit.EventDecisionMade),
			SubjectHash:    record.SubjectHash,
			SchemeCode:     string(record.SchemeCode),
			RulesetVersion: record.RulesetVersion,
			Decision:       outcome,
			Reason:         reasonSummary(record.Decision),
			ClientID:       record.ClientID,
			RequestID:      record.RequestID,
		})
	}

	if s.transactor != nil {
		return s.transactor.RunInTx(ctx, save)
	}
	return save(ctx)
}

func (s *Service) fromCache(ctx context.Context, key string) *models.CachedDecision {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		s.metrics.IncrementCache("error")
		if s.logger != nil {
			s.logger.WarnContext(ctx, "decision cache read failed", "error", err)
		}
		return nil
	}
	if cached == nil || cached.Decision == nil {
		s.metrics.IncrementCache("miss")
		return nil
	}
	s.metrics.IncrementCache("hit")
	return cached
}

func (s *Service) toCache(ctx context.Context, key, decisionID string, decision *engine.Decision) {
	if s.cache == nil {
		return
	}
	cached := &models.CachedDecision{ID: decisionID, Decision: decision}
	if err := s.cache.Set(ctx, key, cached, s.cacheTTL); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "decision cache write failed", "error", err)
	}
}

// reasonSummary flattens a decision's findings into one audit line.
func reasonSummary(d *engine.Decision) string {
	if d.Eligible {
		return ""
	}
	var parts []string
	if len(d.FailedRequirements) > 0 {
		fields := make([]string, len(d.FailedRequirements))
		for i, f := range d.FailedRequirements {
			fields[i] = f.Field
		}
		parts = append(parts, "requirements: "+strings.Join(fields, ","))
	}
	if len(d.FailedConditionals) > 0 {
		rules := make([]string, len(d.FailedConditionals))
		for i, f := range d.FailedConditionals {
			rules[i] = f.Rule
		}
		parts = append(parts, "conditionals: "+strings.Join(rules, ","))
	}
	if len(d.ActiveExclusions) > 0 {
		parts = append(parts, "exclusions: "+strings.Join(d.ActiveExclusions, ","))
	}
	if !d.FamilyValid {
		parts = append(parts, "family: "+d.FamilyDetail)
	}
	return strings.Join(parts, "; ")
}

// CheckBulk evaluates up to the configured limit of records concurrently.
// The first failing record aborts the batch.
func (s *Service) CheckBulk(ctx context.Context, reqs []models.CheckRequest) ([]*models.CheckResult, error) {
	if len(reqs) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one record is required")
	}
	if len(reqs) > s.bulkLimit {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "batch exceeds limit of %d records", s.bulkLimit)
	}

	results := make([]*models.CheckResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, req := range reqs {
		g.Go(func() error {
			result, err := s.Check(gctx, req)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// History returns past determinations for one subject, newest first.
func (s *Service) History(ctx context.Context, subjectID string, limit int) ([]*models.DecisionRecord, error) {
	if strings.TrimSpace(subjectID) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject_id is required")
	}
	if s.store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "decision history is not configured")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.store.ListBySubject(ctx, privacy.HashSubjectID(subjectID), limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list determinations")
	}
	return records, nil
}

// Schemes lists the scheme codes with an active ruleset.
func (s *Service) Schemes() []domain.SchemeCode {
	return s.rulesets.Schemes()
}

// Scheme returns the active ruleset of one scheme.
func (s *Service) Scheme(code domain.SchemeCode) (*ruleset.RuleSet, error) {
	return s.rulesets.Get(code)
}
