package handler

import (
	"time"

	"patra/internal/eligibility/models"
	"patra/internal/engine"
	"patra/internal/ruleset"
)

// CheckResponse is the HTTP response for POST /eligibility/check. The
// decision is the wire format; decision_id names the persisted record
// (repeats served from cache quote the original id) and from_cache marks
// served repeats.
type CheckResponse struct {
	*engine.Decision
	DecisionID string `json:"decision_id"`
	FromCache  bool   `json:"from_cache,omitempty"`
}

// FromResult converts a service result to an HTTP response.
func FromResult(result *models.CheckResult) *CheckResponse {
	return &CheckResponse{
		Decision:   result.Decision,
		DecisionID: result.DecisionID,
		FromCache:  result.FromCache,
	}
}

// BulkCheckResponse is the HTTP response for POST /eligibility/bulk.
// Results are in request order.
type BulkCheckResponse struct {
	Results []*CheckResponse `json:"results"`
}

// FromResults converts bulk service results to an HTTP response.
func FromResults(results []*models.CheckResult) *BulkCheckResponse {
	out := make([]*CheckResponse, len(results))
	for i, result := range results {
		out[i] = FromResult(result)
	}
	return &BulkCheckResponse{Results: out}
}

// SchemeInfo is one registered scheme in a listing.
type SchemeInfo struct {
	SchemeCode string `json:"scheme_code"`
	Name       string `json:"name,omitempty"`
	Version    string `json:"version"`
}

// SchemesResponse is the HTTP response for GET /schemes.
type SchemesResponse struct {
	Schemes []SchemeInfo `json:"schemes"`
}

// SchemeDetailResponse summarises one scheme's active ruleset for
// GET /schemes/{scheme_code}: how many rules of each kind, not the rules
// themselves.
type SchemeDetailResponse struct {
	SchemeCode              string `json:"scheme_code"`
	Name                    string `json:"name,omitempty"`
	Version                 string `json:"version"`
	Requirements            int    `json:"requirements"`
	ConditionalRequirements int    `json:"conditional_requirements"`
	Exclusions              int    `json:"exclusions"`
	SpecialProvisions       int    `json:"special_provisions"`
	FamilyRuleEnabled       bool   `json:"family_rule_enabled"`
}

// FromRuleSet summarises a ruleset into a scheme detail response.
func FromRuleSet(rs *ruleset.RuleSet) *SchemeDetailResponse {
	return &SchemeDetailResponse{
		SchemeCode:              string(rs.SchemeCode),
		Name:                    rs.Name,
		Version:                 rs.Version,
		Requirements:            len(rs.Requirements),
		ConditionalRequirements: len(rs.Conditionals),
		Exclusions:              len(rs.Exclusions),
		SpecialProvisions:       len(rs.Provisions),
		FamilyRuleEnabled:       rs.Family.Enabled,
	}
}

// HistoryItem is one past determination in a history response.
type HistoryItem struct {
	ID             string           `json:"id"`
	SubjectHash    string           `json:"subject_hash"`
	SchemeCode     string           `json:"scheme_code"`
	RulesetVersion string           `json:"ruleset_version"`
	Eligible       bool             `json:"eligible"`
	Decision       *engine.Decision `json:"decision"`
	CreatedAt      time.Time        `json:"created_at"`
}

// HistoryResponse is the HTTP response for GET /eligibility/decisions.
type HistoryResponse struct {
	Decisions []HistoryItem `json:"decisions"`
}

// FromRecords converts stored determinations to an HTTP response.
func FromRecords(records []*models.DecisionRecord) *HistoryResponse {
	items := make([]HistoryItem, len(records))
	for i, rec := range records {
		items[i] = HistoryItem{
			ID:             rec.ID,
			SubjectHash:    rec.SubjectHash,
			SchemeCode:     string(rec.SchemeCode),
			RulesetVersion: rec.RulesetVersion,
			Eligible:       rec.Eligible,
			Decision:       rec.Decision,
			CreatedAt:      rec.CreatedAt,
		}
	}
	return &HistoryResponse{Decisions: items}
}
