package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"patra/internal/applicant"
	"patra/internal/eligibility/service"
	"patra/internal/eligibility/store/memory"
	"patra/internal/ruleset"
	"patra/pkg/domain"
	"patra/pkg/requestcontext"
)

// HandlerSuite provides shared test setup for eligibility handler tests.
// Handler tests use a real service over in-memory stores and validate HTTP
// concerns: parsing, status codes, response mapping.
type HandlerSuite struct {
	suite.Suite
	router http.Handler
	store  *memory.Store
}

func (s *HandlerSuite) SetupTest() {
	rules := &ruleset.RuleSet{
		SchemeCode: "pm-kisan",
		Name:       "PM-KISAN",
		Version:    "2024.1",
		Requirements: []ruleset.FieldRequirement{
			{Field: applicant.FactAge, Checks: []ruleset.Check{{Op: ruleset.OpGte, Value: 18}}},
			{Field: applicant.FactLandSizeAcres, Checks: []ruleset.Check{{Op: ruleset.OpGt, Value: 0}}},
		},
		Exclusions: []ruleset.ExclusionRule{
			{Name: "income_tax_payer", When: ruleset.Condition{Field: applicant.FactIsIncomeTaxPayer, Op: ruleset.OpEq, Value: true}},
		},
	}
	registry := ruleset.NewRegistry(nil)
	registry.Replace(map[domain.SchemeCode]*ruleset.RuleSet{"pm-kisan": rules})

	s.store = memory.New()
	svc, err := service.New(registry, service.WithStore(s.store))
	require.NoError(s.T(), err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(svc, logger)

	r := chi.NewRouter()
	handler.Register(r)
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

// serve runs a request as an authenticated client.
func (s *HandlerSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	ctx := requestcontext.WithClientID(req.Context(), "portal")
	ctx = requestcontext.WithRequestID(ctx, "req-test")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func checkBody(schemeCode string, record map[string]any) []byte {
	body, _ := json.Marshal(map[string]any{
		"scheme_code": schemeCode,
		"applicant":   record,
	})
	return body
}

func eligibleApplicant() map[string]any {
	return map[string]any{
		"name":            "Ramesh Kumar",
		"age":             45,
		"aadhaar_number":  "234123412346",
		"land_size_acres": 2.5,
	}
}

func (s *HandlerSuite) TestCheck_Eligible() {
	req := httptest.NewRequest(http.MethodPost, "/eligibility/check",
		bytes.NewReader(checkBody("pm-kisan", eligibleApplicant())))
	req.Header.Set("Content-Type", "application/json")

	rec := s.serve(req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(s.T(), json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(s.T(), true, resp["eligible"])
	assert.Equal(s.T(), "pm-kisan", resp["scheme_code"])
	assert.Equal(s.T(), "2024.1", resp["ruleset_version"])
	assert.NotEmpty(s.T(), resp["decision_id"])
	assert.Equal(s.T(), 1, s.store.Len())
}

func (s *HandlerSuite) TestCheck_IneligibleListsFindings() {
	record := eligibleApplicant()
	record["age"] = 15
	record["is_income_tax_payer"] = true

	req := httptest.NewRequest(http.MethodPost, "/eligibility/check",
		bytes.NewReader(checkBody("pm-kisan", record)))
	req.Header.Set("Content-Type", "application/json")

	rec := s.serve(req)

	require.Equal(s.T(), http.StatusOK, rec.Code, "an ineligible determination is still a successful check")
	var resp struct {
		Eligible           bool     `json:"eligible"`
		ActiveExclusions   []string `json:"active_exclusions"`
		FailedRequirements []struct {
			Field string `json:"field"`
		} `json:"failed_requirements"`
	}
	require.NoError(s.T(), json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(s.T(), resp.Eligible)
	assert.Equal(s.T(), []string{"income_tax_payer"}, resp.ActiveExclusions)
	require.Len(s.T(), resp.FailedRequirements, 1)
	assert.Equal(s.T(), "age", resp.FailedRequirements[0].Field)
}

func (s *HandlerSuite) TestCheck_RequiresAuthentication() {
	req := httptest.NewRequest(http.MethodPost, "/eligibility/check",
		bytes.NewReader(checkBody("pm-kisan", eligibleApplicant())))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestCheck_InvalidJSON() {
	req := httptest.NewRequest(http.MethodPost, "/eligibility/check",
		bytes.NewReader([]byte("not valid json")))
	req.Header.Set("Content-Type", "application/json")

	rec := s.serve(req)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestCheck_MissingScheme() {
	body, _ := json.Marshal(map[string]any{"applicant": eligibleApplicant()})
	req := httptest.NewRequest(http.MethodPost, "/eligibility/check", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := s.serve(req)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestCheck_UnknownScheme() {
	req := httptest.NewRequest(http.MethodPost, "/eligibility/check",
		bytes.NewReader(checkBody("pm-awas", eligibleApplicant())))
	req.Header.Set("Content-Type", "application/json")

	rec := s.serve(req)

	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(s.T(), json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(s.T(), "scheme_not_found", resp.Error)
}

func (s *HandlerSuite) TestCheckBulk_ResultsInOrder() {
	ineligible := eligibleApplicant()
	ineligible["is_income_tax_payer"] = true
	body, _ := json.Marshal(map[string]any{
		"scheme_code": "pm-kisan",
		"applicants":  []map[string]any{eligibleApplicant(), ineligible},
	})
	req := httptest.NewRequest(http.MethodPost, "/eligibility/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := s.serve(req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var resp struct {
		Results []struct {
			Eligible bool `json:"eligible"`
		} `json:"results"`
	}
	require.NoError(s.T(), json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(s.T(), resp.Results, 2)
	assert.True(s.T(), resp.Results[0].Eligible)
	assert.False(s.T(), resp.Results[1].Eligible)
}

func (s *HandlerSuite) TestCheckBulk_EmptyBatch() {
	body, _ := json.Marshal(map[string]any{"scheme_code": "pm-kisan", "applicants": []map[string]any{}})
	req := httptest.NewRequest(http.MethodPost, "/eligibility/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := s.serve(req)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestSchemes_ListsActive() {
	req := httptest.NewRequest(http.MethodGet, "/schemes", nil)

	rec := s.serve(req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var resp SchemesResponse
	require.NoError(s.T(), json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(s.T(), resp.Schemes, 1)
	assert.Equal(s.T(), "pm-kisan", resp.Schemes[0].SchemeCode)
	assert.Equal(s.T(), "PM-KISAN", resp.Schemes[0].Name)
	assert.Equal(s.T(), "2024.1", resp.Schemes[0].Version)
}

func (s *HandlerSuite) TestScheme_SummarisesRules() {
	req := httptest.NewRequest(http.MethodGet, "/schemes/pm-kisan", nil)

	rec := s.serve(req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var resp SchemeDetailResponse
	require.NoError(s.T(), json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(s.T(), "pm-kisan", resp.SchemeCode)
	assert.Equal(s.T(), "2024.1", resp.Version)
	assert.Equal(s.T(), 2, resp.Requirements)
	assert.Equal(s.T(), 1, resp.Exclusions)
	assert.Equal(s.T(), 0, resp.SpecialProvisions)
	assert.False(s.T(), resp.FamilyRuleEnabled)
}

func (s *HandlerSuite) TestScheme_Unknown() {
	req := httptest.NewRequest(http.MethodGet, "/schemes/pm-awas", nil)

	rec := s.serve(req)

	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestHistory_ReturnsPastDecisions() {
	check := httptest.NewRequest(http.MethodPost, "/eligibility/check",
		bytes.NewReader(checkBody("pm-kisan", eligibleApplicant())))
	check.Header.Set("Content-Type", "application/json")
	require.Equal(s.T(), http.StatusOK, s.serve(check).Code)

	req := httptest.NewRequest(http.MethodGet, "/eligibility/decisions?subject_id=234123412346", nil)
	rec := s.serve(req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var resp struct {
		Decisions []struct {
			SchemeCode string `json:"scheme_code"`
			Eligible   bool   `json:"eligible"`
		} `json:"decisions"`
	}
	require.NoError(s.T(), json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(s.T(), resp.Decisions, 1)
	assert.Equal(s.T(), "pm-kisan", resp.Decisions[0].SchemeCode)
	assert.True(s.T(), resp.Decisions[0].Eligible)
}

func (s *HandlerSuite) TestHistory_RequiresSubject() {
	req := httptest.NewRequest(http.MethodGet, "/eligibility/decisions", nil)
	rec := s.serve(req)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestHistory_RejectsBadLimit() {
	req := httptest.NewRequest(http.MethodGet, "/eligibility/decisions?subject_id=x&limit=abc", nil)
	rec := s.serve(req)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}
