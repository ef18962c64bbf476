package handler

import (
	"strings"

	"patra/internal/applicant"
	"patra/pkg/domain"
	dErrors "patra/pkg/domain-errors"
)

// CheckRequest is the HTTP request body for POST /eligibility/check.
type CheckRequest struct {
	SchemeCode string            `json:"scheme_code"`
	Applicant  *applicant.Record `json:"applicant"`

	// Parsed values (populated by Validate)
	parsedScheme domain.SchemeCode
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CheckRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.SchemeCode = strings.TrimSpace(r.SchemeCode)
	if r.SchemeCode == "" {
		return dErrors.New(dErrors.CodeValidation, "scheme_code is required")
	}
	scheme, err := domain.ParseSchemeCode(r.SchemeCode)
	if err != nil {
		return err
	}
	r.parsedScheme = scheme

	// Field values inside the record are not validated here: bad values
	// become findings in the decision, not request errors.
	if r.Applicant == nil {
		return dErrors.New(dErrors.CodeValidation, "applicant is required")
	}

	return nil
}

// ParsedScheme returns the validated scheme code.
func (r *CheckRequest) ParsedScheme() domain.SchemeCode {
	return r.parsedScheme
}

// BulkCheckRequest is the HTTP request body for POST /eligibility/check/bulk.
// One scheme, many applicants.
type BulkCheckRequest struct {
	SchemeCode string              `json:"scheme_code"`
	Applicants []*applicant.Record `json:"applicants"`

	parsedScheme domain.SchemeCode
}

// Validate validates and parses the bulk request.
func (r *BulkCheckRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.SchemeCode = strings.TrimSpace(r.SchemeCode)
	if r.SchemeCode == "" {
		return dErrors.New(dErrors.CodeValidation, "scheme_code is required")
	}
	scheme, err := domain.ParseSchemeCode(r.SchemeCode)
	if err != nil {
		return err
	}
	r.parsedScheme = scheme

	if len(r.Applicants) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one applicant is required")
	}
	for i, rec := range r.Applicants {
		if rec == nil {
			return dErrors.Newf(dErrors.CodeValidation, "applicants[%d] is empty", i)
		}
	}

	return nil
}

// ParsedScheme returns the validated scheme code.
func (r *BulkCheckRequest) ParsedScheme() domain.SchemeCode {
	return r.parsedScheme
}
