// Package sentinel defines the errors stores report as plain facts.
//
// Store implementations return these, optionally wrapped; services translate
// them into domain errors with the right code for the transport layer.
// Validation failures never use sentinels, they go through pkg/domain-errors
// directly.
package sentinel

import "errors"

var (
	// ErrNotFound reports that the row or key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports that an insert or update collided with an
	// existing row, such as a duplicate client name or ruleset version.
	ErrConflict = errors.New("conflict")
)
