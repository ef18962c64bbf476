package applicant

import (
	"encoding/json"

	dErrors "patra/pkg/domain-errors"
)

// ParseRecord decodes an applicant record from JSON.
//
// Only structurally malformed JSON is an error here. Out-of-range or unknown
// field values decode fine and are judged by the rules during evaluation, so
// one evaluation can report every problem at once. Unknown top-level fields
// are tolerated: upstream portals attach fields this engine does not use.
func ParseRecord(data []byte) (*Record, error) {
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "applicant record is required")
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed applicant record")
	}
	return &rec, nil
}
