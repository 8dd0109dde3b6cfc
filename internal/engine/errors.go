package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/formsmith/internal/resolve"
)

// Clarification reasons. Surfaced for telemetry and tests; the user-facing
// text lives in Question.
const (
	ReasonPlannerRequest   = "planner_request"
	ReasonFormNotFound     = "form_not_found"
	ReasonFormAmbiguous    = "form_ambiguous"
	ReasonFieldNotFound    = "field_not_found"
	ReasonFieldAmbiguous   = "field_ambiguous"
	ReasonPageNotFound     = "page_not_found"
	ReasonPageAmbiguous    = "page_ambiguous"
	ReasonOptionNotFound   = "option_not_found"
	ReasonRuleNotFound     = "rule_not_found"
	ReasonRuleAmbiguous    = "rule_ambiguous"
	ReasonUnknownFieldType = "unknown_field_type"
	ReasonMissingReference = "missing_reference"
	ReasonUnresolvedRef    = "unresolved_reference"
)

// ClarificationError aborts a pass because grounding was ambiguous or
// incomplete. It is recovered locally by the engine and turned into a
// clarification outcome; it never escapes Resolve as a hard failure.
type ClarificationError struct {
	Reason          string
	Question        string
	FormCandidates  []resolve.Candidate
	FieldCandidates []resolve.Candidate
}

func (e *ClarificationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Question)
}

// RowLimitError aborts a pass whose change-set grew past the configured
// ceiling. This is a caller-correctable payload-size problem, distinct
// from both clarifications and structural failures; no partial change-set
// is ever returned alongside it.
type RowLimitError struct {
	Planned int
	Limit   int
}

func (e *RowLimitError) Error() string {
	return fmt.Sprintf("planned %d row changes which exceeds limit %d", e.Planned, e.Limit)
}

// AsClarification unwraps a ClarificationError if err carries one.
func AsClarification(err error) (*ClarificationError, bool) {
	var ce *ClarificationError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsRowLimit reports whether err is a row ceiling violation.
func IsRowLimit(err error) bool {
	var re *RowLimitError
	return errors.As(err, &re)
}
