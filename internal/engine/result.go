package engine

import (
	"github.com/roach88/formsmith/internal/changeset"
	"github.com/roach88/formsmith/internal/resolve"
	"github.com/roach88/formsmith/internal/store"
)

// Result type tags.
const (
	ResultChangeSet     = "change_set"
	ResultClarification = "clarification"
)

// Result is the single outcome of one resolution pass.
//
// Type "change_set" carries the validated change-set plus the before
// snapshot of every touched form. Type "clarification" carries a question
// and optional display-safe candidate lists so a caller can offer choice
// buttons instead of free text.
type Result struct {
	Type string `json:"type"`

	ChangeSet      changeset.ChangeSet              `json:"change_set,omitempty"`
	BeforeSnapshot map[string]*store.FormStructure  `json:"before_snapshot,omitempty"`

	Question        string              `json:"question,omitempty"`
	Reason          string              `json:"reason,omitempty"`
	FormCandidates  []resolve.Candidate `json:"form_candidates,omitempty"`
	FieldCandidates []resolve.Candidate `json:"field_candidates,omitempty"`
}

// clarificationResult converts a recovered ClarificationError into the
// outcome handed to the caller.
func clarificationResult(ce *ClarificationError) *Result {
	return &Result{
		Type:            ResultClarification,
		Question:        ce.Question,
		Reason:          ce.Reason,
		FormCandidates:  ce.FormCandidates,
		FieldCandidates: ce.FieldCandidates,
	}
}
