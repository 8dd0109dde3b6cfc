package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/formsmith/internal/changeset"
	"github.com/roach88/formsmith/internal/resolve"
)

// goldenDoc is the canonical serialization compared against golden files.
// The before snapshot is omitted: it restates the fixture verbatim and is
// covered by the store tests. Placeholders are stable because scenarios
// always run with the sequential minter.
type goldenDoc struct {
	Scenario  string              `json:"scenario"`
	Type      string              `json:"type"`
	ChangeSet changeset.ChangeSet `json:"change_set,omitempty"`

	Question        string              `json:"question,omitempty"`
	Reason          string              `json:"reason,omitempty"`
	FormCandidates  []resolve.Candidate `json:"form_candidates,omitempty"`
	FieldCandidates []resolve.Candidate `json:"field_candidates,omitempty"`
}

// RunWithGolden executes a scenario and compares its canonical outcome
// against testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario) {
	t.Helper()

	result := Run(t, sc)

	doc := goldenDoc{
		Scenario:        sc.Name,
		Type:            result.Type,
		ChangeSet:       result.ChangeSet,
		Question:        result.Question,
		Reason:          result.Reason,
		FormCandidates:  result.FormCandidates,
		FieldCandidates: result.FieldCandidates,
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden doc: %v", err)
	}
	out = append(out, '\n')

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, sc.Name, out)
}
