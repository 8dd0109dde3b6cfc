package resolve

import (
	"sort"
	"strings"
)

// Kind names the entity kinds the resolver understands.
type Kind string

const (
	KindForm   Kind = "form"
	KindField  Kind = "field"
	KindOption Kind = "option"
	KindRule   Kind = "logic_rule"
)

// Status is the outcome class of one resolution attempt.
type Status int

const (
	// StatusResolved means exactly one row matched.
	StatusResolved Status = iota
	// StatusAmbiguous means two or more rows matched at the same tier.
	// The caller must escalate to a clarification, never guess.
	StatusAmbiguous
	// StatusNotFound means no row matched at any tier.
	StatusNotFound
)

// Candidate carries only display-safe fields of a matched or nearby row,
// suitable for offering the user a choice.
type Candidate struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Slug  string `json:"slug,omitempty"`
	Label string `json:"label,omitempty"`
	Code  string `json:"code,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Entry is one row in the resolution scope. Primary is the natural key
// (slug for forms, code for fields, value for options, name for rules);
// Secondary is the display key (title or label).
type Entry struct {
	ID        string
	Primary   string
	Secondary string
	Candidate Candidate
}

// Outcome is the result of resolving one reference against a scope.
type Outcome struct {
	Status Status

	// Entry is set when Status is StatusResolved.
	Entry *Entry

	// Fuzzy is set when the match came from the fuzzy tier. Recorded for
	// lower-confidence telemetry; callers treat it the same as exact.
	Fuzzy bool

	// Candidates lists the tied rows for StatusAmbiguous, sorted by id.
	Candidates []Candidate
}

// Resolve matches a reference against the scoped entries.
//
// Matching tiers, in order:
//  1. exact id (when id is supplied, or the name looks like an id already
//     present in the scope)
//  2. exact match on the primary natural key
//  3. exact case-insensitive match on the secondary key
//  4. fuzzy match against both keys, collecting every row above the
//     strategy threshold
//
// Any tier yielding two or more rows stops resolution with
// StatusAmbiguous; fuzzy matches never win over an ambiguous exact tier.
// Scoping is the caller's job: entries must already be limited to the
// declared scope (for example, the fields of one form).
func (s Strategy) Resolve(id, name string, entries []Entry) Outcome {
	if id != "" {
		for i := range entries {
			if entries[i].ID == id {
				return Outcome{Status: StatusResolved, Entry: &entries[i]}
			}
		}
		return Outcome{Status: StatusNotFound}
	}

	if name == "" {
		return Outcome{Status: StatusNotFound}
	}

	// A name that exactly matches a row id is an id reference.
	for i := range entries {
		if entries[i].ID == name {
			return Outcome{Status: StatusResolved, Entry: &entries[i]}
		}
	}

	if out, done := matchTier(entries, func(e *Entry) bool {
		return e.Primary != "" && e.Primary == name
	}); done {
		return out
	}

	if out, done := matchTier(entries, func(e *Entry) bool {
		return e.Secondary != "" && strings.EqualFold(e.Secondary, name)
	}); done {
		return out
	}

	out, done := matchTier(entries, func(e *Entry) bool {
		return s.fuzzyMatches(name, e.Primary) || s.fuzzyMatches(name, e.Secondary)
	})
	if done {
		out.Fuzzy = out.Status == StatusResolved
		return out
	}

	return Outcome{Status: StatusNotFound}
}

// matchTier evaluates one tier. done is false only when the tier matched
// nothing, letting the next tier run.
func matchTier(entries []Entry, match func(*Entry) bool) (Outcome, bool) {
	var hits []*Entry
	for i := range entries {
		if match(&entries[i]) {
			hits = append(hits, &entries[i])
		}
	}
	switch len(hits) {
	case 0:
		return Outcome{}, false
	case 1:
		return Outcome{Status: StatusResolved, Entry: hits[0]}, true
	default:
		return Outcome{Status: StatusAmbiguous, Candidates: CandidatesOf(hits)}, true
	}
}

// CandidatesOf extracts display candidates sorted by id for a stable,
// never-arbitrary presentation order.
func CandidatesOf(entries []*Entry) []Candidate {
	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Candidate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllCandidates extracts display candidates from a full scope, sorted by
// id. Used for not-found clarifications that list nearby alternatives.
func AllCandidates(entries []Entry) []Candidate {
	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Candidate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
