package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formScope() []Entry {
	return []Entry{
		{ID: "frm_1", Primary: "trip-intake", Secondary: "Travel Intake",
			Candidate: Candidate{ID: "frm_1", Title: "Travel Intake", Slug: "trip-intake"}},
		{ID: "frm_2", Primary: "client-feedback", Secondary: "Client Feedback",
			Candidate: Candidate{ID: "frm_2", Title: "Client Feedback", Slug: "client-feedback"}},
		{ID: "frm_3", Primary: "customer-feedback", Secondary: "Customer Feedback",
			Candidate: Candidate{ID: "frm_3", Title: "Customer Feedback", Slug: "customer-feedback"}},
	}
}

func TestResolve_ExactID(t *testing.T) {
	out := DefaultStrategy().Resolve("frm_2", "", formScope())
	require.Equal(t, StatusResolved, out.Status)
	assert.Equal(t, "frm_2", out.Entry.ID)
	assert.False(t, out.Fuzzy)
}

func TestResolve_IDNotInScope(t *testing.T) {
	out := DefaultStrategy().Resolve("frm_99", "", formScope())
	assert.Equal(t, StatusNotFound, out.Status)
}

func TestResolve_NameMatchingIDWinsFirst(t *testing.T) {
	out := DefaultStrategy().Resolve("", "frm_3", formScope())
	require.Equal(t, StatusResolved, out.Status)
	assert.Equal(t, "frm_3", out.Entry.ID)
}

func TestResolve_ExactPrimary(t *testing.T) {
	out := DefaultStrategy().Resolve("", "trip-intake", formScope())
	require.Equal(t, StatusResolved, out.Status)
	assert.Equal(t, "frm_1", out.Entry.ID)
	assert.False(t, out.Fuzzy)
}

func TestResolve_SecondaryCaseInsensitive(t *testing.T) {
	out := DefaultStrategy().Resolve("", "travel intake", formScope())
	require.Equal(t, StatusResolved, out.Status)
	assert.Equal(t, "frm_1", out.Entry.ID)
	assert.False(t, out.Fuzzy)
}

func TestResolve_FuzzySingleMatch(t *testing.T) {
	out := DefaultStrategy().Resolve("", "travel", formScope())
	require.Equal(t, StatusResolved, out.Status)
	assert.Equal(t, "frm_1", out.Entry.ID)
	assert.True(t, out.Fuzzy)
}

func TestResolve_FuzzyTieIsAmbiguous(t *testing.T) {
	out := DefaultStrategy().Resolve("", "feedback", formScope())
	require.Equal(t, StatusAmbiguous, out.Status)
	require.Len(t, out.Candidates, 2)
	assert.Equal(t, "frm_2", out.Candidates[0].ID, "candidates come back sorted by id")
	assert.Equal(t, "frm_3", out.Candidates[1].ID)
}

func TestResolve_ExactTieStopsBeforeFuzzy(t *testing.T) {
	entries := []Entry{
		{ID: "fld_2", Secondary: "Status", Candidate: Candidate{ID: "fld_2"}},
		{ID: "fld_1", Secondary: "status", Candidate: Candidate{ID: "fld_1"}},
	}
	out := DefaultStrategy().Resolve("", "Status", entries)
	require.Equal(t, StatusAmbiguous, out.Status)
	require.Len(t, out.Candidates, 2)
	assert.Equal(t, "fld_1", out.Candidates[0].ID)
}

func TestResolve_NotFound(t *testing.T) {
	out := DefaultStrategy().Resolve("", "inventory report", formScope())
	assert.Equal(t, StatusNotFound, out.Status)
}

func TestResolve_EmptyReference(t *testing.T) {
	out := DefaultStrategy().Resolve("", "", formScope())
	assert.Equal(t, StatusNotFound, out.Status)
}

func TestAllCandidates_SortedByID(t *testing.T) {
	entries := []Entry{
		{ID: "b", Candidate: Candidate{ID: "b"}},
		{ID: "a", Candidate: Candidate{ID: "a"}},
		{ID: "c", Candidate: Candidate{ID: "c"}},
	}
	got := AllCandidates(entries)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}
