package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formsmith/internal/changeset"
	"github.com/roach88/formsmith/internal/engine"
	"github.com/roach88/formsmith/internal/schema"
	"github.com/roach88/formsmith/internal/testutil"
)

func newTestServer(t *testing.T, fixture string) http.Handler {
	t.Helper()
	s := testutil.OpenFixture(t, fixture)
	catalog, err := schema.Load(context.Background(), s.DB())
	require.NoError(t, err)
	eng := engine.New(s, catalog, engine.WithMinter(changeset.SequentialMinter()))
	return New(eng, s, catalog).Router()
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, "empty")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestResolve_ChangeSet(t *testing.T) {
	srv := newTestServer(t, "travel")

	body := `{
		"options": [{
			"op": "add",
			"form": {"name": "Travel Intake"},
			"field": {"name": "destination"},
			"values": ["Milan"]
		}]
	}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/resolve", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Type      string `json:"type"`
		ChangeSet map[string]struct {
			Insert []map[string]any `json:"insert"`
		} `json:"change_set"`
		BeforeSnapshot map[string]json.RawMessage `json:"before_snapshot"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "change_set", result.Type)
	require.Len(t, result.ChangeSet["option_items"].Insert, 1)
	assert.Equal(t, "Milan", result.ChangeSet["option_items"].Insert[0]["value"])
	assert.Contains(t, result.BeforeSnapshot, "frm_trip")
}

func TestResolve_Clarification(t *testing.T) {
	srv := newTestServer(t, "ambiguous")

	body := `{
		"fields": [{
			"op": "add",
			"form": {"name": "Feedback"},
			"code": "rating",
			"type": "number"
		}]
	}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/resolve", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Type           string `json:"type"`
		Reason         string `json:"reason"`
		FormCandidates []struct {
			ID string `json:"id"`
		} `json:"form_candidates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "clarification", result.Type)
	assert.Equal(t, "form_ambiguous", result.Reason)
	assert.Len(t, result.FormCandidates, 2)
}

func TestResolve_InvalidPlanRejected(t *testing.T) {
	srv := newTestServer(t, "empty")

	body := `{"fields": [{"op": "explode", "form": {"name": "x"}}]}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/resolve", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid plan")
}

func TestSnapshot(t *testing.T) {
	srv := newTestServer(t, "employment")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forms/frm_emp/snapshot", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var structure struct {
		Form struct {
			Slug string `json:"slug"`
		} `json:"form"`
		Fields     []json.RawMessage `json:"fields"`
		LogicRules []json.RawMessage `json:"logic_rules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &structure))
	assert.Equal(t, "employment-demo", structure.Form.Slug)
	assert.Len(t, structure.Fields, 2)
	assert.Len(t, structure.LogicRules, 2)
}

func TestSnapshot_NotFound(t *testing.T) {
	srv := newTestServer(t, "empty")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forms/frm_missing/snapshot", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListForms(t *testing.T) {
	srv := newTestServer(t, "ambiguous")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forms", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var forms []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forms))
	require.Len(t, forms, 2)
	assert.Equal(t, "frm_cf1", forms[0].ID)
}

func TestSchema(t *testing.T) {
	srv := newTestServer(t, "empty")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schema", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "form_fields")
}
