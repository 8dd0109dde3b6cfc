// Package testutil provides seeded form-definition databases for tests.
//
// Each fixture is a named, deterministic dataset opened on a throwaway
// database file. Tests across packages share these so that scenario
// expectations stay comparable.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/roach88/formsmith/internal/store"
)

// OpenStore creates an empty store on a temp path, cleaned up with the test.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formsmith.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// OpenFixture creates a store seeded with the named fixture.
//
// Fixtures:
//   - empty: schema and field types only
//   - travel: one form with a dropdown field that has options
//   - employment: one form with two fields and two logic rules
//   - ambiguous: two forms whose titles collide under fuzzy matching
func OpenFixture(t *testing.T, name string) *store.Store {
	t.Helper()
	s := OpenStore(t)
	Seed(t, s, name)
	return s
}

// Seed applies a named fixture to an already open store.
func Seed(t *testing.T, s *store.Store, name string) {
	t.Helper()
	stmts, ok := fixtures[name]
	if !ok {
		t.Fatalf("unknown fixture %q", name)
	}
	for _, stmt := range stmts {
		if _, err := s.DB().Exec(stmt); err != nil {
			t.Fatalf("seed fixture %q: %v\nstatement: %s", name, err, stmt)
		}
	}
}

// FixturePath creates a seeded database file and returns its path, for
// tests that exercise surfaces taking a database path flag.
func FixturePath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formsmith.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	Seed(t, s, name)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	return path
}

var fixtures = map[string][]string{
	"empty": {},

	"travel": {
		`INSERT INTO forms (id, slug, title, status) VALUES
			('frm_trip', 'trip-intake', 'Travel Intake', 'published')`,
		`INSERT INTO form_pages (id, form_id, position, title) VALUES
			('pg_trip_1', 'frm_trip', 1, 'Trip Details')`,
		`INSERT INTO form_fields (id, form_id, page_id, type_id, code, label, position, required, read_only, visible_by_default) VALUES
			('fld_dest', 'frm_trip', 'pg_trip_1', 'ft_dropdown', 'destination', 'Destination', 1, 1, 0, 1),
			('fld_notes', 'frm_trip', 'pg_trip_1', 'ft_textarea', 'notes', 'Notes', 2, 0, 0, 1)`,
		`INSERT INTO option_sets (id, form_id, name) VALUES
			('os_dest', 'frm_trip', 'Destination options')`,
		`INSERT INTO field_option_binding (field_id, option_set_id) VALUES
			('fld_dest', 'os_dest')`,
		`INSERT INTO option_items (id, option_set_id, value, label, position, is_active) VALUES
			('opt_paris', 'os_dest', 'Paris', 'Paris', 1, 1),
			('opt_tokyo', 'os_dest', 'Tokyo', 'Tokyo', 2, 1)`,
	},

	"employment": {
		`INSERT INTO forms (id, slug, title, status) VALUES
			('frm_emp', 'employment-demo', 'Employment Demo', 'draft')`,
		`INSERT INTO form_pages (id, form_id, position, title) VALUES
			('pg_emp_1', 'frm_emp', 1, 'Details')`,
		`INSERT INTO form_fields (id, form_id, page_id, type_id, code, label, position, required, read_only, visible_by_default) VALUES
			('fld_status', 'frm_emp', 'pg_emp_1', 'ft_dropdown', 'employment_status', 'Employment Status', 1, 1, 0, 1),
			('fld_employer', 'frm_emp', 'pg_emp_1', 'ft_text', 'employer_name', 'Employer Name', 2, 0, 0, 1)`,
		`INSERT INTO option_sets (id, form_id, name) VALUES
			('os_status', 'frm_emp', 'Employment Status options')`,
		`INSERT INTO field_option_binding (field_id, option_set_id) VALUES
			('fld_status', 'os_status')`,
		`INSERT INTO option_items (id, option_set_id, value, label, position, is_active) VALUES
			('opt_employed', 'os_status', 'Employed', 'Employed', 1, 1),
			('opt_unemployed', 'os_status', 'Unemployed', 'Unemployed', 2, 1)`,
		`INSERT INTO logic_rules (id, form_id, name, trigger, scope, priority, enabled) VALUES
			('lr_1', 'frm_emp', 'Show employer when employed', 'on_change', 'form', 1, 1),
			('lr_2', 'frm_emp', 'Require employer when employed', 'on_change', 'form', 2, 1)`,
		`INSERT INTO logic_conditions (id, rule_id, lhs_ref, operator, rhs, bool_join, position) VALUES
			('lc_1', 'lr_1', 'fld_status', '=', 'Employed', 'AND', 1),
			('lc_2', 'lr_2', 'fld_status', '=', 'Employed', 'AND', 1)`,
		`INSERT INTO logic_actions (id, rule_id, action, target_ref, position) VALUES
			('la_1', 'lr_1', 'show', 'fld_employer', 1),
			('la_2', 'lr_2', 'require', 'fld_employer', 1)`,
	},

	"ambiguous": {
		`INSERT INTO forms (id, slug, title, status) VALUES
			('frm_cf1', 'client-feedback', 'Client Feedback', 'published'),
			('frm_cf2', 'customer-feedback', 'Customer Feedback', 'published')`,
		`INSERT INTO form_pages (id, form_id, position, title) VALUES
			('pg_cf1_1', 'frm_cf1', 1, 'Feedback'),
			('pg_cf2_1', 'frm_cf2', 1, 'Feedback')`,
	},
}
