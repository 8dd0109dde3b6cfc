package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// createTestStore creates a store on a throwaway path for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedTravelForm inserts a small form with a dropdown field and options.
func seedTravelForm(t *testing.T, s *Store) {
	t.Helper()
	stmts := []string{
		`INSERT INTO forms (id, slug, title, status) VALUES ('frm_trip', 'trip-intake', 'Travel Intake', 'published')`,
		`INSERT INTO form_pages (id, form_id, position, title) VALUES ('pg_1', 'frm_trip', 1, 'Trip Details')`,
		`INSERT INTO form_fields (id, form_id, page_id, type_id, code, label, position) VALUES
			('fld_dest', 'frm_trip', 'pg_1', 'ft_dropdown', 'destination', 'Destination', 1),
			('fld_notes', 'frm_trip', 'pg_1', 'ft_textarea', 'notes', 'Notes', 2)`,
		`INSERT INTO option_sets (id, form_id, name) VALUES ('os_dest', 'frm_trip', 'Destination options')`,
		`INSERT INTO field_option_binding (field_id, option_set_id) VALUES ('fld_dest', 'os_dest')`,
		`INSERT INTO option_items (id, option_set_id, value, label, position, is_active) VALUES
			('opt_paris', 'os_dest', 'Paris', 'Paris', 1, 1),
			('opt_tokyo', 'os_dest', 'Tokyo', 'Tokyo', 2, 0)`,
		`INSERT INTO logic_rules (id, form_id, name, priority) VALUES ('lr_1', 'frm_trip', 'Show notes', 1)`,
		`INSERT INTO logic_conditions (id, rule_id, lhs_ref, operator, rhs, position) VALUES
			('lc_1', 'lr_1', 'fld_dest', '=', 'Paris', 1)`,
		`INSERT INTO logic_actions (id, rule_id, action, target_ref, position) VALUES
			('la_1', 'lr_1', 'show', 'fld_notes', 1)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestOpen_CreatesDatabaseWithSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}

	// Field types are seeded by the schema.
	keys, err := s.FieldTypeKeys(context.Background())
	if err != nil {
		t.Fatalf("FieldTypeKeys() failed: %v", err)
	}
	if len(keys) != 8 {
		t.Errorf("expected 8 seeded field types, got %d", len(keys))
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestIDs(t *testing.T) {
	s := createTestStore(t)
	seedTravelForm(t, s)

	ids, err := s.IDs(context.Background(), "form_fields")
	if err != nil {
		t.Fatalf("IDs() failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 field ids, got %d: %v", len(ids), ids)
	}

	ids, err = s.IDs(context.Background(), "forms")
	if err != nil {
		t.Fatalf("IDs() failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "frm_trip" {
		t.Errorf("unexpected form ids: %v", ids)
	}
}

func TestIDs_EmptyTable(t *testing.T) {
	s := createTestStore(t)

	ids, err := s.IDs(context.Background(), "forms")
	if err != nil {
		t.Fatalf("IDs() failed: %v", err)
	}
	if ids == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}
