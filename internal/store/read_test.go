package store

import (
	"context"
	"testing"
)

func TestForms_OrderedByID(t *testing.T) {
	s := createTestStore(t)
	stmts := []string{
		`INSERT INTO forms (id, slug, title) VALUES ('frm_b', 'second', 'Second')`,
		`INSERT INTO forms (id, slug, title) VALUES ('frm_a', 'first', 'First')`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	forms, err := s.Forms(context.Background())
	if err != nil {
		t.Fatalf("Forms() failed: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("expected 2 forms, got %d", len(forms))
	}
	if forms[0].ID != "frm_a" || forms[1].ID != "frm_b" {
		t.Errorf("forms not ordered by id: %v", forms)
	}
	if forms[0].Status != "draft" {
		t.Errorf("expected default status draft, got %q", forms[0].Status)
	}
}

func TestFormByID_Missing(t *testing.T) {
	s := createTestStore(t)

	form, err := s.FormByID(context.Background(), "frm_ghost")
	if err != nil {
		t.Fatalf("FormByID() failed: %v", err)
	}
	if form != nil {
		t.Errorf("expected nil for missing form, got %+v", form)
	}
}

func TestFieldsForForm_JoinsTypeKey(t *testing.T) {
	s := createTestStore(t)
	seedTravelForm(t, s)

	fields, err := s.FieldsForForm(context.Background(), "frm_trip")
	if err != nil {
		t.Fatalf("FieldsForForm() failed: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Code != "destination" || fields[0].FieldTypeKey != "dropdown" {
		t.Errorf("unexpected first field: %+v", fields[0])
	}
	if fields[1].Code != "notes" || fields[1].FieldTypeKey != "textarea" {
		t.Errorf("unexpected second field: %+v", fields[1])
	}
}

func TestFieldTypeByKey(t *testing.T) {
	s := createTestStore(t)

	ft, err := s.FieldTypeByKey(context.Background(), "dropdown")
	if err != nil {
		t.Fatalf("FieldTypeByKey() failed: %v", err)
	}
	if ft == nil || ft.ID != "ft_dropdown" {
		t.Errorf("unexpected field type: %+v", ft)
	}

	ft, err = s.FieldTypeByKey(context.Background(), "hologram")
	if err != nil {
		t.Fatalf("FieldTypeByKey() failed: %v", err)
	}
	if ft != nil {
		t.Errorf("expected nil for unknown key, got %+v", ft)
	}
}

func TestOptionSetForField(t *testing.T) {
	s := createTestStore(t)
	seedTravelForm(t, s)

	set, err := s.OptionSetForField(context.Background(), "fld_dest")
	if err != nil {
		t.Fatalf("OptionSetForField() failed: %v", err)
	}
	if set == nil || set.ID != "os_dest" {
		t.Errorf("unexpected option set: %+v", set)
	}

	set, err = s.OptionSetForField(context.Background(), "fld_notes")
	if err != nil {
		t.Fatalf("OptionSetForField() failed: %v", err)
	}
	if set != nil {
		t.Errorf("expected nil for unbound field, got %+v", set)
	}
}

func TestOptionItemsForField_IncludesInactive(t *testing.T) {
	s := createTestStore(t)
	seedTravelForm(t, s)

	items, err := s.OptionItemsForField(context.Background(), "fld_dest")
	if err != nil {
		t.Fatalf("OptionItemsForField() failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items including the inactive one, got %d", len(items))
	}
	if items[0].Value != "Paris" || items[1].Value != "Tokyo" {
		t.Errorf("items not ordered by position: %v", items)
	}
	if items[1].IsActive != 0 {
		t.Errorf("expected Tokyo inactive, got %+v", items[1])
	}
}

func TestLogicRulesWithChildren(t *testing.T) {
	s := createTestStore(t)
	seedTravelForm(t, s)
	ctx := context.Background()

	rules, err := s.LogicRulesForForm(ctx, "frm_trip")
	if err != nil {
		t.Fatalf("LogicRulesForForm() failed: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != "lr_1" {
		t.Fatalf("unexpected rules: %v", rules)
	}
	if rules[0].Trigger != "on_change" || rules[0].Scope != "form" {
		t.Errorf("expected schema defaults applied, got %+v", rules[0])
	}

	conds, err := s.ConditionsForRule(ctx, "lr_1")
	if err != nil {
		t.Fatalf("ConditionsForRule() failed: %v", err)
	}
	if len(conds) != 1 || conds[0].LHSRef != "fld_dest" {
		t.Errorf("unexpected conditions: %v", conds)
	}
	if conds[0].BoolJoin != "AND" {
		t.Errorf("expected default bool_join AND, got %q", conds[0].BoolJoin)
	}

	acts, err := s.ActionsForRule(ctx, "lr_1")
	if err != nil {
		t.Fatalf("ActionsForRule() failed: %v", err)
	}
	if len(acts) != 1 || acts[0].TargetRef != "fld_notes" {
		t.Errorf("unexpected actions: %v", acts)
	}
}

func TestFormStructure(t *testing.T) {
	s := createTestStore(t)
	seedTravelForm(t, s)

	structure, err := s.FormStructure(context.Background(), "frm_trip")
	if err != nil {
		t.Fatalf("FormStructure() failed: %v", err)
	}
	if structure == nil {
		t.Fatal("expected structure, got nil")
	}
	if structure.Form.Slug != "trip-intake" {
		t.Errorf("unexpected form: %+v", structure.Form)
	}
	if len(structure.Pages) != 1 || len(structure.Fields) != 2 {
		t.Errorf("unexpected shape: %d pages, %d fields", len(structure.Pages), len(structure.Fields))
	}
	if len(structure.OptionsByField["fld_dest"]) != 2 {
		t.Errorf("expected 2 options for fld_dest, got %v", structure.OptionsByField["fld_dest"])
	}
	if len(structure.OptionsByField["fld_notes"]) != 0 {
		t.Errorf("expected no options for fld_notes")
	}
	if len(structure.LogicRules) != 1 || len(structure.LogicConditions) != 1 || len(structure.LogicActions) != 1 {
		t.Errorf("unexpected logic shape: %+v", structure)
	}
}

func TestFormStructure_MissingForm(t *testing.T) {
	s := createTestStore(t)

	structure, err := s.FormStructure(context.Background(), "frm_ghost")
	if err != nil {
		t.Fatalf("FormStructure() failed: %v", err)
	}
	if structure != nil {
		t.Errorf("expected nil for missing form, got %+v", structure)
	}
}

func TestSnapshots_SkipsMissingForms(t *testing.T) {
	s := createTestStore(t)
	seedTravelForm(t, s)

	snapshots, err := s.Snapshots(context.Background(), []string{"frm_trip", "frm_ghost"})
	if err != nil {
		t.Fatalf("Snapshots() failed: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	if _, ok := snapshots["frm_trip"]; !ok {
		t.Error("expected snapshot for frm_trip")
	}
}
