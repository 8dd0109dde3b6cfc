package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Form is one row of the forms table.
type Form struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

// Page is one row of the form_pages table.
type Page struct {
	ID       string `json:"id"`
	FormID   string `json:"form_id"`
	Position int    `json:"position"`
	Title    string `json:"title,omitempty"`
}

// FieldType is one row of the field_types table.
type FieldType struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Field is one row of form_fields joined with its field type key.
type Field struct {
	ID               string `json:"id"`
	FormID           string `json:"form_id"`
	PageID           string `json:"page_id"`
	TypeID           string `json:"type_id"`
	FieldTypeKey     string `json:"field_type_key"`
	Code             string `json:"code"`
	Label            string `json:"label"`
	HelpText         string `json:"help_text,omitempty"`
	Position         int    `json:"position"`
	Required         int    `json:"required"`
	ReadOnly         int    `json:"read_only"`
	Placeholder      string `json:"placeholder,omitempty"`
	DefaultValue     string `json:"default_value,omitempty"`
	VisibleByDefault int    `json:"visible_by_default"`
}

// OptionSet is one row of the option_sets table.
type OptionSet struct {
	ID     string `json:"id"`
	FormID string `json:"form_id"`
	Name   string `json:"name"`
}

// OptionItem is one row of the option_items table.
type OptionItem struct {
	ID          string `json:"id"`
	OptionSetID string `json:"option_set_id"`
	Value       string `json:"value"`
	Label       string `json:"label"`
	Position    int    `json:"position"`
	IsActive    int    `json:"is_active"`
}

// LogicRule is one row of the logic_rules table.
type LogicRule struct {
	ID       string `json:"id"`
	FormID   string `json:"form_id"`
	Name     string `json:"name"`
	Trigger  string `json:"trigger"`
	Scope    string `json:"scope"`
	Priority int    `json:"priority"`
	Enabled  int    `json:"enabled"`
}

// LogicCondition is one row of the logic_conditions table.
type LogicCondition struct {
	ID       string `json:"id"`
	RuleID   string `json:"rule_id"`
	GroupID  string `json:"group_id,omitempty"`
	LHSRef   string `json:"lhs_ref"`
	Operator string `json:"operator"`
	RHS      string `json:"rhs,omitempty"`
	BoolJoin string `json:"bool_join"`
	Position int    `json:"position,omitempty"`
}

// LogicAction is one row of the logic_actions table.
type LogicAction struct {
	ID        string `json:"id"`
	RuleID    string `json:"rule_id"`
	Action    string `json:"action"`
	TargetRef string `json:"target_ref"`
	Params    string `json:"params,omitempty"`
	Position  int    `json:"position,omitempty"`
}

// Forms returns every form ordered by id. The forms table is the resolution
// universe for form references and stays small by design.
func (s *Store) Forms(ctx context.Context) ([]Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, title, COALESCE(description, ''), status
		FROM forms
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query forms: %w", err)
	}
	defer rows.Close()

	forms := []Form{}
	for rows.Next() {
		var f Form
		if err := rows.Scan(&f.ID, &f.Slug, &f.Title, &f.Description, &f.Status); err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		forms = append(forms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forms: %w", err)
	}
	return forms, nil
}

// FormByID returns a single form, or nil if it does not exist.
func (s *Store) FormByID(ctx context.Context, id string) (*Form, error) {
	var f Form
	err := s.db.QueryRowContext(ctx, `
		SELECT id, slug, title, COALESCE(description, ''), status
		FROM forms
		WHERE id = ?
	`, id).Scan(&f.ID, &f.Slug, &f.Title, &f.Description, &f.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query form %s: %w", id, err)
	}
	return &f, nil
}

// PagesForForm returns a form's pages ordered by position.
func (s *Store) PagesForForm(ctx context.Context, formID string) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, position, COALESCE(title, '')
		FROM form_pages
		WHERE form_id = ?
		ORDER BY position ASC, id ASC
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("query pages for form %s: %w", formID, err)
	}
	defer rows.Close()

	pages := []Page{}
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.FormID, &p.Position, &p.Title); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return pages, nil
}

// FieldsForForm returns a form's fields joined with their type key,
// ordered by page then position.
func (s *Store) FieldsForForm(ctx context.Context, formID string) ([]Field, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.form_id, f.page_id, f.type_id, ft.key,
		       f.code, f.label, COALESCE(f.help_text, ''), f.position,
		       f.required, f.read_only, COALESCE(f.placeholder, ''),
		       COALESCE(f.default_value, ''), f.visible_by_default
		FROM form_fields f
		JOIN field_types ft ON ft.id = f.type_id
		WHERE f.form_id = ?
		ORDER BY f.page_id ASC, f.position ASC, f.id ASC
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("query fields for form %s: %w", formID, err)
	}
	defer rows.Close()

	fields := []Field{}
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields: %w", err)
	}
	return fields, nil
}

// FieldsForPage returns the fields placed on one page ordered by position.
func (s *Store) FieldsForPage(ctx context.Context, pageID string) ([]Field, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.form_id, f.page_id, f.type_id, ft.key,
		       f.code, f.label, COALESCE(f.help_text, ''), f.position,
		       f.required, f.read_only, COALESCE(f.placeholder, ''),
		       COALESCE(f.default_value, ''), f.visible_by_default
		FROM form_fields f
		JOIN field_types ft ON ft.id = f.type_id
		WHERE f.page_id = ?
		ORDER BY f.position ASC, f.id ASC
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("query fields for page %s: %w", pageID, err)
	}
	defer rows.Close()

	fields := []Field{}
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields: %w", err)
	}
	return fields, nil
}

func scanField(rows *sql.Rows) (Field, error) {
	var f Field
	if err := rows.Scan(
		&f.ID, &f.FormID, &f.PageID, &f.TypeID, &f.FieldTypeKey,
		&f.Code, &f.Label, &f.HelpText, &f.Position,
		&f.Required, &f.ReadOnly, &f.Placeholder,
		&f.DefaultValue, &f.VisibleByDefault,
	); err != nil {
		return Field{}, fmt.Errorf("scan field: %w", err)
	}
	return f, nil
}

// FieldTypeByKey returns the field type for a type keyword, or nil when the
// keyword is unknown.
func (s *Store) FieldTypeByKey(ctx context.Context, key string) (*FieldType, error) {
	var ft FieldType
	err := s.db.QueryRowContext(ctx, `
		SELECT id, key, label FROM field_types WHERE key = ?
	`, key).Scan(&ft.ID, &ft.Key, &ft.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query field type %q: %w", key, err)
	}
	return &ft, nil
}

// FieldTypeKeys returns every known field type keyword ordered by key.
func (s *Store) FieldTypeKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM field_types ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("query field type keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan field type key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate field type keys: %w", err)
	}
	return keys, nil
}

// OptionSetForField discovers the option set bound to a field through
// field_option_binding. Returns nil when the field has no option set yet.
func (s *Store) OptionSetForField(ctx context.Context, fieldID string) (*OptionSet, error) {
	var os OptionSet
	err := s.db.QueryRowContext(ctx, `
		SELECT os.id, os.form_id, os.name
		FROM option_sets os
		JOIN field_option_binding b ON b.option_set_id = os.id
		WHERE b.field_id = ?
	`, fieldID).Scan(&os.ID, &os.FormID, &os.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query option set for field %s: %w", fieldID, err)
	}
	return &os, nil
}

// OptionItemsForField returns the option items bound to a field ordered by
// position.
func (s *Store) OptionItemsForField(ctx context.Context, fieldID string) ([]OptionItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT oi.id, oi.option_set_id, oi.value, oi.label, oi.position, oi.is_active
		FROM option_items oi
		JOIN field_option_binding b ON b.option_set_id = oi.option_set_id
		WHERE b.field_id = ?
		ORDER BY oi.position ASC, oi.id ASC
	`, fieldID)
	if err != nil {
		return nil, fmt.Errorf("query option items for field %s: %w", fieldID, err)
	}
	defer rows.Close()
	return collectOptionItems(rows)
}

// OptionItemsForSet returns the option items of one option set ordered by
// position.
func (s *Store) OptionItemsForSet(ctx context.Context, setID string) ([]OptionItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, option_set_id, value, label, position, is_active
		FROM option_items
		WHERE option_set_id = ?
		ORDER BY position ASC, id ASC
	`, setID)
	if err != nil {
		return nil, fmt.Errorf("query option items for set %s: %w", setID, err)
	}
	defer rows.Close()
	return collectOptionItems(rows)
}

func collectOptionItems(rows *sql.Rows) ([]OptionItem, error) {
	items := []OptionItem{}
	for rows.Next() {
		var it OptionItem
		if err := rows.Scan(&it.ID, &it.OptionSetID, &it.Value, &it.Label, &it.Position, &it.IsActive); err != nil {
			return nil, fmt.Errorf("scan option item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate option items: %w", err)
	}
	return items, nil
}

// LogicRulesForForm returns a form's logic rules ordered by priority.
func (s *Store) LogicRulesForForm(ctx context.Context, formID string) ([]LogicRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, name, trigger, scope, priority, enabled
		FROM logic_rules
		WHERE form_id = ?
		ORDER BY priority ASC, id ASC
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("query logic rules for form %s: %w", formID, err)
	}
	defer rows.Close()

	rules := []LogicRule{}
	for rows.Next() {
		var r LogicRule
		if err := rows.Scan(&r.ID, &r.FormID, &r.Name, &r.Trigger, &r.Scope, &r.Priority, &r.Enabled); err != nil {
			return nil, fmt.Errorf("scan logic rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logic rules: %w", err)
	}
	return rules, nil
}

// ConditionsForRule returns the conditions of one rule ordered by position.
func (s *Store) ConditionsForRule(ctx context.Context, ruleID string) ([]LogicCondition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rule_id, COALESCE(group_id, ''), lhs_ref, operator,
		       COALESCE(rhs, ''), bool_join, COALESCE(position, 0)
		FROM logic_conditions
		WHERE rule_id = ?
		ORDER BY position ASC, id ASC
	`, ruleID)
	if err != nil {
		return nil, fmt.Errorf("query conditions for rule %s: %w", ruleID, err)
	}
	defer rows.Close()

	conds := []LogicCondition{}
	for rows.Next() {
		var c LogicCondition
		if err := rows.Scan(&c.ID, &c.RuleID, &c.GroupID, &c.LHSRef, &c.Operator, &c.RHS, &c.BoolJoin, &c.Position); err != nil {
			return nil, fmt.Errorf("scan condition: %w", err)
		}
		conds = append(conds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conditions: %w", err)
	}
	return conds, nil
}

// ActionsForRule returns the actions of one rule ordered by position.
func (s *Store) ActionsForRule(ctx context.Context, ruleID string) ([]LogicAction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rule_id, action, target_ref, COALESCE(params, ''), COALESCE(position, 0)
		FROM logic_actions
		WHERE rule_id = ?
		ORDER BY position ASC, id ASC
	`, ruleID)
	if err != nil {
		return nil, fmt.Errorf("query actions for rule %s: %w", ruleID, err)
	}
	defer rows.Close()

	acts := []LogicAction{}
	for rows.Next() {
		var a LogicAction
		if err := rows.Scan(&a.ID, &a.RuleID, &a.Action, &a.TargetRef, &a.Params, &a.Position); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		acts = append(acts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return acts, nil
}
