package store

import (
	"context"
	"fmt"
)

// FormStructure is the complete current shape of one form: its pages,
// fields, options per field, and logic rules with their children. It is a
// pure read of pre-change state, used by callers to diff against an
// assembled change-set.
type FormStructure struct {
	Form            Form                    `json:"form"`
	Pages           []Page                  `json:"pages"`
	Fields          []Field                 `json:"fields"`
	OptionsByField  map[string][]OptionItem `json:"options_by_field"`
	LogicRules      []LogicRule             `json:"logic_rules"`
	LogicConditions []LogicCondition        `json:"logic_conditions"`
	LogicActions    []LogicAction           `json:"logic_actions"`
}

// FormStructure materializes the current structure of a form. Returns nil
// when the form does not exist.
func (s *Store) FormStructure(ctx context.Context, formID string) (*FormStructure, error) {
	form, err := s.FormByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, nil
	}

	pages, err := s.PagesForForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	fields, err := s.FieldsForForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	optionsByField := map[string][]OptionItem{}
	for _, field := range fields {
		items, err := s.OptionItemsForField(ctx, field.ID)
		if err != nil {
			return nil, err
		}
		optionsByField[field.ID] = items
	}

	rules, err := s.LogicRulesForForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	conditions := []LogicCondition{}
	actions := []LogicAction{}
	for _, rule := range rules {
		conds, err := s.ConditionsForRule(ctx, rule.ID)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, conds...)
		acts, err := s.ActionsForRule(ctx, rule.ID)
		if err != nil {
			return nil, err
		}
		actions = append(actions, acts...)
	}

	return &FormStructure{
		Form:            *form,
		Pages:           pages,
		Fields:          fields,
		OptionsByField:  optionsByField,
		LogicRules:      rules,
		LogicConditions: conditions,
		LogicActions:    actions,
	}, nil
}

// Snapshots materializes the current structure for each given form id.
// Forms that do not exist (for example placeholders for forms created in
// the same change-set) are skipped rather than reported.
func (s *Store) Snapshots(ctx context.Context, formIDs []string) (map[string]*FormStructure, error) {
	snapshots := map[string]*FormStructure{}
	for _, id := range formIDs {
		structure, err := s.FormStructure(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("snapshot form %s: %w", id, err)
		}
		if structure != nil {
			snapshots[id] = structure
		}
	}
	return snapshots, nil
}
