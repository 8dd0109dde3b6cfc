package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/formsmith/internal/changeset"
	"github.com/roach88/formsmith/internal/intent"
	"github.com/roach88/formsmith/internal/resolve"
)

// applyLogicIntent dispatches one logic rule intent.
func (p *pass) applyLogicIntent(ctx context.Context, li *intent.LogicIntent) error {
	formID, err := p.resolveForm(ctx, li.Form)
	if err != nil {
		return err
	}

	switch li.Op {
	case intent.OpAdd:
		return p.addRule(ctx, formID, li)
	case intent.OpUpdate:
		return p.updateRule(ctx, formID, li)
	case intent.OpDelete:
		return p.deleteRule(ctx, formID, li)
	default:
		return &ClarificationError{
			Reason:   ReasonPlannerRequest,
			Question: fmt.Sprintf("Logic rules do not support the operation %q. What did you want to change?", li.Op),
		}
	}
}

// rulePriorities returns the priorities of the form's enabled stored
// rules. Disabled rules do not hold a slot.
func (p *pass) rulePriorities(ctx context.Context, formID string) ([]int, error) {
	if changeset.IsPlaceholder(formID) {
		return nil, nil
	}
	rules, err := p.eng.store.LogicRulesForForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	priorities := []int{}
	for _, r := range rules {
		if r.Enabled != 0 {
			priorities = append(priorities, r.Priority)
		}
	}
	return priorities, nil
}

func (p *pass) addRule(ctx context.Context, formID string, li *intent.LogicIntent) error {
	if li.Name == "" {
		return &ClarificationError{
			Reason:   ReasonMissingReference,
			Question: "What should the new logic rule be called?",
		}
	}
	if len(li.Conditions) == 0 {
		return &ClarificationError{
			Reason:   ReasonMissingReference,
			Question: fmt.Sprintf("When should the rule %q fire? It needs at least one condition.", li.Name),
		}
	}
	if len(li.Actions) == 0 {
		return &ClarificationError{
			Reason:   ReasonMissingReference,
			Question: fmt.Sprintf("What should the rule %q do? It needs at least one action.", li.Name),
		}
	}

	existing, err := p.rulePriorities(ctx, formID)
	if err != nil {
		return err
	}
	priority := resolve.NextPriority(existing, p.priorities[formID], li.Priority)
	p.priorities[formID] = append(p.priorities[formID], priority)

	trigger := li.Trigger
	if trigger == "" {
		trigger = "on_change"
	}
	enabled := 1
	if li.Enabled != nil && !*li.Enabled {
		enabled = 0
	}

	rulePh := p.eng.mint(changeset.PrefixRule)
	if err := p.addRow(&p.cs.Table(changeset.TableLogicRules).Insert, changeset.Row{
		"id":       rulePh,
		"form_id":  formID,
		"name":     li.Name,
		"trigger":  trigger,
		"scope":    "form",
		"priority": priority,
		"enabled":  enabled,
	}); err != nil {
		return err
	}

	table, err := p.groundTable(ctx, formID)
	if err != nil {
		return err
	}
	for i, c := range li.Conditions {
		row, err := p.conditionRow(table, rulePh, i+1, c)
		if err != nil {
			return err
		}
		if err := p.addRow(&p.cs.Table(changeset.TableLogicConditions).Insert, row); err != nil {
			return err
		}
	}
	for i, a := range li.Actions {
		row, err := p.actionRow(table, rulePh, i+1, a)
		if err != nil {
			return err
		}
		if err := p.addRow(&p.cs.Table(changeset.TableLogicActions).Insert, row); err != nil {
			return err
		}
	}
	return nil
}

// conditionRow grounds one condition spec into an insertable row. Unknown
// operators pass through untouched; the executor owns operator semantics.
func (p *pass) conditionRow(table *resolve.FieldTable, ruleID string, position int, c intent.ConditionSpec) (changeset.Row, error) {
	lhs, err := table.Ground(c.FieldRef)
	if err != nil {
		return nil, groundingClarification(err)
	}
	operator := c.Operator
	if operator == "" {
		operator = "="
	}
	boolJoin := strings.ToUpper(c.BoolJoin)
	if boolJoin == "" {
		boolJoin = "AND"
	}
	return changeset.Row{
		"id":        p.eng.mint(changeset.PrefixCondition),
		"rule_id":   ruleID,
		"lhs_ref":   lhs,
		"operator":  operator,
		"rhs":       c.RHS,
		"bool_join": boolJoin,
		"position":  position,
	}, nil
}

// actionRow grounds one action spec into an insertable row.
func (p *pass) actionRow(table *resolve.FieldTable, ruleID string, position int, a intent.ActionSpec) (changeset.Row, error) {
	target, err := table.Ground(a.TargetRef)
	if err != nil {
		return nil, groundingClarification(err)
	}
	row := changeset.Row{
		"id":         p.eng.mint(changeset.PrefixAction),
		"rule_id":    ruleID,
		"action":     a.Action,
		"target_ref": target,
		"position":   position,
	}
	if a.Params != "" {
		row["params"] = a.Params
	}
	return row, nil
}

// groundingClarification converts an unresolved logic reference into the
// clarification that aborts the pass.
func groundingClarification(err error) error {
	var ure *resolve.UnresolvedRefError
	if errors.As(err, &ure) {
		return &ClarificationError{
			Reason:   ReasonUnresolvedRef,
			Question: fmt.Sprintf("The logic rule refers to %q, which matches no field on this form. Which field did you mean?", ure.Ref),
		}
	}
	return err
}

// resolveRule grounds a rule reference within its form.
func (p *pass) resolveRule(ctx context.Context, formID string, ref intent.RuleRef) (string, error) {
	if ref.IsZero() {
		return "", &ClarificationError{
			Reason:   ReasonMissingReference,
			Question: "Which logic rule should this change apply to?",
		}
	}
	if changeset.IsPlaceholder(formID) {
		return "", &ClarificationError{
			Reason:   ReasonRuleNotFound,
			Question: "This form is being created in the same request and has no logic rules yet.",
		}
	}

	rules, err := p.eng.store.LogicRulesForForm(ctx, formID)
	if err != nil {
		return "", err
	}
	entries := make([]resolve.Entry, 0, len(rules))
	for _, r := range rules {
		entries = append(entries, resolve.Entry{
			ID:        r.ID,
			Primary:   r.Name,
			Secondary: r.Name,
			Candidate: resolve.Candidate{ID: r.ID, Name: r.Name},
		})
	}

	outcome := p.eng.strategy.Resolve(ref.ID, ref.Name, entries)
	switch outcome.Status {
	case resolve.StatusResolved:
		return outcome.Entry.ID, nil
	case resolve.StatusAmbiguous:
		names := make([]string, 0, len(outcome.Candidates))
		for _, c := range outcome.Candidates {
			names = append(names, fmt.Sprintf("%s (%s)", c.Name, c.ID))
		}
		return "", &ClarificationError{
			Reason:   ReasonRuleAmbiguous,
			Question: fmt.Sprintf("Multiple logic rules match %q: %s. Which one did you mean?", ref.Name, strings.Join(names, ", ")),
		}
	default:
		wanted := ref.Name
		if wanted == "" {
			wanted = ref.ID
		}
		return "", &ClarificationError{
			Reason:   ReasonRuleNotFound,
			Question: fmt.Sprintf("I could not find a logic rule matching %q on this form.", wanted),
		}
	}
}

func (p *pass) updateRule(ctx context.Context, formID string, li *intent.LogicIntent) error {
	ruleID, err := p.resolveRule(ctx, formID, li.Rule)
	if err != nil {
		return err
	}

	row := changeset.Row{"id": ruleID}
	if li.Name != "" {
		row["name"] = li.Name
	}
	if li.Trigger != "" {
		row["trigger"] = li.Trigger
	}
	if li.Enabled != nil {
		row["enabled"] = boolToInt(*li.Enabled)
	}
	if li.Priority > 0 {
		existing, err := p.rulePriorities(ctx, formID)
		if err != nil {
			return err
		}
		// The rule's own slot does not collide with itself.
		rules, err := p.eng.store.LogicRulesForForm(ctx, formID)
		if err != nil {
			return err
		}
		others := existing[:0:0]
		for _, pr := range existing {
			keep := true
			for _, r := range rules {
				if r.ID == ruleID && r.Priority == pr {
					keep = false
					break
				}
			}
			if keep {
				others = append(others, pr)
			}
		}
		priority := resolve.NextPriority(others, p.priorities[formID], li.Priority)
		p.priorities[formID] = append(p.priorities[formID], priority)
		row["priority"] = priority
	}
	if len(row) > 1 {
		if err := p.addRow(&p.cs.Table(changeset.TableLogicRules).Update, row); err != nil {
			return err
		}
	}

	table, err := p.groundTable(ctx, formID)
	if err != nil {
		return err
	}
	if li.Conditions != nil {
		if err := p.replaceConditions(ctx, table, ruleID, li.Conditions); err != nil {
			return err
		}
	}
	if li.Actions != nil {
		if err := p.replaceActions(ctx, table, ruleID, li.Actions); err != nil {
			return err
		}
	}
	return nil
}

// replaceConditions swaps a rule's condition rows for the supplied set.
// Existing rows are rewritten in order; surplus supplied conditions become
// inserts and surplus existing rows become deletes.
func (p *pass) replaceConditions(ctx context.Context, table *resolve.FieldTable, ruleID string, specs []intent.ConditionSpec) error {
	current, err := p.eng.store.ConditionsForRule(ctx, ruleID)
	if err != nil {
		return err
	}
	ops := p.cs.Table(changeset.TableLogicConditions)

	for i, c := range specs {
		row, err := p.conditionRow(table, ruleID, i+1, c)
		if err != nil {
			return err
		}
		if i < len(current) {
			row["id"] = current[i].ID
			if err := p.addRow(&ops.Update, row); err != nil {
				return err
			}
		} else if err := p.addRow(&ops.Insert, row); err != nil {
			return err
		}
	}
	for _, c := range current[min(len(specs), len(current)):] {
		if err := p.addRow(&ops.Delete, changeset.Row{"id": c.ID}); err != nil {
			return err
		}
	}
	return nil
}

// replaceActions swaps a rule's action rows for the supplied set, with the
// same pairing strategy as replaceConditions.
func (p *pass) replaceActions(ctx context.Context, table *resolve.FieldTable, ruleID string, specs []intent.ActionSpec) error {
	current, err := p.eng.store.ActionsForRule(ctx, ruleID)
	if err != nil {
		return err
	}
	ops := p.cs.Table(changeset.TableLogicActions)

	for i, a := range specs {
		row, err := p.actionRow(table, ruleID, i+1, a)
		if err != nil {
			return err
		}
		if i < len(current) {
			row["id"] = current[i].ID
			if err := p.addRow(&ops.Update, row); err != nil {
				return err
			}
		} else if err := p.addRow(&ops.Insert, row); err != nil {
			return err
		}
	}
	for _, a := range current[min(len(specs), len(current)):] {
		if err := p.addRow(&ops.Delete, changeset.Row{"id": a.ID}); err != nil {
			return err
		}
	}
	return nil
}

// deleteRule removes a rule together with its condition and action rows.
func (p *pass) deleteRule(ctx context.Context, formID string, li *intent.LogicIntent) error {
	ruleID, err := p.resolveRule(ctx, formID, li.Rule)
	if err != nil {
		return err
	}

	conds, err := p.eng.store.ConditionsForRule(ctx, ruleID)
	if err != nil {
		return err
	}
	for _, c := range conds {
		if err := p.addRow(&p.cs.Table(changeset.TableLogicConditions).Delete, changeset.Row{"id": c.ID}); err != nil {
			return err
		}
	}
	acts, err := p.eng.store.ActionsForRule(ctx, ruleID)
	if err != nil {
		return err
	}
	for _, a := range acts {
		if err := p.addRow(&p.cs.Table(changeset.TableLogicActions).Delete, changeset.Row{"id": a.ID}); err != nil {
			return err
		}
	}
	return p.addRow(&p.cs.Table(changeset.TableLogicRules).Delete, changeset.Row{"id": ruleID})
}
