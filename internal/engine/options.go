package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/formsmith/internal/changeset"
	"github.com/roach88/formsmith/internal/intent"
	"github.com/roach88/formsmith/internal/resolve"
	"github.com/roach88/formsmith/internal/store"
)

// applyOptionIntent dispatches one option intent against the option set
// bound to the target field, creating the set and its binding when the
// field has none yet.
func (p *pass) applyOptionIntent(ctx context.Context, oi *intent.OptionIntent) error {
	formID, err := p.resolveForm(ctx, oi.Form)
	if err != nil {
		return err
	}
	info, err := p.resolveField(ctx, formID, oi.Field)
	if err != nil {
		return err
	}

	switch oi.Op {
	case intent.OpAdd:
		return p.addOptions(ctx, formID, info, oi.Values)
	case intent.OpRename:
		return p.renameOption(ctx, info, oi)
	case intent.OpDeactivate:
		return p.deactivateOption(ctx, info, oi.Option)
	case intent.OpDelete:
		return p.deleteOption(ctx, info, oi.Option)
	default:
		return &ClarificationError{
			Reason:   ReasonPlannerRequest,
			Question: fmt.Sprintf("Options do not support the operation %q. What did you want to change?", oi.Op),
		}
	}
}

// optionSetFor returns the id of the option set bound to a field, minting
// the set and its binding when none exists. The second return reports
// whether the set was created in this pass.
func (p *pass) optionSetFor(ctx context.Context, formID string, info *fieldInfo) (string, bool, error) {
	if setID, ok := p.newOptionSets[info.id]; ok {
		return setID, true, nil
	}
	if !info.placeholder {
		set, err := p.eng.store.OptionSetForField(ctx, info.id)
		if err != nil {
			return "", false, err
		}
		if set != nil {
			return set.ID, false, nil
		}
	}

	setPh := p.eng.mint(changeset.PrefixOptionSet)
	p.newOptionSets[info.id] = setPh

	if err := p.addRow(&p.cs.Table(changeset.TableOptionSets).Insert, changeset.Row{
		"id":      setPh,
		"form_id": formID,
		"name":    info.label + " options",
	}); err != nil {
		return "", false, err
	}
	if err := p.addRow(&p.cs.Table(changeset.TableFieldOptionBinding).Insert, changeset.Row{
		"field_id":      info.id,
		"option_set_id": setPh,
	}); err != nil {
		return "", false, err
	}
	return setPh, true, nil
}

// addOptions appends values to the field's option set. Values that already
// exist, active or not, are skipped rather than duplicated.
func (p *pass) addOptions(ctx context.Context, formID string, info *fieldInfo, values []string) error {
	if len(values) == 0 {
		return &ClarificationError{
			Reason:   ReasonMissingReference,
			Question: fmt.Sprintf("Which option values should be added to %q?", info.label),
		}
	}

	setID, created, err := p.optionSetFor(ctx, formID, info)
	if err != nil {
		return err
	}

	existing := []store.OptionItem{}
	if !created {
		existing, err = p.eng.store.OptionItemsForSet(ctx, setID)
		if err != nil {
			return err
		}
	}

	have := map[string]bool{}
	positions := []int{}
	for _, it := range existing {
		have[strings.ToLower(it.Value)] = true
		have[strings.ToLower(it.Label)] = true
		positions = append(positions, it.Position)
	}
	for _, row := range p.newOptions[setID] {
		if v, ok := row["value"].(string); ok {
			have[strings.ToLower(v)] = true
		}
	}

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || have[strings.ToLower(v)] {
			continue
		}
		have[strings.ToLower(v)] = true

		pos := resolve.NextPosition(positions, p.optionPositions[setID])
		p.optionPositions[setID] = append(p.optionPositions[setID], pos)

		row := changeset.Row{
			"id":            p.eng.mint(changeset.PrefixOption),
			"option_set_id": setID,
			"value":         v,
			"label":         v,
			"position":      pos,
			"is_active":     1,
		}
		if err := p.addRow(&p.cs.Table(changeset.TableOptionItems).Insert, row); err != nil {
			return err
		}
		p.newOptions[setID] = append(p.newOptions[setID], row)
	}
	return nil
}

// findOption locates an option by id, value, or label, first among the
// field's stored items and then among items inserted in this pass. Exactly
// one of the returns is set on success.
func (p *pass) findOption(ctx context.Context, info *fieldInfo, ref intent.OptionRef) (*store.OptionItem, changeset.Row, error) {
	if ref.IsZero() {
		return nil, nil, &ClarificationError{
			Reason:   ReasonMissingReference,
			Question: fmt.Sprintf("Which option of %q should be changed?", info.label),
		}
	}

	if !info.placeholder {
		items, err := p.eng.store.OptionItemsForField(ctx, info.id)
		if err != nil {
			return nil, nil, err
		}
		for i, it := range items {
			if it.ID == ref.ID || strings.EqualFold(it.Value, ref.Value) || strings.EqualFold(it.Label, ref.Value) {
				return &items[i], nil, nil
			}
		}
	}

	setID := p.newOptionSets[info.id]
	for _, row := range p.newOptions[setID] {
		id, _ := row["id"].(string)
		value, _ := row["value"].(string)
		label, _ := row["label"].(string)
		if id == ref.ID || strings.EqualFold(value, ref.Value) || strings.EqualFold(label, ref.Value) {
			return nil, row, nil
		}
	}

	wanted := ref.Value
	if wanted == "" {
		wanted = ref.ID
	}
	return nil, nil, &ClarificationError{
		Reason:   ReasonOptionNotFound,
		Question: fmt.Sprintf("I could not find an option matching %q on %q.", wanted, info.label),
	}
}

func (p *pass) renameOption(ctx context.Context, info *fieldInfo, oi *intent.OptionIntent) error {
	if oi.NewValue == "" {
		return &ClarificationError{
			Reason:   ReasonMissingReference,
			Question: fmt.Sprintf("What should the option on %q be renamed to?", info.label),
		}
	}
	existing, planned, err := p.findOption(ctx, info, oi.Option)
	if err != nil {
		return err
	}
	if planned != nil {
		// The row is still an insert in this pass; rewrite it in place
		// instead of planning an update against an unsaved id.
		planned["value"] = oi.NewValue
		planned["label"] = oi.NewValue
		return nil
	}
	return p.addRow(&p.cs.Table(changeset.TableOptionItems).Update, changeset.Row{
		"id":    existing.ID,
		"value": oi.NewValue,
		"label": oi.NewValue,
	})
}

// deactivateOption soft-deletes an option. Deactivation never plans a
// delete row; historical submissions keep referencing the value.
func (p *pass) deactivateOption(ctx context.Context, info *fieldInfo, ref intent.OptionRef) error {
	existing, planned, err := p.findOption(ctx, info, ref)
	if err != nil {
		return err
	}
	if planned != nil {
		planned["is_active"] = 0
		return nil
	}
	return p.addRow(&p.cs.Table(changeset.TableOptionItems).Update, changeset.Row{
		"id":        existing.ID,
		"is_active": 0,
	})
}

// deleteOption hard-deletes an option. Only reached when the plan asks for
// a delete explicitly; the default retirement path is deactivateOption.
func (p *pass) deleteOption(ctx context.Context, info *fieldInfo, ref intent.OptionRef) error {
	existing, planned, err := p.findOption(ctx, info, ref)
	if err != nil {
		return err
	}
	if planned != nil {
		p.dropPlannedOption(planned)
		return nil
	}
	return p.addRow(&p.cs.Table(changeset.TableOptionItems).Delete, changeset.Row{"id": existing.ID})
}

// dropPlannedOption removes an option row inserted earlier in this pass.
func (p *pass) dropPlannedOption(row changeset.Row) {
	id, _ := row["id"].(string)
	ops := p.cs.Table(changeset.TableOptionItems)
	for i, r := range ops.Insert {
		if rid, _ := r["id"].(string); rid == id {
			ops.Insert = append(ops.Insert[:i], ops.Insert[i+1:]...)
			p.rows--
			break
		}
	}
	setID, _ := row["option_set_id"].(string)
	planned := p.newOptions[setID]
	for i, r := range planned {
		if rid, _ := r["id"].(string); rid == id {
			p.newOptions[setID] = append(planned[:i], planned[i+1:]...)
			break
		}
	}
}
