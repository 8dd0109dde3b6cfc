package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/formsmith/internal/changeset"
	"github.com/roach88/formsmith/internal/intent"
	"github.com/roach88/formsmith/internal/resolve"
	"github.com/roach88/formsmith/internal/store"
)

// applyFormIntent creates a new form together with its first page. When a
// form with the same slug or title already exists, the intent is treated
// as a reference to it and no rows are planned; later stages addressing
// the form by name then resolve to the existing row.
func (p *pass) applyFormIntent(ctx context.Context, fi *intent.FormIntent) error {
	if fi.Op != intent.OpAdd {
		return &ClarificationError{
			Reason:   ReasonPlannerRequest,
			Question: fmt.Sprintf("Forms only support being added, not %q. What did you want to change?", fi.Op),
		}
	}
	if fi.Title == "" {
		return &ClarificationError{
			Reason:   ReasonMissingReference,
			Question: "What should the new form be called?",
		}
	}

	slug := fi.Slug
	if slug == "" {
		slug = slugify(fi.Title)
	}

	forms, err := p.eng.store.Forms(ctx)
	if err != nil {
		return err
	}
	for _, f := range forms {
		if strings.EqualFold(f.Slug, slug) || strings.EqualFold(f.Title, fi.Title) {
			p.newFormIDs[strings.ToLower(fi.Title)] = f.ID
			p.newFormIDs[strings.ToLower(slug)] = f.ID
			return nil
		}
	}

	formPh := p.eng.mint(changeset.PrefixForm)
	pagePh := p.eng.mint(changeset.PrefixPage)

	p.newFormIDs[strings.ToLower(fi.Title)] = formPh
	p.newFormIDs[strings.ToLower(slug)] = formPh
	p.newFormPage[formPh] = pagePh

	formsOps := p.cs.Table(changeset.TableForms)
	if err := p.addRow(&formsOps.Insert, changeset.Row{
		"id":     formPh,
		"slug":   slug,
		"title":  fi.Title,
		"status": "draft",
	}); err != nil {
		return err
	}

	pagesOps := p.cs.Table(changeset.TablePages)
	return p.addRow(&pagesOps.Insert, changeset.Row{
		"id":       pagePh,
		"form_id":  formPh,
		"position": 1,
		"title":    "Page 1",
	})
}

// applyFieldIntent dispatches one field intent.
func (p *pass) applyFieldIntent(ctx context.Context, fi *intent.FieldIntent) error {
	formID, err := p.resolveForm(ctx, fi.Form)
	if err != nil {
		return err
	}

	switch fi.Op {
	case intent.OpAdd:
		return p.addField(ctx, formID, fi)
	case intent.OpUpdate:
		return p.updateField(ctx, formID, fi)
	case intent.OpDelete:
		return p.deleteField(ctx, formID, fi)
	default:
		return &ClarificationError{
			Reason:   ReasonPlannerRequest,
			Question: fmt.Sprintf("Fields do not support the operation %q. What did you want to change?", fi.Op),
		}
	}
}

func (p *pass) addField(ctx context.Context, formID string, fi *intent.FieldIntent) error {
	if fi.Type == "" {
		return &ClarificationError{
			Reason:   ReasonUnknownFieldType,
			Question: "What type should the new field have?",
		}
	}
	ft, err := p.eng.store.FieldTypeByKey(ctx, strings.ToLower(fi.Type))
	if err != nil {
		return err
	}
	if ft == nil {
		keys, err := p.eng.store.FieldTypeKeys(ctx)
		if err != nil {
			return err
		}
		return &ClarificationError{
			Reason: ReasonUnknownFieldType,
			Question: fmt.Sprintf("I do not know the field type %q. Known types are: %s.",
				fi.Type, strings.Join(keys, ", ")),
		}
	}

	code := fi.Code
	label := ""
	if fi.Props.Label != nil {
		label = *fi.Props.Label
	}
	if code == "" && label != "" {
		code = codeFromLabel(label)
	}
	if code == "" {
		return &ClarificationError{
			Reason:   ReasonMissingReference,
			Question: "What should the new field be called?",
		}
	}
	if label == "" {
		label = labelFromCode(code)
	}

	pageID, err := p.resolvePage(ctx, formID, fi.PageHint)
	if err != nil {
		return err
	}
	position, err := p.nextFieldPosition(ctx, pageID)
	if err != nil {
		return err
	}

	fieldPh := p.eng.mint(changeset.PrefixField)
	row := changeset.Row{
		"id":                 fieldPh,
		"form_id":            formID,
		"page_id":            pageID,
		"type_id":            ft.ID,
		"code":               code,
		"label":              label,
		"position":           position,
		"required":           0,
		"read_only":          0,
		"visible_by_default": 1,
	}
	if fi.Props.Required != nil {
		row["required"] = boolToInt(*fi.Props.Required)
	}
	if fi.Props.ReadOnly != nil {
		row["read_only"] = boolToInt(*fi.Props.ReadOnly)
	}
	if fi.Props.Placeholder != nil {
		row["placeholder"] = *fi.Props.Placeholder
	}
	if fi.Props.HelpText != nil {
		row["help_text"] = *fi.Props.HelpText
	}
	if fi.Props.DefaultValue != nil {
		row["default_value"] = *fi.Props.DefaultValue
	}

	p.newFields[formID] = append(p.newFields[formID], batchField{
		id:     fieldPh,
		code:   code,
		label:  label,
		pageID: pageID,
	})
	if t, ok := p.ground[formID]; ok {
		t.AddPlaceholder(code, fieldPh)
	}

	return p.addRow(&p.cs.Table(changeset.TableFields).Insert, row)
}

func (p *pass) updateField(ctx context.Context, formID string, fi *intent.FieldIntent) error {
	info, err := p.resolveField(ctx, formID, fi.Field)
	if err != nil {
		return err
	}

	row := changeset.Row{"id": info.id}
	if fi.Props.Label != nil {
		row["label"] = *fi.Props.Label
	}
	if fi.Props.Required != nil {
		row["required"] = boolToInt(*fi.Props.Required)
	}
	if fi.Props.ReadOnly != nil {
		row["read_only"] = boolToInt(*fi.Props.ReadOnly)
	}
	if fi.Props.Placeholder != nil {
		row["placeholder"] = *fi.Props.Placeholder
	}
	if fi.Props.HelpText != nil {
		row["help_text"] = *fi.Props.HelpText
	}
	if fi.Props.DefaultValue != nil {
		row["default_value"] = *fi.Props.DefaultValue
	}
	if fi.Code != "" && fi.Code != info.code {
		row["code"] = fi.Code
	}
	if len(row) == 1 {
		return nil
	}
	return p.addRow(&p.cs.Table(changeset.TableFields).Update, row)
}

func (p *pass) deleteField(ctx context.Context, formID string, fi *intent.FieldIntent) error {
	info, err := p.resolveField(ctx, formID, fi.Field)
	if err != nil {
		return err
	}
	return p.addRow(&p.cs.Table(changeset.TableFields).Delete, changeset.Row{"id": info.id})
}

// resolvePage picks the page a new field lands on. With no hint the last
// page of the form wins; a hint matches a page title case-insensitively or
// a 1-based page number.
func (p *pass) resolvePage(ctx context.Context, formID, hint string) (string, error) {
	if changeset.IsPlaceholder(formID) {
		return p.newFormPage[formID], nil
	}

	pages, err := p.eng.store.PagesForForm(ctx, formID)
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return "", &ClarificationError{
			Reason:   ReasonPageNotFound,
			Question: "This form has no pages yet, so I cannot place the field. Should a page be added first?",
		}
	}
	if hint == "" {
		return pages[len(pages)-1].ID, nil
	}

	var matched []store.Page
	if n, err := strconv.Atoi(strings.TrimSpace(hint)); err == nil {
		for _, pg := range pages {
			if pg.Position == n {
				matched = append(matched, pg)
			}
		}
	} else {
		for _, pg := range pages {
			if strings.EqualFold(pg.Title, hint) {
				matched = append(matched, pg)
			}
		}
	}
	switch len(matched) {
	case 1:
		return matched[0].ID, nil
	case 0:
		return "", &ClarificationError{
			Reason:   ReasonPageNotFound,
			Question: fmt.Sprintf("I could not find a page matching %q on this form.", hint),
		}
	default:
		return "", &ClarificationError{
			Reason:   ReasonPageAmbiguous,
			Question: fmt.Sprintf("Multiple pages match %q on this form. Which one should the field go on?", hint),
		}
	}
}

// nextFieldPosition claims the next free position on a page, counting both
// stored fields and fields already planned onto the page in this pass.
func (p *pass) nextFieldPosition(ctx context.Context, pageID string) (int, error) {
	existing := []int{}
	if !changeset.IsPlaceholder(pageID) {
		fields, err := p.eng.store.FieldsForPage(ctx, pageID)
		if err != nil {
			return 0, err
		}
		for _, f := range fields {
			existing = append(existing, f.Position)
		}
	}
	pos := resolve.NextPosition(existing, p.pagePositions[pageID])
	p.pagePositions[pageID] = append(p.pagePositions[pageID], pos)
	return pos, nil
}
