package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/formsmith/internal/changeset"
	"github.com/roach88/formsmith/internal/intent"
	"github.com/roach88/formsmith/internal/resolve"
	"github.com/roach88/formsmith/internal/store"
)

// pass holds the working state of one resolution pass. All bookkeeping is
// per-pass; nothing here outlives Resolve.
type pass struct {
	eng *Engine
	cs  changeset.ChangeSet

	rows int

	// Real forms touched by any intent. Some rows (option item updates,
	// logic child rows) carry no form_id column, so the change-set alone
	// cannot recover every form the before snapshot must cover.
	touched map[string]bool

	// Forms minted in this pass: lowercase slug/title -> placeholder, and
	// placeholder -> its first page's placeholder.
	newFormIDs  map[string]string
	newFormPage map[string]string

	// Fields minted in this pass, per form id (real or placeholder).
	newFields map[string][]batchField

	// Grounding tables per form, built lazily when logic intents run.
	ground map[string]*resolve.FieldTable

	// Ordering values already claimed in this pass.
	pagePositions   map[string][]int // page id -> field positions
	optionPositions map[string][]int // option set id -> item positions
	priorities      map[string][]int // form id -> rule priorities

	// Option sets minted in this pass: field id -> set placeholder.
	newOptionSets map[string]string

	// Option items inserted in this pass, per set id, for dedupe and
	// in-place rename of rows that do not exist in the store yet.
	newOptions map[string][]changeset.Row
}

// batchField is a field known only inside this pass.
type batchField struct {
	id     string
	code   string
	label  string
	pageID string
}

func newPass(e *Engine) *pass {
	return &pass{
		eng:             e,
		cs:              changeset.New(),
		touched:         map[string]bool{},
		newFormIDs:      map[string]string{},
		newFormPage:     map[string]string{},
		newFields:       map[string][]batchField{},
		ground:          map[string]*resolve.FieldTable{},
		pagePositions:   map[string][]int{},
		optionPositions: map[string][]int{},
		priorities:      map[string][]int{},
		newOptionSets:   map[string]string{},
		newOptions:      map[string][]changeset.Row{},
	}
}

// run processes the plan stages in dependency order. Field intents run
// before logic intents so every in-batch field is groundable by the time
// conditions and actions are resolved.
func (p *pass) run(ctx context.Context, plan *intent.Plan) error {
	for i := range plan.Forms {
		if err := p.applyFormIntent(ctx, &plan.Forms[i]); err != nil {
			return err
		}
	}
	for i := range plan.Fields {
		if err := p.applyFieldIntent(ctx, &plan.Fields[i]); err != nil {
			return err
		}
	}
	for i := range plan.Options {
		if err := p.applyOptionIntent(ctx, &plan.Options[i]); err != nil {
			return err
		}
	}
	for i := range plan.Logic {
		if err := p.applyLogicIntent(ctx, &plan.Logic[i]); err != nil {
			return err
		}
	}
	return nil
}

// formIDs merges the form ids recoverable from the change-set itself with
// the forms the pass touched, sorted.
func (p *pass) formIDs() []string {
	seen := map[string]bool{}
	for _, id := range p.cs.FormIDs() {
		seen[id] = true
	}
	for id := range p.touched {
		seen[id] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// addRow appends a row and enforces the ceiling incrementally. A plan
// whose total lands exactly on the ceiling passes; one row more aborts
// the pass with no output.
func (p *pass) addRow(dst *[]changeset.Row, row changeset.Row) error {
	p.rows++
	if p.rows > p.eng.maxRows {
		return &RowLimitError{Planned: p.rows, Limit: p.eng.maxRows}
	}
	*dst = append(*dst, row)
	return nil
}

// resolveForm grounds a form reference to a real id or a placeholder
// minted earlier in this pass.
func (p *pass) resolveForm(ctx context.Context, ref intent.FormRef) (string, error) {
	if ref.ID != "" {
		if changeset.IsPlaceholder(ref.ID) {
			if _, ok := p.newFormPage[ref.ID]; ok {
				return ref.ID, nil
			}
			return "", &ClarificationError{
				Reason:   ReasonFormNotFound,
				Question: fmt.Sprintf("I could not find any form for the placeholder %q.", ref.ID),
			}
		}
		form, err := p.eng.store.FormByID(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		if form == nil {
			return "", p.formNotFound(ctx, ref.ID)
		}
		p.touched[form.ID] = true
		return form.ID, nil
	}

	if ref.Name == "" {
		return "", &ClarificationError{
			Reason:   ReasonMissingReference,
			Question: "Which form should this change apply to?",
		}
	}

	if id, ok := p.newFormIDs[strings.ToLower(ref.Name)]; ok {
		if !changeset.IsPlaceholder(id) {
			p.touched[id] = true
		}
		return id, nil
	}

	forms, err := p.eng.store.Forms(ctx)
	if err != nil {
		return "", err
	}
	entries := formEntries(forms)

	outcome := p.eng.strategy.Resolve("", ref.Name, entries)
	switch outcome.Status {
	case resolve.StatusResolved:
		if outcome.Fuzzy {
			slog.Debug("fuzzy form match", "reference", ref.Name, "form_id", outcome.Entry.ID)
		}
		p.touched[outcome.Entry.ID] = true
		return outcome.Entry.ID, nil
	case resolve.StatusAmbiguous:
		return "", &ClarificationError{
			Reason:         ReasonFormAmbiguous,
			Question:       fmt.Sprintf("Multiple forms match %q. Please choose the correct form.", ref.Name),
			FormCandidates: outcome.Candidates,
		}
	default:
		return "", p.formNotFound(ctx, ref.Name)
	}
}

// formNotFound builds the clarification for an unmatched form reference,
// listing the forms that do exist so the caller can offer a choice.
func (p *pass) formNotFound(ctx context.Context, wanted string) error {
	forms, err := p.eng.store.Forms(ctx)
	if err != nil {
		return err
	}
	if len(forms) == 0 {
		return &ClarificationError{
			Reason:   ReasonFormNotFound,
			Question: fmt.Sprintf("I could not find any form matching %q. There are no forms yet.", wanted),
		}
	}
	return &ClarificationError{
		Reason:         ReasonFormNotFound,
		Question:       fmt.Sprintf("I could not find any form matching %q. Please choose one of the known forms.", wanted),
		FormCandidates: resolve.AllCandidates(formEntries(forms)),
	}
}

func formEntries(forms []store.Form) []resolve.Entry {
	entries := make([]resolve.Entry, 0, len(forms))
	for _, f := range forms {
		entries = append(entries, resolve.Entry{
			ID:        f.ID,
			Primary:   f.Slug,
			Secondary: f.Title,
			Candidate: resolve.Candidate{ID: f.ID, Title: f.Title, Slug: f.Slug},
		})
	}
	return entries
}

// fieldInfo is the resolved identity of a field, real or in-batch.
type fieldInfo struct {
	id          string
	code        string
	label       string
	placeholder bool
}

// fieldEntries assembles the resolution scope for field references on one
// form: its stored fields plus fields minted in this pass. Resolution is
// strictly scoped to the declared form.
func (p *pass) fieldEntries(ctx context.Context, formID string) ([]resolve.Entry, error) {
	entries := []resolve.Entry{}
	if !changeset.IsPlaceholder(formID) {
		fields, err := p.eng.store.FieldsForForm(ctx, formID)
		if err != nil {
			return nil, err
		}
		for _, f := range fields {
			entries = append(entries, resolve.Entry{
				ID:        f.ID,
				Primary:   f.Code,
				Secondary: f.Label,
				Candidate: resolve.Candidate{ID: f.ID, Label: f.Label, Code: f.Code},
			})
		}
	}
	for _, f := range p.newFields[formID] {
		entries = append(entries, resolve.Entry{
			ID:        f.id,
			Primary:   f.code,
			Secondary: f.label,
			Candidate: resolve.Candidate{ID: f.id, Label: f.label, Code: f.code},
		})
	}
	return entries, nil
}

// resolveField grounds a field reference within its declared form.
func (p *pass) resolveField(ctx context.Context, formID string, ref intent.FieldRef) (*fieldInfo, error) {
	entries, err := p.fieldEntries(ctx, formID)
	if err != nil {
		return nil, err
	}

	if ref.IsZero() {
		return nil, &ClarificationError{
			Reason:   ReasonMissingReference,
			Question: "Which field should this change apply to?",
		}
	}

	outcome := p.eng.strategy.Resolve(ref.ID, ref.Name, entries)
	switch outcome.Status {
	case resolve.StatusResolved:
		if outcome.Fuzzy {
			slog.Debug("fuzzy field match", "reference", ref.Name, "field_id", outcome.Entry.ID)
		}
		return &fieldInfo{
			id:          outcome.Entry.ID,
			code:        outcome.Entry.Primary,
			label:       outcome.Entry.Secondary,
			placeholder: changeset.IsPlaceholder(outcome.Entry.ID),
		}, nil
	case resolve.StatusAmbiguous:
		wanted := ref.Name
		if wanted == "" {
			wanted = ref.ID
		}
		return nil, &ClarificationError{
			Reason:          ReasonFieldAmbiguous,
			Question:        fmt.Sprintf("Multiple fields match %q on this form. Please choose the correct field.", wanted),
			FieldCandidates: outcome.Candidates,
		}
	default:
		wanted := ref.Name
		if wanted == "" {
			wanted = ref.ID
		}
		return nil, &ClarificationError{
			Reason:          ReasonFieldNotFound,
			Question:        fmt.Sprintf("I could not find a field that looks like %q on this form. Please choose the correct field.", wanted),
			FieldCandidates: resolve.AllCandidates(entries),
		}
	}
}

// groundTable returns the working table of fields known so far for a
// form, creating it on first use from the stored fields plus every field
// minted earlier in this pass.
func (p *pass) groundTable(ctx context.Context, formID string) (*resolve.FieldTable, error) {
	if t, ok := p.ground[formID]; ok {
		return t, nil
	}
	t := resolve.NewFieldTable()
	if !changeset.IsPlaceholder(formID) {
		fields, err := p.eng.store.FieldsForForm(ctx, formID)
		if err != nil {
			return nil, err
		}
		for _, f := range fields {
			t.AddReal(f.Code, f.ID)
		}
	}
	for _, f := range p.newFields[formID] {
		t.AddPlaceholder(f.code, f.id)
	}
	p.ground[formID] = t
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// slugify derives a form slug from a title the same way the store's
// existing slugs are shaped.
func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

// codeFromLabel derives a machine code from a human label.
func codeFromLabel(label string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteRune('_')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	return b.String()
}

// labelFromCode derives a display label from a machine code.
func labelFromCode(code string) string {
	words := strings.Split(strings.ReplaceAll(code, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
