package resolve

import (
	"fmt"
	"strings"
)

// UnresolvedRefError reports a logic reference that matched neither a real
// field nor an in-batch placeholder. The whole pass escalates to a
// clarification naming the reference; partial change-sets are never
// emitted.
type UnresolvedRefError struct {
	Ref string
}

func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("reference %q does not match any field, existing or newly added", e.Ref)
}

// FieldTable is the working table of fields known so far in one resolution
// pass, scoped to a single form. It is populated with the form's real
// fields up front and grows as field intents mint placeholders, so that
// logic intents processed later can ground forward references.
type FieldTable struct {
	byCode map[string]string
	ids    map[string]bool
}

// NewFieldTable returns an empty working table.
func NewFieldTable() *FieldTable {
	return &FieldTable{
		byCode: map[string]string{},
		ids:    map[string]bool{},
	}
}

// AddReal registers an existing field row.
func (t *FieldTable) AddReal(code, id string) {
	t.byCode[strings.ToLower(code)] = id
	t.ids[id] = true
}

// AddPlaceholder registers a field minted in this pass under its
// placeholder id.
func (t *FieldTable) AddPlaceholder(code, placeholder string) {
	t.byCode[strings.ToLower(code)] = placeholder
	t.ids[placeholder] = true
}

// Ground resolves a condition or action field reference to the identifier
// to embed in lhs_ref/target_ref payloads: a real row id or a placeholder
// minted earlier in the same pass.
func (t *FieldTable) Ground(ref string) (string, error) {
	if ref == "" {
		return "", &UnresolvedRefError{Ref: ref}
	}
	// Already a known id or placeholder: embed verbatim.
	if t.ids[ref] {
		return ref, nil
	}
	if id, ok := t.byCode[strings.ToLower(ref)]; ok {
		return id, nil
	}
	return "", &UnresolvedRefError{Ref: ref}
}
