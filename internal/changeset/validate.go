package changeset

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/formsmith/internal/schema"
)

// StructureError aggregates every violation found in a change-set. The
// validator never repairs or drops offending rows; the caller rejects the
// whole pass.
type StructureError struct {
	Violations []string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("change-set validation failed with %d violation(s):\n  - %s",
		len(e.Violations), strings.Join(e.Violations, "\n  - "))
}

// IDSource supplies the current primary key values of a table. Implemented
// by the store; faked in tests.
type IDSource interface {
	IDs(ctx context.Context, table string) ([]string, error)
}

// refTargets maps foreign-key-like column names to the table whose rows
// they must reference. group_id is a free-form grouping token on
// conditions, not a foreign key.
var refTargets = map[string]string{
	"form_id":       TableForms,
	"page_id":       TablePages,
	"type_id":       TableFieldTypes,
	"field_id":      TableFields,
	"option_set_id": TableOptionSets,
	"rule_id":       TableLogicRules,
}

// refPayloadColumns are columns whose values are field references embedded
// in logic payloads rather than foreign key columns.
var refPayloadColumns = map[string]bool{
	"lhs_ref":    true,
	"target_ref": true,
}

// Validator is the final gate of a resolution pass: structural shape,
// required-column coverage, and referential closure of every foreign key
// and *_ref payload against real rows or same-batch placeholders.
type Validator struct {
	catalog *schema.Catalog
	src     IDSource
}

// NewValidator builds a validator over the given catalog and id source.
func NewValidator(catalog *schema.Catalog, src IDSource) *Validator {
	return &Validator{catalog: catalog, src: src}
}

// Validate checks the whole change-set and returns a StructureError
// listing every violation, or nil. Violations are collected, not
// short-circuited, so the caller sees all of them at once.
func (v *Validator) Validate(ctx context.Context, cs ChangeSet) error {
	var violations []string

	// Shape: every top-level key must be a known table. Unknown tables are
	// reported but still scanned for minted placeholders so reference
	// errors do not cascade.
	for _, table := range cs.Tables() {
		if !v.catalog.HasTable(table) {
			violations = append(violations, fmt.Sprintf("%s: unknown table", table))
		}
	}

	minted := v.collectPlaceholders(cs)

	existing := map[string]map[string]bool{}
	lookupIDs := func(table string) (map[string]bool, error) {
		if ids, ok := existing[table]; ok {
			return ids, nil
		}
		list, err := v.src.IDs(ctx, table)
		if err != nil {
			return nil, err
		}
		ids := make(map[string]bool, len(list))
		for _, id := range list {
			ids[id] = true
		}
		existing[table] = ids
		return ids, nil
	}

	var lookupErr error
	cs.eachRow(func(table, op string, idx int, row Row) {
		if lookupErr != nil || !v.catalog.HasTable(table) {
			return
		}
		at := fmt.Sprintf("%s.%s[%d]", table, op, idx)

		switch op {
		case "insert":
			for _, col := range v.catalog.RequiredColumns(table) {
				if val, ok := row[col]; !ok || val == nil {
					violations = append(violations, fmt.Sprintf("%s: missing required column %q", at, col))
				}
			}
		case "update", "delete":
			id, ok := row["id"].(string)
			if !ok || id == "" {
				violations = append(violations, fmt.Sprintf("%s: missing id", at))
				break
			}
			if IsPlaceholder(id) {
				if !minted[id] {
					violations = append(violations, fmt.Sprintf("%s: %s targets placeholder %s not minted in this change-set", at, op, id))
				}
				break
			}
			ids, err := lookupIDs(table)
			if err != nil {
				lookupErr = err
				return
			}
			if !ids[id] {
				violations = append(violations, fmt.Sprintf("%s: %s targets non-existent row %s", at, op, id))
			}
		}

		// Referential closure for foreign keys and *_ref payloads.
		for col, val := range row {
			ref, ok := val.(string)
			if !ok || ref == "" {
				continue
			}
			target := ""
			if t, isFK := refTargets[col]; isFK {
				target = t
			} else if refPayloadColumns[col] {
				target = TableFields
			} else {
				continue
			}

			if IsPlaceholder(ref) {
				if !minted[ref] {
					violations = append(violations, fmt.Sprintf("%s: %s references placeholder %s not minted in this change-set", at, col, ref))
				}
				continue
			}
			ids, err := lookupIDs(target)
			if err != nil {
				lookupErr = err
				return
			}
			if !ids[ref] {
				violations = append(violations, fmt.Sprintf("%s: %s references non-existent %s row %s", at, col, target, ref))
			}
		}
	})

	if lookupErr != nil {
		return fmt.Errorf("validate change-set: %w", lookupErr)
	}
	if len(violations) > 0 {
		return &StructureError{Violations: violations}
	}
	return nil
}

// collectPlaceholders gathers every placeholder minted by an insert row's
// id column. The placeholder graph is an explicit token set, not live
// object identity, so closure can be checked without walking structs.
func (v *Validator) collectPlaceholders(cs ChangeSet) map[string]bool {
	minted := map[string]bool{}
	for _, ops := range cs {
		for _, row := range ops.Insert {
			if id, ok := row["id"].(string); ok && IsPlaceholder(id) {
				minted[id] = true
			}
		}
	}
	return minted
}
