// Package changeset defines the table-keyed insert/update/delete structure
// the engine emits, placeholder identifiers for rows that do not exist
// yet, and the final structural validator.
package changeset

import "sort"

// Known table names of the form-definition schema.
const (
	TableForms              = "forms"
	TablePages              = "form_pages"
	TableFieldTypes         = "field_types"
	TableFields             = "form_fields"
	TableOptionSets         = "option_sets"
	TableFieldOptionBinding = "field_option_binding"
	TableOptionItems        = "option_items"
	TableLogicRules         = "logic_rules"
	TableLogicConditions    = "logic_conditions"
	TableLogicActions       = "logic_actions"
)

// Row is one row descriptor. Insert rows carry a placeholder or generated
// id; update and delete rows carry the id of an existing row plus, for
// updates, only the changed columns.
type Row map[string]any

// TableOps groups the three operation arrays for one table. All three are
// always present (possibly empty) so the serialized shape is uniform.
type TableOps struct {
	Insert []Row `json:"insert"`
	Update []Row `json:"update"`
	Delete []Row `json:"delete"`
}

// ChangeSet maps table names to their pending operations. It describes
// mutations; it never executes them.
type ChangeSet map[string]*TableOps

// New returns an empty change-set.
func New() ChangeSet {
	return ChangeSet{}
}

// Table returns the operations for a table, creating the section with
// empty (non-nil) arrays on first use.
func (cs ChangeSet) Table(name string) *TableOps {
	if ops, ok := cs[name]; ok {
		return ops
	}
	ops := &TableOps{Insert: []Row{}, Update: []Row{}, Delete: []Row{}}
	cs[name] = ops
	return ops
}

// RowCount is the total number of rows across every operation array.
func (cs ChangeSet) RowCount() int {
	n := 0
	for _, ops := range cs {
		n += len(ops.Insert) + len(ops.Update) + len(ops.Delete)
	}
	return n
}

// Tables returns the touched table names in sorted order.
func (cs ChangeSet) Tables() []string {
	names := make([]string, 0, len(cs))
	for name := range cs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormIDs collects every real form id the change-set touches, from
// form_id columns anywhere and from the id column of forms rows.
// Placeholder ids are excluded: a form that exists only inside this
// change-set has no before-state to snapshot. The result is sorted.
func (cs ChangeSet) FormIDs() []string {
	seen := map[string]bool{}
	collect := func(rows []Row, isForms bool) {
		for _, row := range rows {
			if v, ok := row["form_id"].(string); ok && v != "" && !IsPlaceholder(v) {
				seen[v] = true
			}
			if isForms {
				if v, ok := row["id"].(string); ok && v != "" && !IsPlaceholder(v) {
					seen[v] = true
				}
			}
		}
	}
	for table, ops := range cs {
		isForms := table == TableForms
		collect(ops.Insert, isForms)
		collect(ops.Update, isForms)
		collect(ops.Delete, isForms)
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// eachRow visits every row with its table name and operation kind, tables
// in sorted order, rows in array order. Deterministic iteration keeps
// validation output and canonicalization stable.
func (cs ChangeSet) eachRow(visit func(table, op string, idx int, row Row)) {
	for _, table := range cs.Tables() {
		ops := cs[table]
		for i, row := range ops.Insert {
			visit(table, "insert", i, row)
		}
		for i, row := range ops.Update {
			visit(table, "update", i, row)
		}
		for i, row := range ops.Delete {
			visit(table, "delete", i, row)
		}
	}
}
