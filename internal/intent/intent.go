// Package intent defines the structured mutation plan consumed by the
// resolution engine, and validates incoming plan documents against an
// embedded CUE schema before decoding.
//
// A plan is produced upstream (by a planner the engine knows nothing
// about), consumed exactly once, and never mutated during a pass. Each
// entity kind carries its own closed set of operations so that switches
// over operations stay exhaustive.
package intent

// Op is an operation kind. Each intent type accepts a subset.
type Op string

const (
	OpAdd        Op = "add"
	OpUpdate     Op = "update"
	OpDelete     Op = "delete"
	OpRename     Op = "rename"
	OpDeactivate Op = "deactivate"
)

// FormRef identifies a form by id or by a name-like string (slug or title).
type FormRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// IsZero reports whether the reference carries nothing to resolve.
func (r FormRef) IsZero() bool { return r.ID == "" && r.Name == "" }

// FieldRef identifies a field by id or by a name-like string (code or
// label). A field reference is always scoped to a form.
type FieldRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// IsZero reports whether the reference carries nothing to resolve.
func (r FieldRef) IsZero() bool { return r.ID == "" && r.Name == "" }

// OptionRef identifies an option item by id or by its value/label.
type OptionRef struct {
	ID    string `json:"id,omitempty"`
	Value string `json:"value,omitempty"`
}

// IsZero reports whether the reference carries nothing to resolve.
func (r OptionRef) IsZero() bool { return r.ID == "" && r.Value == "" }

// RuleRef identifies a logic rule by id or name.
type RuleRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// IsZero reports whether the reference carries nothing to resolve.
func (r RuleRef) IsZero() bool { return r.ID == "" && r.Name == "" }

// FieldProps are the mutable attributes of a field. Pointers distinguish
// "change this to the zero value" from "leave untouched" on updates.
type FieldProps struct {
	Label        *string `json:"label,omitempty"`
	Required     *bool   `json:"required,omitempty"`
	ReadOnly     *bool   `json:"read_only,omitempty"`
	Placeholder  *string `json:"placeholder,omitempty"`
	HelpText     *string `json:"help_text,omitempty"`
	DefaultValue *string `json:"default_value,omitempty"`
}

// FormIntent creates a new form. The only supported operation is add;
// renaming or retiring forms is an executor-side concern.
type FormIntent struct {
	Op    Op     `json:"op"`
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
}

// FieldIntent adds, updates, or deletes a field on a form.
//
// For add, Code and Type describe the new field and Props carries initial
// attributes. For update and delete, Field identifies the target; update
// additionally applies the non-nil members of Props.
type FieldIntent struct {
	Op       Op         `json:"op"`
	Form     FormRef    `json:"form"`
	Field    FieldRef   `json:"field,omitempty"`
	Code     string     `json:"code,omitempty"`
	Type     string     `json:"type,omitempty"`
	PageHint string     `json:"page_hint,omitempty"`
	Props    FieldProps `json:"props,omitempty"`
}

// OptionIntent mutates the option list bound to a field.
//
//   - add: appends Values to the field's option set, creating the set and
//     its binding when the field has none yet
//   - rename: changes Option (matched by id, value, or label) to NewValue
//   - deactivate: soft-deletes Option (is_active = 0)
//   - delete: hard-deletes Option; only honored when requested explicitly
type OptionIntent struct {
	Op       Op        `json:"op"`
	Form     FormRef   `json:"form"`
	Field    FieldRef  `json:"field"`
	Values   []string  `json:"values,omitempty"`
	Option   OptionRef `json:"option,omitempty"`
	NewValue string    `json:"new_value,omitempty"`
}

// ConditionSpec describes one condition of a logic rule. FieldRef is a
// field code, a field id, or a placeholder minted earlier in the same plan.
type ConditionSpec struct {
	FieldRef string `json:"field"`
	Operator string `json:"operator,omitempty"`
	RHS      string `json:"rhs,omitempty"`
	BoolJoin string `json:"bool_join,omitempty"`
}

// ActionSpec describes one action of a logic rule. TargetRef follows the
// same reference rules as ConditionSpec.FieldRef.
type ActionSpec struct {
	Action    string `json:"action"`
	TargetRef string `json:"target"`
	Params    string `json:"params,omitempty"`
}

// LogicIntent adds, updates, or deletes a conditional logic rule.
//
// On update, a non-nil Conditions or Actions slice is a full replacement of
// the rule's current child rows, not a merge.
type LogicIntent struct {
	Op         Op              `json:"op"`
	Form       FormRef         `json:"form"`
	Rule       RuleRef         `json:"rule,omitempty"`
	Name       string          `json:"name,omitempty"`
	Trigger    string          `json:"trigger,omitempty"`
	Priority   int             `json:"priority,omitempty"`
	Enabled    *bool           `json:"enabled,omitempty"`
	Conditions []ConditionSpec `json:"conditions,omitempty"`
	Actions    []ActionSpec    `json:"actions,omitempty"`
}

// Plan is one complete mutation intent. Forms are processed first, then
// fields, then options, then logic, so that placeholders minted by earlier
// stages are visible to later ones.
type Plan struct {
	Forms   []FormIntent   `json:"forms,omitempty"`
	Fields  []FieldIntent  `json:"fields,omitempty"`
	Options []OptionIntent `json:"options,omitempty"`
	Logic   []LogicIntent  `json:"logic,omitempty"`
	Notes   string         `json:"notes,omitempty"`

	// NeedsClarification short-circuits resolution entirely; the engine
	// echoes Question back as a clarification outcome.
	NeedsClarification bool   `json:"needs_clarification,omitempty"`
	Question           string `json:"question,omitempty"`
}

// Empty reports whether the plan contains no intents at all.
func (p *Plan) Empty() bool {
	return len(p.Forms) == 0 && len(p.Fields) == 0 && len(p.Options) == 0 && len(p.Logic) == 0
}
