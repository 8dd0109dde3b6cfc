// Package resolve grounds name-like references against concrete rows.
//
// It contains the three pure pieces of the resolution pass: the entity
// resolver (exact-then-fuzzy matching with ambiguity escalation), the
// field reference grounding table (real ids plus same-batch placeholders),
// and the ordering conflict resolver for rule priorities and option
// positions. None of them touch the store; callers supply the scoped rows.
package resolve
