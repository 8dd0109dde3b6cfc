package changeset

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Placeholder prefixes, one per insertable entity kind.
const (
	PrefixForm      = "form"
	PrefixPage      = "page"
	PrefixField     = "fld"
	PrefixOptionSet = "optset"
	PrefixOption    = "opt"
	PrefixRule      = "rule"
	PrefixCondition = "cond"
	PrefixAction    = "act"
)

// Minter mints placeholder identifiers. A placeholder is minted once per
// new row within a pass and reused verbatim everywhere that row is
// referenced in the same change-set. Placeholders are never persisted.
type Minter func(prefix string) string

// UUIDMinter mints placeholders of the form $<prefix>_<hex8> from random
// UUIDs. Tokens are unique within a pass with overwhelming probability;
// tests that need stable output use SequentialMinter instead.
func UUIDMinter(prefix string) string {
	id := uuid.New()
	return fmt.Sprintf("$%s_%x", prefix, id[:4])
}

// SequentialMinter returns a minter producing $<prefix>_<n> with a
// per-prefix counter. Deterministic; used by tests and by golden-file
// canonicalization.
func SequentialMinter() Minter {
	counters := map[string]int{}
	return func(prefix string) string {
		counters[prefix]++
		return fmt.Sprintf("$%s_%d", prefix, counters[prefix])
	}
}

// IsPlaceholder reports whether a value is a placeholder token.
func IsPlaceholder(s string) bool {
	return strings.HasPrefix(s, "$")
}
