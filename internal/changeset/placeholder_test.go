package changeset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDMinter(t *testing.T) {
	a := UUIDMinter(PrefixField)
	b := UUIDMinter(PrefixField)

	assert.True(t, strings.HasPrefix(a, "$fld_"))
	assert.Len(t, a, len("$fld_")+8, "four random bytes as hex")
	assert.NotEqual(t, a, b)
}

func TestSequentialMinter_PerPrefixCounters(t *testing.T) {
	mint := SequentialMinter()

	assert.Equal(t, "$fld_1", mint(PrefixField))
	assert.Equal(t, "$fld_2", mint(PrefixField))
	assert.Equal(t, "$opt_1", mint(PrefixOption))
	assert.Equal(t, "$fld_3", mint(PrefixField))
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder("$fld_1"))
	assert.True(t, IsPlaceholder("$form_a1b2c3d4"))
	assert.False(t, IsPlaceholder("fld_1"))
	assert.False(t, IsPlaceholder(""))
}
