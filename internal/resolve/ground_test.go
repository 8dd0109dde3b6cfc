package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldTable_Ground(t *testing.T) {
	table := NewFieldTable()
	table.AddReal("employment_status", "fld_status")
	table.AddPlaceholder("contract_type", "$fld_1")

	got, err := table.Ground("employment_status")
	require.NoError(t, err)
	assert.Equal(t, "fld_status", got)

	got, err = table.Ground("Employment_Status")
	require.NoError(t, err)
	assert.Equal(t, "fld_status", got, "code lookup is case-insensitive")

	got, err = table.Ground("contract_type")
	require.NoError(t, err)
	assert.Equal(t, "$fld_1", got, "in-pass fields ground to their placeholder")
}

func TestFieldTable_GroundVerbatimIDs(t *testing.T) {
	table := NewFieldTable()
	table.AddReal("notes", "fld_notes")
	table.AddPlaceholder("extra", "$fld_2")

	got, err := table.Ground("fld_notes")
	require.NoError(t, err)
	assert.Equal(t, "fld_notes", got)

	got, err = table.Ground("$fld_2")
	require.NoError(t, err)
	assert.Equal(t, "$fld_2", got)
}

func TestFieldTable_GroundUnknown(t *testing.T) {
	table := NewFieldTable()
	table.AddReal("notes", "fld_notes")

	_, err := table.Ground("salary_band")
	var ure *UnresolvedRefError
	require.ErrorAs(t, err, &ure)
	assert.Equal(t, "salary_band", ure.Ref)

	_, err = table.Ground("")
	assert.Error(t, err)
}
