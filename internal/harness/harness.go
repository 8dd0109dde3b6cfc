package harness

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formsmith/internal/changeset"
	"github.com/roach88/formsmith/internal/engine"
	"github.com/roach88/formsmith/internal/intent"
	"github.com/roach88/formsmith/internal/schema"
	"github.com/roach88/formsmith/internal/testutil"
)

// Run executes one scenario: seed the fixture, decode the plan through the
// production schema validation, resolve it with a deterministic minter,
// and assert the expected outcome shape. Returns the result for golden
// comparison.
func Run(t *testing.T, sc *Scenario) *engine.Result {
	t.Helper()

	s := testutil.OpenFixture(t, sc.Fixture)
	catalog, err := schema.Load(context.Background(), s.DB())
	require.NoError(t, err, "load catalog")

	opts := []engine.Option{engine.WithMinter(changeset.SequentialMinter())}
	if sc.MaxRows > 0 {
		opts = append(opts, engine.WithMaxChangedRows(sc.MaxRows))
	}
	eng := engine.New(s, catalog, opts...)

	planJSON, err := json.Marshal(sc.Plan)
	require.NoError(t, err, "encode plan")
	plan, err := intent.Decode(planJSON)
	require.NoError(t, err, "plan must pass schema validation")

	result, err := eng.Resolve(context.Background(), plan)
	require.NoError(t, err, "resolve")

	assertExpect(t, sc, result)
	return result
}

func assertExpect(t *testing.T, sc *Scenario, result *engine.Result) {
	t.Helper()

	assert.Equal(t, sc.Expect.Type, result.Type, "outcome type")
	if sc.Expect.Reason != "" {
		assert.Equal(t, sc.Expect.Reason, result.Reason, "clarification reason")
	}
	for table, want := range sc.Expect.Tables {
		ops := result.ChangeSet[table]
		if ops == nil {
			ops = &changeset.TableOps{}
		}
		assert.Len(t, ops.Insert, want.Insert, "%s inserts", table)
		assert.Len(t, ops.Update, want.Update, "%s updates", table)
		assert.Len(t, ops.Delete, want.Delete, "%s deletes", table)
	}
	for _, formID := range sc.Expect.SnapshotForms {
		assert.Contains(t, result.BeforeSnapshot, formID, "before snapshot coverage")
	}
}
