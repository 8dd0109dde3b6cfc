package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formsmith/internal/testutil"
)

// runCommand executes the root command with args and returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveCommand_JSON(t *testing.T) {
	db := testutil.FixturePath(t, "travel")
	plan := writePlan(t, `{
		"options": [{
			"op": "add",
			"form": {"name": "Travel Intake"},
			"field": {"name": "destination"},
			"values": ["Milan"]
		}]
	}`)

	out, err := runCommand(t, "resolve", plan, "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Type      string `json:"type"`
			ChangeSet map[string]struct {
				Insert []map[string]any `json:"insert"`
			} `json:"change_set"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "change_set", resp.Data.Type)
	require.Len(t, resp.Data.ChangeSet["option_items"].Insert, 1)
	assert.Equal(t, "Milan", resp.Data.ChangeSet["option_items"].Insert[0]["value"])
}

func TestResolveCommand_TextSummary(t *testing.T) {
	db := testutil.FixturePath(t, "travel")
	plan := writePlan(t, `{
		"options": [{
			"op": "deactivate",
			"form": {"name": "Travel Intake"},
			"field": {"name": "destination"},
			"option": {"value": "Paris"}
		}]
	}`)

	out, err := runCommand(t, "resolve", plan, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "option_items: 0 insert, 1 update, 0 delete")
	assert.Contains(t, out, "frm_trip")
}

func TestResolveCommand_ClarificationExitsNonzero(t *testing.T) {
	db := testutil.FixturePath(t, "ambiguous")
	plan := writePlan(t, `{
		"fields": [{
			"op": "add",
			"form": {"name": "Feedback"},
			"code": "rating",
			"type": "number"
		}]
	}`)

	out, err := runCommand(t, "resolve", plan, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "clarification needed")
	assert.Contains(t, out, "frm_cf1")
}

func TestResolveCommand_BadPlan(t *testing.T) {
	db := testutil.FixturePath(t, "empty")
	plan := writePlan(t, `{"fields": [{"op": "explode"}]}`)

	_, err := runCommand(t, "resolve", plan, "--db", db, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestResolveCommand_RowLimitFlag(t *testing.T) {
	db := testutil.FixturePath(t, "travel")
	plan := writePlan(t, `{
		"options": [{
			"op": "add",
			"form": {"name": "Travel Intake"},
			"field": {"name": "destination"},
			"values": ["Milan", "Oslo", "Berlin"]
		}]
	}`)

	out, err := runCommand(t, "resolve", plan, "--db", db, "--max-rows", "2", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E_ROW_LIMIT")
}

func TestValidateCommand(t *testing.T) {
	plan := writePlan(t, `{
		"fields": [{
			"op": "add",
			"form": {"name": "Anything"},
			"code": "x",
			"type": "text"
		}]
	}`)

	out, err := runCommand(t, "validate", plan)
	require.NoError(t, err)
	assert.Contains(t, out, "plan is valid")
}

func TestValidateCommand_Invalid(t *testing.T) {
	plan := writePlan(t, `{"logic": [{"op": "add", "form": {}, "priority": -3}]}`)

	_, err := runCommand(t, "validate", plan)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestSnapshotCommand(t *testing.T) {
	db := testutil.FixturePath(t, "employment")

	out, err := runCommand(t, "snapshot", "frm_emp", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "employment-demo")
	assert.Contains(t, out, "fld_status")
	assert.Contains(t, out, "lr_1")
}

func TestSnapshotCommand_NotFound(t *testing.T) {
	db := testutil.FixturePath(t, "empty")

	_, err := runCommand(t, "snapshot", "frm_missing", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestFormsCommand(t *testing.T) {
	db := testutil.FixturePath(t, "ambiguous")

	out, err := runCommand(t, "forms", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "frm_cf1")
	assert.Contains(t, out, "frm_cf2")
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := runCommand(t, "forms", "--format", "xml")
	require.Error(t, err)
}
