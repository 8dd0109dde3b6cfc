package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/formsmith/internal/changeset"
	"github.com/roach88/formsmith/internal/engine"
	"github.com/roach88/formsmith/internal/intent"
)

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <plan.json>",
		Short: "Resolve a mutation plan into a change-set",
		Long: `Resolve a mutation plan against the form definition database.

The plan is validated against the plan schema, resolved into a
table-keyed change-set, and printed together with a before snapshot of
every touched form. Use "-" to read the plan from stdin. Nothing is
written to the database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], cmd)
		},
	}
}

func runResolve(opts *RootOptions, planPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	plan, err := loadPlan(planPath, cmd.InOrStdin())
	if err != nil {
		formatter.Error(ErrCodePlan, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load plan", err)
	}

	ctx := cmd.Context()
	eng, _, _, cleanup, err := openEngine(ctx, opts)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer cleanup()

	result, err := eng.Resolve(ctx, plan)
	if err != nil {
		var se *changeset.StructureError
		switch {
		case engine.IsRowLimit(err):
			formatter.Error(ErrCodeRowLimit, err.Error(), nil)
		case errors.As(err, &se):
			formatter.Error(ErrCodeStructure, "change-set validation failed", se.Violations)
		default:
			formatter.Error(ErrCodeResolve, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "resolve plan", err)
	}

	if opts.Format == "json" {
		return formatter.JSON(result)
	}
	printResultText(formatter, result)
	if result.Type == engine.ResultClarification {
		return WrapExitError(ExitFailure, "clarification required", errors.New(result.Question))
	}
	return nil
}

// loadPlan reads and schema-validates a plan document. "-" reads stdin.
func loadPlan(path string, stdin io.Reader) (*intent.Plan, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	plan, err := intent.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return plan, nil
}

func printResultText(f *OutputFormatter, result *engine.Result) {
	if result.Type == engine.ResultClarification {
		f.Text("clarification needed: %s", result.Question)
		for _, c := range result.FormCandidates {
			f.Text("  form %s  %s (%s)", c.ID, c.Title, c.Slug)
		}
		for _, c := range result.FieldCandidates {
			f.Text("  field %s  %s (%s)", c.ID, c.Label, c.Code)
		}
		return
	}

	for _, table := range result.ChangeSet.Tables() {
		ops := result.ChangeSet[table]
		f.Text("%s: %d insert, %d update, %d delete",
			table, len(ops.Insert), len(ops.Update), len(ops.Delete))
		for _, row := range ops.Insert {
			f.Text("  + %s", rowSummary(row))
		}
		for _, row := range ops.Update {
			f.Text("  ~ %s", rowSummary(row))
		}
		for _, row := range ops.Delete {
			f.Text("  - %s", rowSummary(row))
		}
	}
	forms := make([]string, 0, len(result.BeforeSnapshot))
	for id := range result.BeforeSnapshot {
		forms = append(forms, id)
	}
	sort.Strings(forms)
	f.Text("before snapshot covers %d form(s): %s", len(forms), strings.Join(forms, ", "))
}

// rowSummary renders one row as stable key=value pairs, id first.
func rowSummary(row changeset.Row) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		if k != "id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := []string{}
	if id, ok := row["id"]; ok {
		parts = append(parts, fmt.Sprintf("id=%v", id))
	}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, row[k]))
	}
	return strings.Join(parts, " ")
}
