package cli

import (
	"github.com/spf13/cobra"
)

// ValidationResult holds the outcome of a plan validation.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan.json>",
		Short: "Validate a mutation plan without resolving it",
		Long: `Validate a plan document against the plan schema.

Checks shape and operation kinds only; references are not resolved
against the database, so no database is required. Use "-" to read the
plan from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, planPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	plan, err := loadPlan(planPath, cmd.InOrStdin())
	if err != nil {
		formatter.Error(ErrCodePlan, err.Error(), nil)
		return WrapExitError(ExitFailure, "validate plan", err)
	}

	formatter.VerboseLog("plan: %d form, %d field, %d option, %d logic intent(s)",
		len(plan.Forms), len(plan.Fields), len(plan.Options), len(plan.Logic))

	if opts.Format == "json" {
		return formatter.JSON(ValidationResult{Valid: true})
	}
	formatter.Text("plan is valid")
	return nil
}
