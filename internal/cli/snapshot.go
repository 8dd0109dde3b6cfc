package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <form-id>",
		Short: "Print the full structure of one form",
		Long: `Print a form's structure: the form row, its pages, fields, option
lists, and logic rules with their conditions and actions. This is the
same document the resolver emits as a before snapshot.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(rootOpts, args[0], cmd)
		},
	}
}

func runSnapshot(opts *RootOptions, formID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	_, s, _, cleanup, err := openEngine(ctx, opts)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer cleanup()

	structure, err := s.FormStructure(ctx, formID)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "load form structure", err)
	}
	if structure == nil {
		formatter.Error(ErrCodeNotFound, "form not found: "+formID, nil)
		return WrapExitError(ExitFailure, "form not found", errors.New(formID))
	}

	if opts.Format == "json" {
		return formatter.JSON(structure)
	}
	formatter.Text("form %s (%s) %q status=%s", structure.Form.ID, structure.Form.Slug, structure.Form.Title, structure.Form.Status)
	for _, pg := range structure.Pages {
		formatter.Text("  page %s position=%d %q", pg.ID, pg.Position, pg.Title)
	}
	for _, fld := range structure.Fields {
		formatter.Text("  field %s code=%s type=%s %q", fld.ID, fld.Code, fld.FieldTypeKey, fld.Label)
		for _, opt := range structure.OptionsByField[fld.ID] {
			state := "active"
			if opt.IsActive == 0 {
				state = "inactive"
			}
			formatter.Text("    option %s %q (%s)", opt.ID, opt.Value, state)
		}
	}
	for _, rule := range structure.LogicRules {
		formatter.Text("  rule %s priority=%d enabled=%d %q", rule.ID, rule.Priority, rule.Enabled, rule.Name)
	}
	return nil
}

// NewFormsCommand creates the forms listing command.
func NewFormsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "forms",
		Short:         "List the forms in the database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForms(rootOpts, cmd)
		},
	}
}

func runForms(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	_, s, _, cleanup, err := openEngine(ctx, opts)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer cleanup()

	forms, err := s.Forms(ctx)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "list forms", err)
	}

	if opts.Format == "json" {
		return formatter.JSON(forms)
	}
	for _, f := range forms {
		formatter.Text("%s  %s  %q  status=%s", f.ID, f.Slug, f.Title, f.Status)
	}
	if len(forms) == 0 {
		formatter.Text("no forms")
	}
	return nil
}
