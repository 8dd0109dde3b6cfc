// Package cli implements the formsmith command line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/formsmith/internal/engine"
	"github.com/roach88/formsmith/internal/schema"
	"github.com/roach88/formsmith/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DB      string
	Verbose bool
	Format  string // "json" | "text"
	MaxRows int
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the formsmith CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "formsmith",
		Short: "Resolve form mutation plans into reviewable change-sets",
		Long: `formsmith turns structured mutation plans over a form definition
database into validated change-set documents plus before snapshots.
It never applies a change-set; executing one is a separate system's job.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "formsmith.db", "path to the form definition database")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().IntVar(&opts.MaxRows, "max-rows", engine.DefaultMaxChangedRows, "row ceiling for one change-set")

	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewFormsCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// Execute runs the root command and maps errors to exit codes.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(GetExitCode(err))
	}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openEngine opens the store and builds an engine over it. The returned
// cleanup closes the store.
func openEngine(ctx context.Context, opts *RootOptions) (*engine.Engine, *store.Store, *schema.Catalog, func(), error) {
	s, err := store.Open(opts.DB)
	if err != nil {
		return nil, nil, nil, nil, WrapExitError(ExitCommandError, "open database", err)
	}
	catalog, err := schema.Load(ctx, s.DB())
	if err != nil {
		s.Close()
		return nil, nil, nil, nil, WrapExitError(ExitCommandError, "load schema catalog", err)
	}
	eng := engine.New(s, catalog, engine.WithMaxChangedRows(opts.MaxRows))
	return eng, s, catalog, func() { s.Close() }, nil
}
