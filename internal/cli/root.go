package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // path to a CUE or JSON config file
	Store   string // "file" | "sqlite"; empty keeps the configured backend
	DB      string // SQLite path; empty keeps the configured one
	Root    string // projects directory; empty keeps the configured one
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidStores defines the allowed history backends.
var ValidStores = []string{"file", "sqlite"}

// NewRootCommand creates the root command for the trellis CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "trellis",
		Short: "trellis - undo history for node-editor projects",
		Long: `Inspect and edit the undo history of trellis projects.

Projects live under the storage root, one directory per project. History is
kept next to the project data or in a shared SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Store != "" && !slices.Contains(ValidStores, opts.Store) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid store %q: must be one of %v", opts.Store, ValidStores))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "config file (CUE or JSON)")
	cmd.PersistentFlags().StringVar(&opts.Store, "store", "", "history backend (file|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Root, "root", "", "projects directory")

	// Add subcommands
	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewUndoCommand(opts))
	cmd.AddCommand(NewRedoCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))

	return cmd
}
