package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/trellis/internal/project"
)

// NewProjectResult describes a created project.
type NewProjectResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Dir  string `json:"dir"`
}

func (r NewProjectResult) Text(w io.Writer) {
	fmt.Fprintf(w, "Created project %s (%s)\n", r.ID, r.Name)
	fmt.Fprintf(w, "  dir: %s\n", r.Dir)
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty project",
		Long: `Create an empty project under the storage root and write its
data file and an empty history.

Example:
  trellis new "Survey pipeline"
  trellis new demo --store sqlite --db ./trellis.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(rootOpts, args[0], cmd)
		},
	}
}

func runNew(opts *RootOptions, name string, cmd *cobra.Command) error {
	s, err := newSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	p, err := project.Create(ctx, s.cfg.Storage.Root, name, s.projectOptions()...)
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeProject, "failed to create project", err)
	}
	if err := s.saveAndClose(ctx, p); err != nil {
		return err
	}

	return s.out.Success(NewProjectResult{ID: p.ID(), Name: p.Name(), Dir: p.Dir()})
}
