package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/trellis/internal/command"
)

// StepOptions holds flags for the undo and redo commands.
type StepOptions struct {
	*RootOptions
	Steps int
}

// StepResult describes the history after undo or redo.
type StepResult struct {
	Project string     `json:"project"`
	Action  string     `json:"action"`
	Applied []string   `json:"applied"`
	Dropped []string   `json:"dropped"`
	Undo    int        `json:"undo"`
	Redo    int        `json:"redo"`
	Top     *EntryView `json:"top,omitempty"`
}

func (r StepResult) Text(w io.Writer) {
	for _, kind := range r.Applied {
		fmt.Fprintf(w, "%s %s\n", r.Action, kind)
	}
	for _, kind := range r.Dropped {
		fmt.Fprintf(w, "dropped %s (target gone)\n", kind)
	}
	fmt.Fprintf(w, "Undo: %d  Redo: %d\n", r.Undo, r.Redo)
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	return newStepCommand(rootOpts, "undo", "Undo the latest change of a project")
}

// NewRedoCommand creates the redo command.
func NewRedoCommand(rootOpts *RootOptions) *cobra.Command {
	return newStepCommand(rootOpts, "redo", "Redo the latest undone change of a project")
}

func newStepCommand(rootOpts *RootOptions, action, short string) *cobra.Command {
	opts := &StepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   action + " <project-id>",
		Short: short,
		Long: short + `, then save the project.

Entries whose target no longer exists are discarded without counting as a
step and listed as dropped.

Exit codes:
  0 - At least one step applied
  1 - Nothing to ` + action + `
  2 - Command error (missing project, unreadable store, etc.)

Example:
  trellis ` + action + ` 0192f3a4-...
  trellis ` + action + ` 0192f3a4-... --steps 3`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(opts, action, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Steps, "steps", "n", 1, "number of steps")

	return cmd
}

func runStep(opts *StepOptions, action, id string, cmd *cobra.Command) error {
	if opts.Steps < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--steps must be at least 1, got %d", opts.Steps))
	}

	s, err := newSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	p, err := s.openProject(ctx, id)
	if err != nil {
		return err
	}
	defer p.Close(ctx)

	ed, stack := p.Editor(), p.History()
	can, step, code := ed.CanUndo, ed.Undo, CodeNothingToUndo
	// an applied step lands on the opposite stack; a dropped one does not
	landed := stack.RedoLen
	if action == "redo" {
		can, step, code = ed.CanRedo, ed.Redo, CodeNothingToRedo
		landed = stack.UndoLen
	}

	result := StepResult{Project: id, Action: action, Applied: []string{}, Dropped: []string{}}
	for len(result.Applied) < opts.Steps && can() {
		// the entry that moves is the top of the source stack
		var kind string
		if snap := stack.Snapshot(); action == "undo" {
			kind = string(snap.Undo[len(snap.Undo)-1].Kind)
		} else {
			kind = string(snap.Redo[len(snap.Redo)-1].Kind)
		}
		depth := landed()
		if err := step(); err != nil {
			return s.out.Fail(ExitFailure, CodeProject, action+" failed", err)
		}
		if landed() == depth {
			result.Dropped = append(result.Dropped, kind)
			continue
		}
		result.Applied = append(result.Applied, kind)
	}
	if len(result.Applied) == 0 {
		if len(result.Dropped) > 0 {
			if err := s.saveAndClose(ctx, p); err != nil {
				return err
			}
		}
		return s.out.Fail(ExitFailure, code, "nothing to "+action, nil)
	}

	if err := s.saveAndClose(ctx, p); err != nil {
		return err
	}

	result.Undo, result.Redo = stack.UndoLen(), stack.RedoLen()
	if top, ok := stack.Top(); ok {
		v := entryViews([]command.Command{top})[0]
		result.Top = &v
	}
	s.logger.Debug(action+" applied", "project", id, "steps", len(result.Applied), "dropped", len(result.Dropped))
	return s.out.Success(result)
}
