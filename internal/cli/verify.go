package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/trellis/internal/persist"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Strict bool // treat skipped entries as a failure
}

// SkipView is one history entry that could not be loaded.
type SkipView struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// VerifyResult describes a stored history blob.
type VerifyResult struct {
	Project  string     `json:"project"`
	Found    bool       `json:"found"`
	SavedAt  time.Time  `json:"saved_at,omitzero"`
	Revision int64      `json:"revision,omitempty"` // 0 when the backend does not count saves
	Undo     int        `json:"undo"`
	Redo     int        `json:"redo"`
	Skipped  []SkipView `json:"skipped,omitempty"`
}

func (r VerifyResult) Text(w io.Writer) {
	if !r.Found {
		fmt.Fprintf(w, "Project %s has no saved history\n", r.Project)
		return
	}
	fmt.Fprintf(w, "Project %s: checksum ok, saved %s", r.Project, r.SavedAt.UTC().Format(time.RFC3339))
	if r.Revision > 0 {
		fmt.Fprintf(w, " (revision %d)", r.Revision)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  undo: %d  redo: %d  skipped: %d\n", r.Undo, r.Redo, len(r.Skipped))
	for _, s := range r.Skipped {
		fmt.Fprintf(w, "  ✗ entry %d (%s): %s\n", s.Index, s.Kind, s.Error)
	}
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <project-id>",
		Short: "Check a stored history blob",
		Long: `Decode the stored history of a project and check its checksum.

Entries of unknown kinds are skipped on load; they are listed here.

Exit codes:
  0 - History is intact (or there is none)
  1 - History is corrupt, or entries were skipped with --strict
  2 - Command error (unreadable store, etc.)

Example:
  trellis verify 0192f3a4-...
  trellis verify 0192f3a4-... --strict --store sqlite`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail if any entry was skipped")

	return cmd
}

func runVerify(opts *VerifyOptions, id string, cmd *cobra.Command) error {
	s, err := newSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.close()

	result := VerifyResult{Project: id}
	data, err := s.store.LoadHistory(cmd.Context(), id)
	if errors.Is(err, persist.ErrNotFound) {
		return s.out.Success(result)
	}
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeStore, "failed to read history", err)
	}

	snap, rep, err := persist.Decode(data, id)
	if err != nil {
		return s.out.Fail(ExitFailure, CodeCorrupt, "history is corrupt", err)
	}
	result.Found = true
	result.SavedAt = rep.SavedAt
	if cat, ok := s.store.(catalog); ok {
		if result.Revision, err = cat.Revision(cmd.Context(), id); err != nil {
			return s.out.Fail(ExitCommandError, CodeStore, "failed to read history revision", err)
		}
	}
	result.Undo, result.Redo = len(snap.Undo), len(snap.Redo)
	for _, sk := range rep.Skipped {
		result.Skipped = append(result.Skipped, SkipView{Index: sk.Index, Kind: string(sk.Kind), Error: sk.Err.Error()})
	}

	if err := s.out.Success(result); err != nil {
		return err
	}
	if opts.Strict && len(result.Skipped) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d history entries skipped", len(result.Skipped)))
	}
	return nil
}
