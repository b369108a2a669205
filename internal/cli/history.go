package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/project"
	"github.com/roach88/trellis/internal/store"
)

// catalog is a history backend that can enumerate what it holds. The SQLite
// store is one; the file store is not.
type catalog interface {
	List(ctx context.Context) ([]store.HistoryInfo, error)
	Revision(ctx context.Context, projectID string) (int64, error)
}

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Metrics bool // also print history metrics in Prometheus text format
}

// EntryView is one undo or redo entry.
type EntryView struct {
	Kind   string    `json:"kind"`
	Target string    `json:"target,omitempty"`
	Steps  int       `json:"steps"`
	At     time.Time `json:"at"`
}

// HistoryView is the state of a project's history.
type HistoryView struct {
	Project  string      `json:"project"`
	Name     string      `json:"name"`
	Undo     []EntryView `json:"undo"`
	Redo     []EntryView `json:"redo"`
	Warnings []string    `json:"warnings,omitempty"`
}

func (v HistoryView) Text(w io.Writer) {
	fmt.Fprintf(w, "Project %s (%s)\n", v.Project, v.Name)
	fmt.Fprintf(w, "Undo: %d\n", len(v.Undo))
	// newest first, the order undo walks them
	for i := len(v.Undo) - 1; i >= 0; i-- {
		writeEntry(w, i+1, v.Undo[i])
	}
	fmt.Fprintf(w, "Redo: %d\n", len(v.Redo))
	for i := len(v.Redo) - 1; i >= 0; i-- {
		writeEntry(w, len(v.Redo)-i, v.Redo[i])
	}
	for _, warning := range v.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

func writeEntry(w io.Writer, n int, e EntryView) {
	fmt.Fprintf(w, "  %3d %-16s %s", n, e.Kind, e.At.UTC().Format(time.RFC3339))
	if e.Target != "" {
		fmt.Fprintf(w, " %s", e.Target)
	}
	if e.Steps > 1 {
		fmt.Fprintf(w, " (%d steps)", e.Steps)
	}
	fmt.Fprintln(w)
}

func entryViews(cs []command.Command) []EntryView {
	views := make([]EntryView, len(cs))
	for i, c := range cs {
		views[i] = EntryView{Kind: string(c.Kind), Target: c.Target, Steps: c.Len(), At: c.At}
	}
	return views
}

func historyView(p *project.Project) HistoryView {
	snap := p.History().Snapshot()
	return HistoryView{
		Project:  p.ID(),
		Name:     p.Name(),
		Undo:     entryViews(snap.Undo),
		Redo:     entryViews(snap.Redo),
		Warnings: warningStrings(p.Warnings()),
	}
}

// StoredView is one history held by the backend.
type StoredView struct {
	Project   string    `json:"project"`
	Revision  int64     `json:"revision"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoredList is every history held by the backend, most recent first.
type StoredList struct {
	Histories []StoredView `json:"histories"`
}

func (l StoredList) Text(w io.Writer) {
	fmt.Fprintf(w, "Stored histories: %d\n", len(l.Histories))
	for _, h := range l.Histories {
		fmt.Fprintf(w, "  %s  rev %d  %d bytes  %s\n",
			h.Project, h.Revision, h.Size, h.UpdatedAt.UTC().Format(time.RFC3339))
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [project-id]",
		Short: "Show a project's undo and redo stacks",
		Long: `Show the undo and redo stacks of a project, newest entry first.

History that could not be restored is reported as a warning; the project
itself still opens.

Without a project ID, list every history the SQLite backend holds with its
revision, size and last save.

Example:
  trellis history --store sqlite
  trellis history 0192f3a4-...
  trellis history 0192f3a4-... --format json
  trellis history 0192f3a4-... --metrics`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runHistoryList(opts, cmd)
			}
			return runHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print history metrics (Prometheus text format)")

	return cmd
}

func runHistory(opts *HistoryOptions, id string, cmd *cobra.Command) error {
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

	if err := s.out.Success(historyView(p)); err != nil {
		return err
	}
	if opts.Metrics {
		return s.metrics.WriteText(s.out.Writer)
	}
	return nil
}

func runHistoryList(opts *HistoryOptions, cmd *cobra.Command) error {
	s, err := newSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.close()

	cat, ok := s.store.(catalog)
	if !ok {
		return s.out.Fail(ExitCommandError, CodeStore,
			"listing histories needs the sqlite backend; pass a project ID or --store sqlite", nil)
	}
	infos, err := cat.List(cmd.Context())
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeStore, "failed to list histories", err)
	}

	list := StoredList{Histories: make([]StoredView, len(infos))}
	for i, info := range infos {
		list.Histories[i] = StoredView{
			Project:   info.ProjectID,
			Revision:  info.Revision,
			Size:      info.Size,
			UpdatedAt: info.UpdatedAt,
		}
	}
	s.logger.Debug("listed histories", "count", len(list.Histories))
	return s.out.Success(list)
}
