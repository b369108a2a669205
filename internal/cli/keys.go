package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/trellis/internal/keymap"
)

// BindingView is one action and the chords bound to it.
type BindingView struct {
	Action string   `json:"action"`
	Keys   []string `json:"keys"`
	Help   string   `json:"help"`
}

// KeysResult lists the bindings, and the action each looked-up chord maps
// to ("" for unbound chords).
type KeysResult struct {
	Bindings []BindingView     `json:"bindings"`
	Lookups  map[string]string `json:"lookups,omitempty"`
}

func (r KeysResult) Text(w io.Writer) {
	for _, b := range r.Bindings {
		fmt.Fprintf(w, "%-7s %s\n", b.Action, strings.Join(b.Keys, ", "))
	}
	chords := make([]string, 0, len(r.Lookups))
	for chord := range r.Lookups {
		chords = append(chords, chord)
	}
	slices.Sort(chords)
	for _, chord := range chords {
		action := r.Lookups[chord]
		if action == "" {
			action = "(unbound)"
		}
		fmt.Fprintf(w, "%s -> %s\n", chord, action)
	}
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys [chord...]",
		Short: "Show the undo, redo and delete key bindings",
		Long: `Show the configured key bindings and check them for conflicts.
With chords as arguments, print the action each one triggers.

Example:
  trellis keys
  trellis keys ctrl+shift+z shift+ctrl+z
  trellis keys --config ./trellis.cue`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(rootOpts, args, cmd)
		},
	}
}

func runKeys(opts *RootOptions, chords []string, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	cfg, err := loadConfig(opts, os.LookupEnv)
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "failed to load config", err)
	}
	m, err := keymap.FromConfig(cfg.Keys)
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "invalid key bindings", err)
	}

	actions := []keymap.Action{keymap.ActionUndo, keymap.ActionRedo, keymap.ActionDelete}
	result := KeysResult{}
	for i, b := range m.Bindings() {
		result.Bindings = append(result.Bindings, BindingView{
			Action: string(actions[i]),
			Keys:   b.Keys(),
			Help:   b.Help().Desc,
		})
	}
	if len(chords) > 0 {
		result.Lookups = make(map[string]string, len(chords))
		for _, c := range chords {
			action, _ := m.Lookup(c)
			result.Lookups[c] = string(action)
		}
	}
	return out.Success(result)
}
