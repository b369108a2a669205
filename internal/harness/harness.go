package harness

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/history"
	"github.com/roach88/trellis/internal/intercept"
	"github.com/roach88/trellis/internal/persist"
	"github.com/roach88/trellis/internal/scene"
	"github.com/roach88/trellis/internal/testutil"
)

// runnerProject is the project ID used when a scenario round-trips its
// history through the blob format.
const runnerProject = "scenario"

// runner executes one scenario.
type runner struct {
	scenario *Scenario
	stack    *history.Stack
	editor   *intercept.Editor
	clock    *testutil.FakeClock
	ids      *testutil.SequenceIDs
	logger   *slog.Logger
	result   *Result

	events []string // history events of the current step
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh empty scene with a fake clock and
// sequential IDs. Run returns an error only for a scenario that cannot be
// executed (unknown alias, malformed arguments); failed expectations are
// reported in the Result.
func Run(s *Scenario) (*Result, error) {
	r := &runner{
		scenario: s,
		clock:    testutil.NewFakeClock(testutil.Epoch),
		ids:      testutil.NewSequenceIDs("id"),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		result:   NewResult(),
	}
	r.reset(scene.New(), history.Snapshot{}, false)

	for i, step := range s.Steps {
		if err := r.step(i+1, step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}

	for _, msg := range EvaluateAssertions(r.result, s.Assertions, r) {
		r.result.AddError(msg)
	}
	return r.result, nil
}

// reset builds a new stack and editor around sc.
func (r *runner) reset(sc *scene.Scene, snap history.Snapshot, seal bool) {
	opts := []history.Option{
		history.WithLogger(r.logger),
		history.WithObserver(history.ObserverFunc(func(e history.Event) {
			r.events = append(r.events, string(e.Type))
		})),
	}
	if r.scenario.Limit > 0 {
		opts = append(opts, history.WithLimit(r.scenario.Limit))
	}
	r.stack = history.New(sc, opts...)
	if len(snap.Undo)+len(snap.Redo) > 0 {
		r.stack.Restore(snap, seal)
	} else if seal {
		r.stack.Seal()
	}
	r.editor = intercept.New(r.stack,
		intercept.WithClock(r.clock),
		intercept.WithIDs(r.ids),
		intercept.WithLogger(r.logger),
	)
}

func (r *runner) step(seq int, step Step) error {
	a, err := r.resolve(step.Args)
	if err != nil {
		return err
	}

	r.events = nil
	id, opErr := ops[step.Op](r, a)
	if a.err != nil {
		return a.err
	}

	got := Outcome(opErr)
	ev := TraceEvent{
		Seq:     seq,
		Op:      step.Op,
		Args:    a.m,
		ID:      id,
		Outcome: got,
		Events:  r.events,
		Undo:    r.stack.UndoLen(),
		Redo:    r.stack.RedoLen(),
	}
	r.result.Trace = append(r.result.Trace, ev)

	want := step.Expect
	if want == "" {
		want = OutcomeOK
	}
	if got != want {
		msg := fmt.Sprintf("step %d (%s): expected %s, got %s", seq, step.Op, want, got)
		if opErr != nil {
			msg += ": " + opErr.Error()
		}
		r.result.AddError(msg)
	}

	if step.As != "" {
		if id == "" {
			return fmt.Errorf("alias %q: %s returned no id", step.As, step.Op)
		}
		r.result.Aliases[step.As] = id
	}
	return nil
}

// resolve replaces $alias strings, including inside lists.
func (r *runner) resolve(in map[string]any) (*args, error) {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch v := v.(type) {
		case string:
			s, err := r.alias(v)
			if err != nil {
				return nil, err
			}
			out[k] = s
		case []any:
			list := make([]any, len(v))
			for i, item := range v {
				if s, ok := item.(string); ok {
					resolved, err := r.alias(s)
					if err != nil {
						return nil, err
					}
					list[i] = resolved
					continue
				}
				list[i] = item
			}
			out[k] = list
		default:
			out[k] = v
		}
	}
	return &args{m: out}, nil
}

func (r *runner) alias(s string) (string, error) {
	if !strings.HasPrefix(s, "$") {
		return s, nil
	}
	id, ok := r.result.Aliases[s[1:]]
	if !ok {
		return "", fmt.Errorf("unknown alias %q", s)
	}
	return id, nil
}

// reopen round-trips the scene through JSON and the history through the
// blob format, the way closing and reopening a project would.
func (r *runner) reopen(seal bool) error {
	raw, err := json.Marshal(r.stack.Scene().Document())
	if err != nil {
		return err
	}
	var doc scene.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	sc, err := scene.FromDocument(doc)
	if err != nil {
		return err
	}

	blob, err := persist.Encode(runnerProject, r.stack.Snapshot(), r.clock.Now())
	if err != nil {
		return err
	}
	snap, _, err := persist.Decode(blob, runnerProject)
	if err != nil {
		return err
	}
	r.reset(sc, snap, seal)
	return nil
}

func (r *runner) advance(d time.Duration) {
	r.clock.Advance(d)
}

// Outcome names for step results.
const (
	OutcomeOK            = "ok"
	OutcomeLocked        = "locked"
	OutcomeInvalidTarget = "invalid_target"
	OutcomeBadState      = "bad_state"
	OutcomeNotFound      = "not_found"
	OutcomeDuplicate     = "duplicate"
	OutcomeIDReused      = "id_reused"
	OutcomeNoGesture     = "no_gesture"
	OutcomeSelfLoop      = "self_loop"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeUnknownField  = "unknown_field"
	OutcomeError         = "error"
)

var outcomes = []struct {
	err  error
	name string
}{
	{command.ErrLocked, OutcomeLocked},
	{command.ErrInvalidTarget, OutcomeInvalidTarget},
	{command.ErrBadState, OutcomeBadState},
	{intercept.ErrIDReused, OutcomeIDReused},
	{intercept.ErrNoGesture, OutcomeNoGesture},
	{intercept.ErrSelfLoop, OutcomeSelfLoop},
	{intercept.ErrInvalidInput, OutcomeInvalidInput},
	{scene.ErrDuplicate, OutcomeDuplicate},
	{scene.ErrUnknownField, OutcomeUnknownField},
	{scene.ErrNotFound, OutcomeNotFound},
}

// Outcome classifies an operation error by the sentinel it wraps.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.name
		}
	}
	return OutcomeError
}
