package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertions_FailuresAreReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "Every assertion is wrong",
		Steps: []Step{
			{Op: "create_node", Args: map[string]any{"title": "A"}, As: "a"},
		},
		Assertions: []Assertion{
			{Type: AssertUndoDepth, Count: 3},
			{Type: AssertRedoDepth, Count: 1},
			{Type: AssertAbsent, ID: "$a"},
			{Type: AssertExists, ID: "ghost"},
			{Type: AssertPosition, ID: "$a", X: ptr(1.0), Y: ptr(0.0)},
			{Type: AssertText, ID: "$a", Text: ptr("B")},
			{Type: AssertFlagged, ID: "$a", On: ptr(true)},
			{Type: AssertLocked, ID: "$a", On: ptr(true)},
			{Type: AssertMemberOf, ID: "$a", Group: ptr("g")},
			{Type: AssertHistory, Kinds: []string{"move"}},
			{Type: AssertTraceCount, Op: "create_node", Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, len(scenario.Assertions))
}

func TestAssertions_UnknownAlias(t *testing.T) {
	scenario := &Scenario{
		Name:        "alias",
		Description: "Assertion refers to an unbound alias",
		Steps:       []Step{{Op: "create_node"}},
		Assertions:  []Assertion{{Type: AssertExists, ID: "$nobody"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "alias $nobody bound")
}

func TestAssertions_SnippetExists(t *testing.T) {
	scenario := &Scenario{
		Name:        "snippet",
		Description: "Snippets are entities with text",
		Steps: []Step{
			{Op: "create_node", As: "a"},
			{Op: "add_snippet", Args: map[string]any{"id": "$a", "content": "hello"}, As: "s"},
		},
		Assertions: []Assertion{
			{Type: AssertExists, ID: "$s"},
			{Type: AssertHistory, Kinds: []string{"create_node", "snippet_add"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertUndoDepth,
		Expected: "undo depth 2",
		Actual:   "undo depth 1",
		Trace: []TraceEvent{
			{Seq: 1, Op: "create_node", Outcome: OutcomeOK},
			{Seq: 2, Op: "delete_node", Outcome: OutcomeLocked},
		},
	}

	want := "Assertion failed: undo_depth\n" +
		"  Expected: undo depth 2\n" +
		"  Actual: undo depth 1\n" +
		"\nFull trace:\n" +
		"  [1] create_node -> ok\n" +
		"  [2] delete_node -> locked\n"
	assert.Equal(t, want, err.Error())
}
