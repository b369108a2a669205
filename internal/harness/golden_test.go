package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTrace(t *testing.T) {
	trace := []TraceEvent{
		{
			Seq:     1,
			Op:      "create_node",
			Args:    map[string]any{"title": "Load data", "x": 1.5, "y": 0},
			ID:      "id-1",
			Outcome: OutcomeOK,
			Events:  []string{"push"},
			Undo:    1,
		},
		{
			Seq:     2,
			Op:      "select",
			Args:    map[string]any{"ids": []any{"id-1", ""}},
			Outcome: OutcomeOK,
			Undo:    1,
		},
		{
			Seq:     12,
			Op:      "reopen",
			Args:    map[string]any{"seal": true},
			Outcome: OutcomeOK,
			Events:  []string{"restore"},
			Undo:    1,
			Redo:    2,
		},
	}

	want := "scenario: demo\n" +
		`001 create_node title="Load data" x=1.5 y=0 -> ok id=id-1 [push] undo=1 redo=0` + "\n" +
		`002 select ids=[id-1,""] -> ok undo=1 redo=0` + "\n" +
		"012 reopen seal=true -> ok [restore] undo=1 redo=2\n"
	assert.Equal(t, want, string(FormatTrace("demo", trace)))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{"plain", "plain"},
		{"", `""`},
		{"a=b", `"a=b"`},
		{"[x]", `"[x]"`},
		{1e21, "1e+21"},
		{-10, "-10"},
		{false, "false"},
		{[]any{}, "[]"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(tt.in))
	}
}
