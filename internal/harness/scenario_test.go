package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_Valid(t *testing.T) {
	src := `
name: valid
description: "Create and flag"
limit: 5
steps:
  - op: create_node
    args: { title: A, x: 1.5 }
    as: a
  - op: toggle_flag
    args: { id: $a }
  - op: delete_node
    args: { id: ghost }
    expect: not_found
assertions:
  - type: flagged
    id: $a
    on: true
`
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "valid", s.Name)
	assert.Equal(t, 5, s.Limit)
	require.Len(t, s.Steps, 3)
	assert.Equal(t, "a", s.Steps[0].As)
	assert.Equal(t, "A", s.Steps[0].Args["title"])
	assert.Equal(t, 1.5, s.Steps[0].Args["x"])
	assert.Equal(t, "not_found", s.Steps[2].Expect)
	require.Len(t, s.Assertions, 1)
	require.NotNil(t, s.Assertions[0].On)
	assert.True(t, *s.Assertions[0].On)
}

func TestParseScenario_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "malformed yaml",
			src:  "name: [unterminated",
			want: "failed to parse YAML",
		},
		{
			name: "unknown field",
			src:  "name: x\ndescription: y\nsteps: [{op: undo}]\nassertion: []\n",
			want: "field assertion not found",
		},
		{
			name: "missing name",
			src:  "description: y\nsteps: [{op: undo}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			src:  "name: x\nsteps: [{op: undo}]\n",
			want: "description is required",
		},
		{
			name: "no steps",
			src:  "name: x\ndescription: y\n",
			want: "steps list is required",
		},
		{
			name: "negative limit",
			src:  "name: x\ndescription: y\nlimit: -1\nsteps: [{op: undo}]\n",
			want: "limit must not be negative",
		},
		{
			name: "missing op",
			src:  "name: x\ndescription: y\nsteps: [{as: a}]\n",
			want: "step 1: op is required",
		},
		{
			name: "unknown op",
			src:  "name: x\ndescription: y\nsteps: [{op: teleport}]\n",
			want: `unknown op "teleport"`,
		},
		{
			name: "alias bound twice",
			src:  "name: x\ndescription: y\nsteps: [{op: create_node, as: a}, {op: create_node, as: a}]\n",
			want: `step 2: alias "a" bound twice`,
		},
		{
			name: "unknown assertion",
			src:  "name: x\ndescription: y\nsteps: [{op: undo}]\nassertions: [{type: sparkles}]\n",
			want: `unknown type "sparkles"`,
		},
		{
			name: "position without coordinates",
			src:  "name: x\ndescription: y\nsteps: [{op: undo}]\nassertions: [{type: position, id: a}]\n",
			want: "id, x and y are required",
		},
		{
			name: "flagged without on",
			src:  "name: x\ndescription: y\nsteps: [{op: undo}]\nassertions: [{type: flagged, id: a}]\n",
			want: "id and on are required",
		},
		{
			name: "member_of without group",
			src:  "name: x\ndescription: y\nsteps: [{op: undo}]\nassertions: [{type: member_of, id: a}]\n",
			want: "id and group are required",
		},
		{
			name: "trace_count without op",
			src:  "name: x\ndescription: y\nsteps: [{op: undo}]\nassertions: [{type: trace_count, count: 1}]\n",
			want: "op is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: disk\ndescription: d\nsteps: [{op: undo}]\n"), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "disk", s.Name)
}
