package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: flag_once
description: "Flagging a node is one undo step"
steps:
  - op: create_node
    as: a
  - op: toggle_flag
    args: { id: $a }
assertions:
  - type: flagged
    id: $a
    on: true
  - type: undo_depth
    count: 2
`

const failingScenario = `name: wrong_depth
description: "Expects the wrong depth"
steps:
  - op: create_node
assertions:
  - type: undo_depth
    count: 5
`

func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestRun_AllPass(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"flag.yaml": passingScenario, "notes.txt": "ignored"})

	out, _, err := execute(t, "run", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ flag_once")
	assert.Contains(t, out, "Summary: 1 passed, 0 failed, 1 total")
}

func TestRun_FailureExitCode(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"flag.yaml": passingScenario, "depth.yml": failingScenario})

	out, _, err := execute(t, "run", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_depth")
	assert.Contains(t, out, "Expected: undo depth 5")
	assert.Contains(t, out, "Summary: 1 passed, 1 failed, 2 total")
}

func TestRun_Filter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"flag.yaml": passingScenario, "depth.yaml": failingScenario})

	out, _, err := execute(t, "run", dir, "--filter", "fl*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
	assert.NotContains(t, out, "wrong_depth")
}

func TestRun_LoadError(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"bad.yaml": "name: bad\nsteps: []\n"})

	out, _, err := execute(t, "run", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ bad.yaml")
	assert.Contains(t, out, "Load error")
}

func TestRun_JSONWithTrace(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"flag.yaml": passingScenario})

	out, _, err := execute(t, "--format", "json", "run", dir, "--trace")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, []string{
		"scenario: flag_once",
		"001 create_node -> ok id=id-1 [push] undo=1 redo=0",
		"002 toggle_flag id=id-1 -> ok [push] undo=2 redo=0",
	}, resp.Data.Scenarios[0].Trace)
}

func TestRun_NoScenarios(t *testing.T) {
	out, _, err := execute(t, "run", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestRun_MissingDir(t *testing.T) {
	_, _, err := execute(t, "run", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
