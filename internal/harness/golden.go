package harness

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// FormatTrace renders a trace one step per line:
//
//	003 nudge dx=10 dy=0 id=id-1 -> ok [merge] undo=2 redo=0
//
// Arguments are sorted by name, so the output is stable.
func FormatTrace(name string, trace []TraceEvent) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "scenario: %s\n", name)
	for _, ev := range trace {
		fmt.Fprintf(&b, "%03d %s", ev.Seq, ev.Op)
		keys := make([]string, 0, len(ev.Args))
		for k := range ev.Args {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, formatValue(ev.Args[k]))
		}
		fmt.Fprintf(&b, " -> %s", ev.Outcome)
		if ev.ID != "" {
			fmt.Fprintf(&b, " id=%s", ev.ID)
		}
		if len(ev.Events) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(ev.Events, " "))
		}
		fmt.Fprintf(&b, " undo=%d redo=%d\n", ev.Undo, ev.Redo)
	}
	return b.Bytes()
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		if v == "" || strings.ContainsAny(v, " =[]") {
			return strconv.Quote(v)
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprint(v)
	}
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, FormatTrace(scenarioName, result.Trace))
}
