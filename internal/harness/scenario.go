package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted editing session with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Limit overrides the undo depth. Zero keeps the default.
	Limit int `yaml:"limit,omitempty"`

	// Steps run in order against a fresh editor.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one editor operation.
type Step struct {
	// Op names the operation (create_node, nudge, undo, ...).
	Op string `yaml:"op"`

	// Args are the operation's arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// As binds the ID the operation returns to an alias.
	As string `yaml:"as,omitempty"`

	// Expect is the expected outcome. Empty means "ok".
	Expect string `yaml:"expect,omitempty"`
}

// Assertion checks the final scene or history.
type Assertion struct {
	Type  string   `yaml:"type"`
	ID    string   `yaml:"id,omitempty"`
	Field string   `yaml:"field,omitempty"`
	Text  *string  `yaml:"text,omitempty"`
	X     *float64 `yaml:"x,omitempty"`
	Y     *float64 `yaml:"y,omitempty"`
	On    *bool    `yaml:"on,omitempty"`
	Group *string  `yaml:"group,omitempty"`
	Kinds []string `yaml:"kinds,omitempty"`
	Op    string   `yaml:"op,omitempty"`
	Count int      `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertUndoDepth  = "undo_depth"
	AssertRedoDepth  = "redo_depth"
	AssertExists     = "exists"
	AssertAbsent     = "absent"
	AssertPosition   = "position"
	AssertText       = "text"
	AssertFlagged    = "flagged"
	AssertLocked     = "locked"
	AssertMemberOf   = "member_of"
	AssertHistory    = "history"
	AssertTraceCount = "trace_count"
)

var assertionTypes = map[string]bool{
	AssertUndoDepth: true, AssertRedoDepth: true, AssertExists: true,
	AssertAbsent: true, AssertPosition: true, AssertText: true,
	AssertFlagged: true, AssertLocked: true, AssertMemberOf: true,
	AssertHistory: true, AssertTraceCount: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	aliases := map[string]bool{}
	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("step %d: op is required", i+1)
		}
		if _, ok := ops[step.Op]; !ok {
			return fmt.Errorf("step %d: unknown op %q", i+1, step.Op)
		}
		if step.As != "" {
			if aliases[step.As] {
				return fmt.Errorf("step %d: alias %q bound twice", i+1, step.As)
			}
			aliases[step.As] = true
		}
	}

	for i, a := range s.Assertions {
		if !assertionTypes[a.Type] {
			return fmt.Errorf("assertion %d: unknown type %q", i+1, a.Type)
		}
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d (%s): %w", i+1, a.Type, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertExists, AssertAbsent:
		if a.ID == "" {
			return fmt.Errorf("id is required")
		}
	case AssertPosition:
		if a.ID == "" || a.X == nil || a.Y == nil {
			return fmt.Errorf("id, x and y are required")
		}
	case AssertText:
		if a.ID == "" || a.Text == nil {
			return fmt.Errorf("id and text are required")
		}
	case AssertFlagged, AssertLocked:
		if a.ID == "" || a.On == nil {
			return fmt.Errorf("id and on are required")
		}
	case AssertMemberOf:
		if a.ID == "" || a.Group == nil {
			return fmt.Errorf("id and group are required")
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("op is required")
		}
	}
	return nil
}
