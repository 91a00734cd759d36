package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: a tender lifecycle expressed as a
// sequence of ledger operations with optional expectations on each step.
type Scenario struct {
	// Name uniquely identifies the scenario; golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Golden marks scenarios whose final journal is compared against a
	// golden file in testdata.
	Golden bool `yaml:"golden,omitempty"`

	// Steps run in order against a fresh engine.
	Steps []Step `yaml:"steps"`
}

// Step is one ledger operation. Op selects the operation; the remaining
// fields are its arguments (only those relevant to the op are read).
type Step struct {
	Op          string   `yaml:"op"` // issue | spend | verify | redeem | return | summary
	Tender      string   `yaml:"tender"`
	Contractor  string   `yaml:"contractor,omitempty"`
	Value       float64  `yaml:"value,omitempty"`
	Scope       []string `yaml:"scope,omitempty"`
	Amount      float64  `yaml:"amount,omitempty"`
	Category    string   `yaml:"category,omitempty"`
	Milestone   string   `yaml:"milestone,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Score       float64  `yaml:"score,omitempty"`

	// Expect validates the step outcome. Nil means the step must simply
	// succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
//
// Error and Kind apply to operation steps; the remaining fields apply to
// summary steps. All checks are subset checks: unset fields are not
// validated.
type Expect struct {
	// Error is the expected ledger error code (e.g. "INSUFFICIENT_BALANCE").
	Error string `yaml:"error,omitempty"`

	// Kind is the expected resulting record kind, e.g. "TOKENS_RETURNED"
	// where a redeem degrades to a return.
	Kind string `yaml:"kind,omitempty"`

	Remaining  *float64 `yaml:"remaining,omitempty"`
	TotalSpent *float64 `yaml:"total_spent,omitempty"`
	Status     string   `yaml:"status,omitempty"`
	Outcome    string   `yaml:"outcome,omitempty"`
}

// ValidOps is the closed set of scenario operations.
var ValidOps = map[string]bool{
	"issue":   true,
	"spend":   true,
	"verify":  true,
	"redeem":  true,
	"return":  true,
	"summary": true,
}

// LoadScenario parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("load scenario %s: missing name", path)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("load scenario %s: no steps", path)
	}
	for i, step := range s.Steps {
		if !ValidOps[step.Op] {
			return nil, fmt.Errorf("load scenario %s: step %d: unknown op %q", path, i+1, step.Op)
		}
		if step.Tender == "" {
			return nil, fmt.Errorf("load scenario %s: step %d: missing tender", path, i+1)
		}
	}
	return &s, nil
}

// LoadScenarios parses every *.yaml scenario in a directory, sorted by file
// name for stable test ordering.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
