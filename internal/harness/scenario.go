// Package harness runs YAML resolution scenarios end to end: seed a
// fixture database, resolve a plan, assert the outcome shape, and compare
// the emitted change-set against a golden file.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one YAML-defined resolution case.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Fixture is the seeded database the plan resolves against.
	Fixture string `yaml:"fixture"`

	// Plan is the mutation plan document. It is re-encoded as JSON and
	// pushed through the same schema validation as production input.
	Plan map[string]any `yaml:"plan"`

	// Expect asserts the outcome shape.
	Expect Expect `yaml:"expect"`

	// MaxRows overrides the engine row ceiling when positive.
	MaxRows int `yaml:"max_rows,omitempty"`
}

// Expect is the asserted shape of a scenario outcome.
type Expect struct {
	// Type is "change_set" or "clarification".
	Type string `yaml:"type"`

	// Reason matches the clarification reason, when Type is clarification.
	Reason string `yaml:"reason,omitempty"`

	// Tables maps table names to expected operation counts.
	Tables map[string]OpCounts `yaml:"tables,omitempty"`

	// SnapshotForms lists form ids the before snapshot must cover.
	SnapshotForms []string `yaml:"snapshot_forms,omitempty"`
}

// OpCounts is the expected number of rows per operation for one table.
type OpCounts struct {
	Insert int `yaml:"insert"`
	Update int `yaml:"update"`
	Delete int `yaml:"delete"`
}

// LoadScenario reads and parses one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	if sc.Fixture == "" {
		return nil, fmt.Errorf("scenario %s: missing fixture", path)
	}
	return &sc, nil
}
