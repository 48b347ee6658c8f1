package state

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnknownScenario is returned when a scenario id is not in the table.
var ErrUnknownScenario = errors.New("unknown scenario")

//go:embed scenarios.yaml
var scenariosYAML []byte

// #region catalog

type scenarioFile struct {
	Scenarios []ScenarioDefinition `yaml:"scenarios"`
}

// catalog is parsed once at init; the table is immutable afterwards.
var catalog = mustParseScenarios(scenariosYAML)

func parseScenarios(data []byte) ([]ScenarioDefinition, error) {
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, errors.New("parse scenarios: empty table")
	}
	seen := make(map[Scenario]bool, len(f.Scenarios))
	for _, def := range f.Scenarios {
		if def.ID == "" {
			return nil, errors.New("parse scenarios: missing id")
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("parse scenarios: duplicate id %q", def.ID)
		}
		if !def.Baseline.InRange() {
			return nil, fmt.Errorf("parse scenarios: %s baseline out of range", def.ID)
		}
		seen[def.ID] = true
	}
	return f.Scenarios, nil
}

func mustParseScenarios(data []byte) []ScenarioDefinition {
	defs, err := parseScenarios(data)
	if err != nil {
		panic(err)
	}
	return defs
}

// #endregion catalog

// #region lookup

// Scenarios returns a copy of the scenario table in declaration order.
func Scenarios() []ScenarioDefinition {
	out := make([]ScenarioDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// LookupScenario returns the definition for s.
func LookupScenario(s Scenario) (ScenarioDefinition, error) {
	for _, def := range catalog {
		if def.ID == s {
			return def, nil
		}
	}
	return ScenarioDefinition{}, fmt.Errorf("%w: %q", ErrUnknownScenario, s)
}

// Definition returns the definition for s, or the balanced day for ids outside the table.
// Engines use this so an unrecognized scenario never panics.
func Definition(s Scenario) ScenarioDefinition {
	if def, err := LookupScenario(s); err == nil {
		return def
	}
	def, _ := LookupScenario(ScenarioBalanced)
	return def
}

// ParseScenario validates a scenario id from user input.
func ParseScenario(raw string) (Scenario, error) {
	s := Scenario(raw)
	if _, err := LookupScenario(s); err != nil {
		return "", err
	}
	return s, nil
}

// Valid reports whether s is in the table.
func (s Scenario) Valid() bool {
	_, err := LookupScenario(s)
	return err == nil
}

// #endregion lookup
