package state

import (
	"errors"
	"testing"
)

func TestScenarioTableLoaded(t *testing.T) {
	want := []Scenario{ScenarioHighStress, ScenarioBalanced, ScenarioRecovery}
	defs := Scenarios()
	if len(defs) != len(want) {
		t.Fatalf("expected %d scenarios, got %d", len(want), len(defs))
	}
	for i, s := range want {
		if defs[i].ID != s {
			t.Errorf("scenario %d: expected %s, got %s", i, s, defs[i].ID)
		}
		if defs[i].Title == "" || defs[i].DefaultPreset == "" {
			t.Errorf("%s: missing title or default preset", s)
		}
		if defs[i].Confidence <= 0 || defs[i].Confidence > 1 {
			t.Errorf("%s: confidence %f out of (0, 1]", s, defs[i].Confidence)
		}
	}
}

func TestScenariosReturnsCopy(t *testing.T) {
	defs := Scenarios()
	defs[0].Title = "mutated"
	if Scenarios()[0].Title == "mutated" {
		t.Fatal("Scenarios must not expose the shared table")
	}
}

func TestHighStressBaselineShape(t *testing.T) {
	def := Definition(ScenarioHighStress)
	if def.Baseline != (Metrics{Load: 84, Readiness: 54, Consistency: 62}) {
		t.Errorf("unexpected high-stress baseline %v", def.Baseline)
	}
	if def.DriftPerDay.Load <= 0 {
		t.Error("high-stress scenario must drift load upward")
	}
	if Definition(ScenarioRecovery).DriftPerDay.Load >= 0 {
		t.Error("recovery scenario must drift load downward")
	}
}

func TestLookupUnknownScenario(t *testing.T) {
	_, err := LookupScenario("marathon_week")
	if !errors.Is(err, ErrUnknownScenario) {
		t.Fatalf("expected ErrUnknownScenario, got %v", err)
	}
	if Definition("marathon_week").ID != ScenarioBalanced {
		t.Error("Definition should fall back to the balanced day")
	}
	if Scenario("marathon_week").Valid() {
		t.Error("unknown scenario reported valid")
	}
}

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario("recovery_week")
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}
	if s != ScenarioRecovery {
		t.Errorf("expected recovery_week, got %s", s)
	}
	if _, err := ParseScenario(""); err == nil {
		t.Error("expected error for empty scenario")
	}
}

func TestParseScenariosRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "scenarios: []"},
		{"missing id", "scenarios:\n  - title: X"},
		{"duplicate", "scenarios:\n  - id: a\n  - id: a"},
		{"baseline range", "scenarios:\n  - id: a\n    baseline: {load: 120}"},
		{"malformed", "scenarios: ["},
	}
	for _, tt := range tests {
		if _, err := parseScenarios([]byte(tt.yaml)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestClampMetrics(t *testing.T) {
	tests := []struct {
		in, want Metrics
	}{
		{Metrics{-1, 50, 101}, Metrics{0, 50, 100}},
		{Metrics{0, 0, 0}, Metrics{0, 0, 0}},
		{Metrics{100, 100, 100}, Metrics{100, 100, 100}},
	}
	for _, tt := range tests {
		if got := ClampMetrics(tt.in); got != tt.want {
			t.Errorf("ClampMetrics(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if (Metrics{Load: -1}).InRange() {
		t.Error("negative load reported in range")
	}
}
