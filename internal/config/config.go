// Package config loads process settings from WELLNESS_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
)

// Config is the CLI process configuration. Flags override it after Load.
type Config struct {
	DBPath   string `env:"WELLNESS_DB"        envDefault:"wellness.db"`
	Scenario string `env:"WELLNESS_SCENARIO"  envDefault:"balanced_day"`
	Day      int    `env:"WELLNESS_DAY"       envDefault:"0"` // 0 means the scenario default
	LogLevel string `env:"WELLNESS_LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"WELLNESS_LOG_JSON"  envDefault:"false"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse reads the environment without validating, for callers that apply overrides first.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the scenario id, day and db path.
func (c Config) Validate() error {
	if _, err := state.ParseScenario(c.Scenario); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Day < 0 {
		return fmt.Errorf("config: day must be >= 0, got %d", c.Day)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("config: db path is empty")
	}
	return nil
}

// ScenarioID returns the parsed scenario. Call after Validate.
func (c Config) ScenarioID() state.Scenario {
	s, err := state.ParseScenario(c.Scenario)
	if err != nil {
		return state.ScenarioBalanced
	}
	return s
}

// EffectiveDay resolves the 0 sentinel to the scenario's default day.
func (c Config) EffectiveDay() int {
	if c.Day > 0 {
		return c.Day
	}
	return state.Definition(c.ScenarioID()).DefaultDay
}
