package signals

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
	"gopkg.in/yaml.v3"
)

const minutesPerDay = 24 * 60

//go:embed profiles.yaml
var profilesYAML []byte

// #region table-types

// episodeTemplate describes one stress episode emitted from FromDay onwards.
type episodeTemplate struct {
	Label           string  `yaml:"label"`
	OffsetMinutes   int     `yaml:"offset_minutes"`
	DurationMinutes int     `yaml:"duration_minutes"`
	Peak            float64 `yaml:"peak"`
	PeakPerDay      float64 `yaml:"peak_per_day"`
	FromDay         int     `yaml:"from_day"`
}

// segmentTemplate is one consecutive timeline block.
type segmentTemplate struct {
	Label   string `yaml:"label"`
	Minutes int    `yaml:"minutes"`
}

// profileTable is the generation data for one scenario.
type profileTable struct {
	Episodes []episodeTemplate `yaml:"episodes"`
	Timeline []segmentTemplate `yaml:"timeline"`
}

type profilesFile struct {
	Profiles map[state.Scenario]profileTable `yaml:"profiles"`
}

// #endregion table-types

// #region load

var tables = mustParseTables(profilesYAML)

func parseTables(data []byte) (map[state.Scenario]profileTable, error) {
	var f profilesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	if len(f.Profiles) == 0 {
		return nil, errors.New("parse profiles: empty table")
	}
	for scenario, t := range f.Profiles {
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("parse profiles: %s: %w", scenario, err)
		}
	}
	return f.Profiles, nil
}

func mustParseTables(data []byte) map[state.Scenario]profileTable {
	t, err := parseTables(data)
	if err != nil {
		panic(err)
	}
	return t
}

// validate enforces the ordering invariants at load time so generation never has to.
func (t profileTable) validate() error {
	if len(t.Episodes) == 0 {
		return errors.New("no episode templates")
	}
	if t.Episodes[0].FromDay != 0 {
		return errors.New("first episode must be emitted from day 0")
	}
	prevEnd := 0
	for i, e := range t.Episodes {
		if e.DurationMinutes <= 0 {
			return fmt.Errorf("episode %d: non-positive duration", i)
		}
		if e.OffsetMinutes < prevEnd {
			return fmt.Errorf("episode %d: overlaps or precedes previous episode", i)
		}
		prevEnd = e.OffsetMinutes + e.DurationMinutes
		if prevEnd > minutesPerDay {
			return fmt.Errorf("episode %d: ends after midnight", i)
		}
	}

	total := 0
	for i, s := range t.Timeline {
		if s.Minutes <= 0 {
			return fmt.Errorf("segment %d: non-positive length", i)
		}
		total += s.Minutes
	}
	if total != minutesPerDay {
		return fmt.Errorf("timeline covers %d minutes, want %d", total, minutesPerDay)
	}
	return nil
}

// tableFor returns the generation table for scenario, falling back like state.Definition.
func tableFor(scenario state.Scenario) profileTable {
	if t, ok := tables[scenario]; ok {
		return t
	}
	return tables[state.Definition(scenario).ID]
}

// #endregion load
