package recommend

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

type presetsFile struct {
	Presets []Preset `yaml:"presets"`
}

var catalog = mustParsePresets(presetsYAML)

func parsePresets(data []byte) ([]Preset, error) {
	var f presetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if len(f.Presets) == 0 {
		return nil, errors.New("parse presets: empty catalog")
	}
	seen := make(map[string]bool, len(f.Presets))
	for _, p := range f.Presets {
		if p.ID == "" {
			return nil, errors.New("parse presets: preset without id")
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("parse presets: duplicate id %q", p.ID)
		}
		if p.DurationMinutes <= 0 {
			return nil, fmt.Errorf("parse presets: %s: non-positive duration", p.ID)
		}
		seen[p.ID] = true
	}
	return f.Presets, nil
}

func mustParsePresets(data []byte) []Preset {
	p, err := parsePresets(data)
	if err != nil {
		panic(err)
	}
	return p
}

// Presets returns a copy of the built-in catalog in file order.
func Presets() []Preset {
	out := make([]Preset, len(catalog))
	copy(out, catalog)
	return out
}

// LookupPreset finds a preset by id in the built-in catalog.
func LookupPreset(id string) (Preset, bool) {
	return findPreset(catalog, id)
}

func findPreset(presets []Preset, id string) (Preset, bool) {
	for _, p := range presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}
