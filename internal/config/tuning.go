package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTuning reads the optional YAML tuning file. An empty path means
// defaults; a missing or malformed file is an error so a committee
// never runs on silently wrong cut-points.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("reading tuning file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parsing tuning file %s: %w", path, err)
	}
	t.Score.Weights = t.Score.Weights.Normalize()
	return t, nil
}
