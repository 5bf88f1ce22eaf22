package racer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadLevel reads a level descriptor from disk. Files ending in .json are decoded as
// JSON; everything else is treated as YAML.
func LoadLevel(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file '%s': %w", path, err)
	}

	level, err := ParseLevel(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse level file '%s': %w", path, err)
	}
	return level, nil
}

// ParseLevel decodes a level descriptor and validates its regions.
func ParseLevel(data []byte, isJSON bool) (*Level, error) {
	level := &Level{}
	if isJSON {
		if err := json.Unmarshal(data, level); err != nil {
			return nil, err
		}
	} else {
		if err := yaml.Unmarshal(data, level); err != nil {
			return nil, err
		}
	}

	for i, g := range level.Goals {
		if g.Width <= 0 || g.Height <= 0 {
			return nil, fmt.Errorf("goal %d has non-positive size %gx%g", i, g.Width, g.Height)
		}
	}
	for i, o := range level.Obstacles {
		if o.Width <= 0 || o.Height <= 0 {
			return nil, fmt.Errorf("obstacle %d has non-positive size %gx%g", i, o.Width, o.Height)
		}
	}
	return level, nil
}
