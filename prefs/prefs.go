// Package prefs persists client-local preferences to a yaml file.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Preferences struct {
	DarkMode    bool    `yaml:"darkMode"`
	DefaultRoom string  `yaml:"defaultRoom"`
	Color       string  `yaml:"color"`
	Size        float64 `yaml:"size"`
}

func Defaults() Preferences {
	return Preferences{
		DefaultRoom: "default",
		Color:       "#000000",
		Size:        4,
	}
}

// Load reads preferences from path. A missing file is not an error: the
// defaults apply.
func Load(path string) (Preferences, error) {
	p := Defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return Defaults(), fmt.Errorf("parse preferences: %w", err)
	}
	return p, nil
}

// Save writes preferences to path, creating parent directories as needed.
func Save(path string, p Preferences) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
