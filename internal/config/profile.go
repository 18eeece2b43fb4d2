package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/futig/issue-assistant/internal/entity"
	"gopkg.in/yaml.v3"
)

// Profile describes the assistant: offered models and pipeline sizing.
// It is read from a YAML file and falls back to built-in defaults.
type Profile struct {
	Title       string   `yaml:"title"`
	Models      []string `yaml:"models"`
	SlideWindow int      `yaml:"slide_window"`
	SearchLimit int      `yaml:"search_limit"`
}

func defaultProfile() *Profile {
	return &Profile{
		Title:       "Software Issue Assistant",
		Models:      append([]string(nil), entity.DefaultModels...),
		SlideWindow: entity.DefaultSlideWindow,
		SearchLimit: 1,
	}
}

// LoadProfile reads the assistant profile. A missing file yields the defaults.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return defaultProfile(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("Warning: assistant profile not found at %s, using defaults\n", path)
			return defaultProfile(), nil
		}
		return nil, fmt.Errorf("read assistant profile: %w", err)
	}

	profile := defaultProfile()
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("parse assistant profile YAML: %w", err)
	}

	if len(profile.Models) == 0 {
		return nil, fmt.Errorf("assistant profile contains no models: %s", path)
	}

	return profile, nil
}
