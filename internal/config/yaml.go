// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SearchPaths are tried in order when LoadConfig is given an empty path.
var SearchPaths = []string{"tuner.yaml", "config.yaml"}

// LoadConfig loads configuration from the YAML file at path. If path is
// empty, SearchPaths are tried; if none exists the built-in defaults are
// used. Fields missing from the file keep their defaults. The result is
// validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range SearchPaths {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
}

// Marshal renders cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
