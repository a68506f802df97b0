//go:build !tinygo

package config

import (
	"encoding/json"
	"fmt"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v2"
)

// LoadConfig parses a JSON configuration. Missing fields keep their
// DefaultConfig values.
func LoadConfig(jsonData []byte) (*LegConfig, error) {
	config := DefaultConfig()

	err := json.Unmarshal(jsonData, config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(config)

	return config, nil
}

// LoadYAML parses a YAML configuration. Missing fields keep their
// DefaultConfig values.
func LoadYAML(yamlData []byte) (*LegConfig, error) {
	config := DefaultConfig()

	err := yaml.Unmarshal(yamlData, config)
	if err != nil {
		return nil, err
	}

	applyDefaults(config)

	return config, nil
}

// ApplyEnv overrides fields from STRIDER_* environment variables,
// e.g. STRIDER_TICK_PERIOD_MS or STRIDER_HIP_CENTER_US.
func ApplyEnv(config *LegConfig) error {
	if err := env.Parse(config, env.Options{Prefix: "STRIDER_"}); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	applyDefaults(config)
	return nil
}
