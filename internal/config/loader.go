package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when no path is given.
const EnvPath = "BIGO_CONFIG"

func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	data = substituteEnvVars(data)

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or the file named by BIGO_CONFIG when path is
// empty. Without either it returns the defaults. A file that exists but
// cannot be loaded is an error.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
