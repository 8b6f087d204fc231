// Package config loads the YAML configuration for the poolctl CLI, in the
// same shape the teacher repo's internal/cli.Config uses: a struct with
// yaml tags, unmarshaled wholesale from a file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete poolctl configuration.
type Config struct {
	Worker struct {
		Count         int  `yaml:"count"`
		PanicRecovery bool `yaml:"panic_recovery"`
	} `yaml:"worker"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.Worker.Count = 4
	cfg.Metrics.Enabled = false
	cfg.Metrics.Port = 9090
	return cfg
}

// Load reads and parses a YAML config file. An empty path returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}

	if cfg.Worker.Count < 1 {
		return nil, fmt.Errorf("config %q: worker.count must be >= 1, got %d", path, cfg.Worker.Count)
	}

	return cfg, nil
}
