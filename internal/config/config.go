// Package config loads the engine and persistence configuration the CLI
// workbench needs to construct a belief system and its storage adapter.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/logic-fabricator/fabricator/internal/fork"
)

// EngineConfig tunes the belief-system façade: resource limits and the
// default forking strategy new belief systems are created with.
type EngineConfig struct {
	FactLimit       int    `yaml:"fact_limit"`
	TensionHopLimit int    `yaml:"tension_hop_limit"`
	DefaultStrategy string `yaml:"default_strategy"`
}

// DefaultEngineConfig returns sensible defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		FactLimit:       1000000,
		TensionHopLimit: 1,
		DefaultStrategy: string(fork.Coexist),
	}
}

// Validate reports a configuration error without mutating any state.
func (c EngineConfig) Validate() error {
	if c.FactLimit < 1 {
		return fmt.Errorf("fact_limit must be >= 1")
	}
	if c.TensionHopLimit < 0 {
		return fmt.Errorf("tension_hop_limit must be >= 0")
	}
	if _, err := fork.Parse(c.DefaultStrategy); err != nil {
		return fmt.Errorf("default_strategy: %w", err)
	}
	return nil
}

// PersistenceConfig configures the sqlite-backed reference DatabaseAdapter.
type PersistenceConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// DefaultPersistenceConfig returns sensible defaults.
func DefaultPersistenceConfig() PersistenceConfig {
	return PersistenceConfig{SQLitePath: "fabricator.db"}
}

// Config is the top-level configuration document the CLI loads.
type Config struct {
	Engine      EngineConfig      `yaml:"engine"`
	Persistence PersistenceConfig `yaml:"persistence"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine:      DefaultEngineConfig(),
		Persistence: DefaultPersistenceConfig(),
	}
}

// Load reads a YAML config file at path, falling back to defaults if the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
