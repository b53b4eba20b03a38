package main

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/rgli/riegeli/internal/logging"
)

// Config holds riegelicat's optional on-disk settings. None of them has a
// command-line flag: they are set only through the config file, or left
// at the values DefaultConfig returns.
type Config struct {
	// Format selects how record payloads are rendered: "text" or "hex".
	Format string `yaml:"format"`
	// GlobPattern matches file names within a directory argument.
	GlobPattern string `yaml:"glob_pattern"`
	// Logging controls the level passed to logging.Init.
	Logging logging.Config `yaml:"logging"`
}

// DefaultConfig returns riegelicat's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Format:      "text",
		GlobPattern: "*.rec",
		Logging:     logging.Config{Level: zapcore.InfoLevel},
	}
}

// LoadConfig loads a YAML config from path, layered over DefaultConfig.
// An empty path is not an error: riegelicat runs fine on defaults alone.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}
	return cfg, nil
}
