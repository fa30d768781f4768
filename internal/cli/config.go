package cli

import (
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"
)

// Config holds REPL settings loaded from an optional YAML file
// (~/.bake.yaml by default).
type Config struct {
	HistoryFile string `yaml:"history_file"`
	MaxHistory  int    `yaml:"max_history"`
	Prompt      string `yaml:"prompt"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		HistoryFile: filepath.Join(home, ".bake_history"),
		MaxHistory:  1000,
		Prompt:      "ready> ",
	}
}

// LoadConfig loads configuration from path, falling back to ~/.bake.yaml
// when path is empty. A missing file yields the defaults; a malformed one
// is an error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return config, nil
		}
		path = filepath.Join(home, ".bake.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.MaxHistory <= 0 {
		config.MaxHistory = DefaultConfig().MaxHistory
	}
	if config.Prompt == "" {
		config.Prompt = DefaultConfig().Prompt
	}
	return config, nil
}
