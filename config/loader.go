package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and initial parsing of the Config from a file.
type Loader struct {
	filePath string
}

// NewLoader creates a new configuration loader for the given file path.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and unmarshals the configuration file. A missing homeDir
// defaults to the directory holding the file. Defaulting and validation are
// handled separately.
func (l *Loader) Load() (*Config, error) {
	if l.filePath == "" {
		return nil, fmt.Errorf("configuration file path is empty")
	}
	content, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", l.filePath, err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("configuration file '%s' is empty", l.filePath)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML from '%s': %w", l.filePath, err)
	}
	if cfg.HomeDir == "" {
		cfg.HomeDir = filepath.Dir(l.filePath)
	} else if !filepath.IsAbs(cfg.HomeDir) {
		cfg.HomeDir = filepath.Join(filepath.Dir(l.filePath), cfg.HomeDir)
	}
	return &cfg, nil
}

// Load reads path, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.SetDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
