// Package config loads the project configuration file. All settings
// have working defaults; a missing loam.yaml means a default run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the project configuration file name.
const DefaultFile = "loam.yaml"

// Config is the project configuration.
type Config struct {
	// Sources lists harvester names in priority order: earlier sources
	// win contested fields during assembly.
	Sources []string `yaml:"sources"`

	// Cache is the path of the harvest cache database.
	Cache string `yaml:"cache"`

	// Vocabularies adds prefix-to-IRI terms to the assembled
	// document's base context.
	Vocabularies map[string]string `yaml:"vocabularies"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Sources: []string{"cff", "codemeta"},
		Cache:   ".loam/cache.db",
	}
}

// Load reads a configuration file, filling unset fields from the
// defaults. A missing file yields the defaults, not an error.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	def := Default()
	if len(cfg.Sources) == 0 {
		cfg.Sources = def.Sources
	}
	if cfg.Cache == "" {
		cfg.Cache = def.Cache
	}
	return cfg, nil
}
