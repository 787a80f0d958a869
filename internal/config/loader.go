package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv and Find.
const (
	EnvConfig    = "GITFLEET_CONFIG"
	EnvLogLevel  = "GITFLEET_LOG_LEVEL"
	EnvLogFormat = "GITFLEET_LOG_FORMAT"
)

// LoadFromFile reads and parses a gitfleet configuration file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromBytes parses gitfleet configuration from raw YAML bytes. Unknown
// keys are rejected.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Find returns the configuration file to load: explicit when set, then
// $GITFLEET_CONFIG, then the first of DefaultFileNames present in dir. An
// explicit or environment path must exist; an empty result means no file.
func Find(explicit, dir string, lookupEnv func(string) (string, bool)) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}

	if v, ok := lookupEnv(EnvConfig); ok && strings.TrimSpace(v) != "" {
		if _, err := os.Stat(v); err != nil {
			return "", fmt.Errorf("config file from %s: %w", EnvConfig, err)
		}
		return v, nil
	}

	for _, name := range DefaultFileNames {
		candidate := filepath.Join(dir, name)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// FromEnv builds an override layer from GITFLEET_* variables.
func FromEnv(lookupEnv func(string) (string, bool)) *Config {
	var cfg Config
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = &v
	}
	if v, ok := lookupEnv(EnvLogFormat); ok && v != "" {
		cfg.Log.Format = &v
	}
	return &cfg
}
