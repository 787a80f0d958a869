// Package config provides YAML configuration loading, defaults, layered
// merging and validation for gitfleet.
package config

// Config is the root configuration. All optional fields are pointers to
// support merge semantics during configuration building.
type Config struct {
	Scan        ScanConfig        `yaml:"scan"`
	Batch       BatchConfig       `yaml:"batch"`
	Log         LogConfig         `yaml:"log"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// ScanConfig controls repository discovery.
type ScanConfig struct {
	MaxDepth *int     `yaml:"max-depth" validate:"required,min=1,max=50"`
	Parallel *bool    `yaml:"parallel" validate:"required"`
	SkipDirs []string `yaml:"skip-dirs" validate:"dive,required,excludesall=/\\"`
}

// BatchConfig controls multi-repository operations.
type BatchConfig struct {
	Concurrency *int `yaml:"concurrency" validate:"required,min=1,max=256"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  *string `yaml:"level" validate:"required,oneof=debug info warn warning error"`
	Format *string `yaml:"format" validate:"required,oneof=console json auto"`
}

// CredentialsConfig names the external credential helper command.
type CredentialsConfig struct {
	Helper *string `yaml:"helper" validate:"required"`
}

// MetricsConfig enables the Prometheus textfile export when Textfile is
// non-empty.
type MetricsConfig struct {
	Textfile *string `yaml:"textfile" validate:"required"`
}
