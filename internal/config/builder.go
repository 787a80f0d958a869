package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Builder constructs a Config by layering overrides on top of defaults.
type Builder struct {
	overrides []*Config
}

// NewBuilder creates a new configuration builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add adds a configuration override. Overrides are applied in order:
// later overrides take precedence over earlier ones.
func (b *Builder) Add(override *Config) *Builder {
	if override != nil {
		b.overrides = append(b.overrides, override)
	}
	return b
}

// Build starts from defaults, applies all overrides and validates the
// result.
func (b *Builder) Build() (*Config, error) {
	cfg := CreateDefaultConfiguration()

	for _, override := range b.overrides {
		mergeConfig(cfg, override)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfig applies non-nil fields from src to dst. Skip directories
// accumulate.
func mergeConfig(dst, src *Config) {
	if src.Scan.MaxDepth != nil {
		dst.Scan.MaxDepth = src.Scan.MaxDepth
	}
	if src.Scan.Parallel != nil {
		dst.Scan.Parallel = src.Scan.Parallel
	}
	dst.Scan.SkipDirs = append(dst.Scan.SkipDirs, src.Scan.SkipDirs...)

	if src.Batch.Concurrency != nil {
		dst.Batch.Concurrency = src.Batch.Concurrency
	}

	if src.Log.Level != nil {
		dst.Log.Level = src.Log.Level
	}
	if src.Log.Format != nil {
		dst.Log.Format = src.Log.Format
	}

	if src.Credentials.Helper != nil {
		dst.Credentials.Helper = src.Credentials.Helper
	}

	if src.Metrics.Textfile != nil {
		dst.Metrics.Textfile = src.Metrics.Textfile
	}
}

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML key.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}

// describe renders one failed rule against the dotted YAML key, e.g.
// "scan.max-depth must be at most 50".
func describe(fe validator.FieldError) string {
	_, key, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", key, fe.Param(), fe.Value())
	case "excludesall":
		return fmt.Sprintf("%s must be a directory name, got %q", key, fe.Value())
	default:
		return fmt.Sprintf("%s failed %q", key, fe.Tag())
	}
}
