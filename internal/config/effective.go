package config

// EffectiveConfiguration is a fully resolved configuration with every
// field guaranteed to have a value.
type EffectiveConfiguration struct {
	MaxDepth         int
	Parallel         bool
	SkipDirs         []string
	Concurrency      int
	LogLevel         string
	LogFormat        string
	CredentialHelper string
	MetricsTextfile  string
}

// NewEffectiveConfiguration resolves all pointer fields of cfg, falling
// back to defaults for anything unset.
func NewEffectiveConfiguration(cfg *Config) EffectiveConfiguration {
	def := CreateDefaultConfiguration()
	return EffectiveConfiguration{
		MaxDepth:         deref(cfg.Scan.MaxDepth, *def.Scan.MaxDepth),
		Parallel:         deref(cfg.Scan.Parallel, *def.Scan.Parallel),
		SkipDirs:         append([]string(nil), cfg.Scan.SkipDirs...),
		Concurrency:      deref(cfg.Batch.Concurrency, *def.Batch.Concurrency),
		LogLevel:         deref(cfg.Log.Level, *def.Log.Level),
		LogFormat:        deref(cfg.Log.Format, *def.Log.Format),
		CredentialHelper: deref(cfg.Credentials.Helper, *def.Credentials.Helper),
		MetricsTextfile:  deref(cfg.Metrics.Textfile, *def.Metrics.Textfile),
	}
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
