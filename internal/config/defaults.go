package config

import (
	"runtime"

	"github.com/samber/lo"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/credential"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/scanner"
)

// DefaultFileNames are searched, in order, in the working directory.
var DefaultFileNames = []string{".gitfleet.yml", "gitfleet.yml"}

// CreateDefaultConfiguration returns a Config with every field populated.
func CreateDefaultConfiguration() *Config {
	return &Config{
		Scan: ScanConfig{
			MaxDepth: lo.ToPtr(scanner.DefaultMaxDepth),
			Parallel: lo.ToPtr(true),
		},
		Batch: BatchConfig{
			Concurrency: lo.ToPtr(min(runtime.NumCPU(), 256)),
		},
		Log: LogConfig{
			Level:  lo.ToPtr("info"),
			Format: lo.ToPtr("auto"),
		},
		Credentials: CredentialsConfig{
			Helper: lo.ToPtr(credential.DefaultHelper.String()),
		},
		Metrics: MetricsConfig{
			Textfile: lo.ToPtr(""),
		},
	}
}
