package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/config"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/logging"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/output"
	"github.com/MyCarrier-DevOps/go-gitfleet/pkg/gitfleet"
)

// Global flags shared across commands.
var (
	flagConfig          string
	flagLogLevel        string
	flagLogFormat       string
	flagOutput          string
	flagConcurrency     int
	flagMetricsTextfile string
)

// rootCmd is the top-level command for gitfleet.
var rootCmd = &cobra.Command{
	Use:   "gitfleet",
	Short: "Manage many local git repositories at once",
	Long: `gitfleet discovers git repositories below a directory, reports their
state against their remotes and runs commit, push, fetch, pull and discard
across any number of them in parallel.

Commands taking several paths report the paths that succeeded and exit
with status 1 when any path failed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default: $GITFLEET_CONFIG, .gitfleet.yml or gitfleet.yml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: console, json, auto")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "output format: json or text")
	rootCmd.PersistentFlags().IntVar(&flagConcurrency, "concurrency", 0, "maximum repositories processed at once")
	rootCmd.PersistentFlags().StringVar(&flagMetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the command")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// errPartial reports the paths a multi-path command could not process.
type errPartial struct {
	operation string
	failed    []string
}

func (e *errPartial) Error() string {
	return fmt.Sprintf("%s failed for %d repositories: %s",
		e.operation, len(e.failed), strings.Join(e.failed, ", "))
}

// app is everything a command needs, built from flags and configuration.
type app struct {
	cfg      config.EffectiveConfiguration
	logger   *zap.Logger
	client   *gitfleet.Client
	printer  *output.Printer
	textfile string
}

// loadConfig layers defaults, the config file, GITFLEET_* variables and
// explicitly set flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	builder := config.NewBuilder()

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	path, err := config.Find(flagConfig, wd, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if path != "" {
		fileCfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		builder.Add(fileCfg)
	}

	builder.Add(config.FromEnv(os.LookupEnv))
	builder.Add(flagOverrides(cmd))

	return builder.Build()
}

// flagOverrides returns a Config holding only the flags the user set.
func flagOverrides(cmd *cobra.Command) *config.Config {
	var cfg config.Config
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = lo.ToPtr(flagLogLevel)
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = lo.ToPtr(flagLogFormat)
	}
	if flags.Changed("concurrency") {
		cfg.Batch.Concurrency = lo.ToPtr(flagConcurrency)
	}
	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = lo.ToPtr(flagMetricsTextfile)
	}
	if flags.Lookup("max-depth") != nil && flags.Changed("max-depth") {
		cfg.Scan.MaxDepth = lo.ToPtr(flagMaxDepth)
	}
	if flags.Lookup("sequential") != nil && flags.Changed("sequential") {
		cfg.Scan.Parallel = lo.ToPtr(!flagSequential)
	}
	return &cfg
}

func newApp(cmd *cobra.Command) (*app, error) {
	format, err := output.ParseFormat(flagOutput)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	ec := config.NewEffectiveConfiguration(cfg)

	logger, err := logging.New(ec.LogLevel, ec.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	client := gitfleet.New(gitfleet.Options{
		Logger:           logger,
		Concurrency:      ec.Concurrency,
		MaxDepth:         ec.MaxDepth,
		SkipDirs:         ec.SkipDirs,
		Sequential:       !ec.Parallel,
		CredentialHelper: ec.CredentialHelper,
		Metrics:          ec.MetricsTextfile != "",
	})

	return &app{
		cfg:      ec,
		logger:   logger,
		client:   client,
		printer:  output.NewPrinter(cmd.OutOrStdout(), format),
		textfile: ec.MetricsTextfile,
	}, nil
}

// run adapts a command body to cobra. Metrics are written even when the
// body fails.
func run(fn func(a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.logger.Sync() }()

		runErr := fn(a, args)
		if a.textfile != "" {
			if err := a.client.WriteMetrics(a.textfile); err != nil {
				a.logger.Error("writing metrics textfile",
					zap.String("path", a.textfile),
					zap.Error(err))
				runErr = errors.Join(runErr, fmt.Errorf("writing metrics: %w", err))
			}
		}
		return runErr
	}
}

// finish prints the succeeded paths and reports the rest as failed.
func (a *app) finish(operation string, requested, succeeded []string) error {
	if err := a.printer.Paths(succeeded); err != nil {
		return err
	}
	failed, _ := lo.Difference(lo.Uniq(requested), succeeded)
	if len(failed) > 0 {
		return &errPartial{operation: operation, failed: failed}
	}
	return nil
}
