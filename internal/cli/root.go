// Package cli implements the bigo command line.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haskel/bigo/internal/config"
	"github.com/haskel/bigo/internal/executor"
	"github.com/haskel/bigo/internal/logger"
	"github.com/haskel/bigo/internal/monitor"
	"github.com/haskel/bigo/internal/storage"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string

	// Version info (set from main)
	Version = "0.1.0"
)

// newRunner builds the executor used by run and serve. Tests replace it.
var newRunner = defaultRunner

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bigo",
	Short: "Estimate the time complexity of registered functions",
	Long: `bigo measures a registered function at growing input sizes under a
time budget, fits every growth class to the measured ratios and reports
the class the running time converges to.

Each call runs in a child process so that runaway candidates can be killed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default $"+config.EnvPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json, pretty")
}

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}

// loadConfig loads the configuration and applies the global flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = logFormat
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}

// defaultRunner isolates every call in a child process and falls back to
// goroutines where that is not supported.
func defaultRunner(cfg *config.Config, log *slog.Logger) (executor.Runner, error) {
	p, err := executor.NewProcess(
		executor.WithPollInterval(cfg.PollInterval()),
		executor.WithLogger(log),
	)
	if errors.Is(err, executor.ErrUnsupported) {
		log.Warn("process isolation unsupported, running candidates in-process")
		return executor.InProcess{}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// newHost returns nil when the host check is disabled.
func newHost(cfg *config.Config, log *slog.Logger) *monitor.Host {
	if !cfg.Host.Check {
		return nil
	}
	return monitor.NewHost(
		monitor.DefaultMonitors(cfg.HostSample()),
		monitor.Limits{
			CPUPercent:    cfg.Host.CPUBusyPercent,
			MemoryPercent: cfg.Host.MemoryBusyPercent,
		},
		log,
	)
}

func newStore(cfg *config.Config, log *slog.Logger, host *monitor.Host) *storage.RunStore {
	var opts []storage.Option
	if host != nil {
		opts = append(opts, storage.WithHost(host))
	}
	return storage.New(cfg.Export.Dir, log, opts...)
}
