package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chriserin/rfl/internal/config"
	"github.com/chriserin/rfl/internal/version"
)

// ErrProblems makes the process exit non-zero when a check finds errors.
var ErrProblems = errors.New("problems found")

var (
	configPath string
	rfVersion  string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:           "rfl",
	Short:         "rfl — Robot Framework test data linter",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default .rfl.yaml or .rfl.toml in the current directory)")
	rootCmd.PersistentFlags().StringVar(&rfVersion, "rf-version", "", "Robot Framework version to validate against")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "text or json")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		if !errors.Is(err, ErrProblems) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Find(".")
	}
	if err != nil {
		return nil, err
	}

	if rfVersion != "" {
		if _, err := version.Parse(rfVersion); err != nil {
			return nil, fmt.Errorf("--rf-version: %w", err)
		}
		cfg.RobotVersion = rfVersion
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads config and builds the stderr logger every command shares.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
