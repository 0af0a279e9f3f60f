// Package app contains the Cobra command tree for lodescan.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/lodescan/internal/config"
	"github.com/blackwell-systems/lodescan/internal/logger"
	"github.com/blackwell-systems/lodescan/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor  bool
	flagJSON     bool
	flagVerbose  bool
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "lodescan",
	Short: "Concurrent directory discovery scanner",
	Long: `lodescan walks a directory tree in parallel batches, classifies every
file by name and extension, scores text content against a pattern table and
writes a JSON discovery report plus an HTML dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagNoColor {
			output.SetNoColor(true)
		}
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/lodescan/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error (default from config)")
}

// loadConfig reads the configuration and applies its output preferences.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Output.Color {
		output.SetNoColor(true)
	}
	return cfg, nil
}

// newLogger builds the stderr logger. --log-level beats --verbose, which
// beats the configured level.
func newLogger(cfg *config.Config) *logger.ConsoleLogger {
	level := logger.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	if flagLogLevel != "" {
		level = logger.ParseLevel(flagLogLevel)
	}
	return logger.New(os.Stderr, level)
}
