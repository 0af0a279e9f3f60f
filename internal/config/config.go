package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/blackwell-systems/lodescan/internal/rules"
	"github.com/blackwell-systems/lodescan/internal/scanner"
)

// Config is the top-level lodescan configuration.
type Config struct {
	Threads            int           `mapstructure:"threads"`
	Obfuscate          bool          `mapstructure:"obfuscate"`
	OutputDir          string        `mapstructure:"output_dir"`
	LargeFileThreshold int64         `mapstructure:"large_file_threshold"`
	MaxReadBytes       int64         `mapstructure:"max_read_bytes"`
	BatchTimeout       time.Duration `mapstructure:"batch_timeout"`
	TopFindings        int           `mapstructure:"top_findings"`
	Dashboard          bool          `mapstructure:"dashboard"`
	RulesFile          string        `mapstructure:"rules_file"`
	LogLevel           string        `mapstructure:"log_level"`
	Output             Output        `mapstructure:"output"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. Values from a .env file in
// the working directory and LODESCAN_* environment variables take precedence
// over the file.
func Load(cfgFile string) (*Config, error) {
	if err := loadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetDefault("threads", scanner.DefaultThreads)
	v.SetDefault("obfuscate", false)
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("large_file_threshold", rules.DefaultLargeFileThreshold)
	v.SetDefault("max_read_bytes", DefaultMaxReadBytes)
	v.SetDefault("batch_timeout", DefaultBatchTimeout)
	v.SetDefault("top_findings", DefaultTopFindings)
	v.SetDefault("dashboard", true)
	v.SetDefault("rules_file", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("output.color", DefaultOutput.Color)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Missing config file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.OutputDir = expandPath(cfg.OutputDir)
	cfg.RulesFile = expandPath(cfg.RulesFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the scanner cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Threads < 1:
		return fmt.Errorf("threads must be at least 1, got %d", c.Threads)
	case c.LargeFileThreshold < 0:
		return fmt.Errorf("large_file_threshold must not be negative")
	case c.MaxReadBytes < 0:
		return fmt.Errorf("max_read_bytes must not be negative")
	case c.BatchTimeout < 0:
		return fmt.Errorf("batch_timeout must not be negative")
	case c.TopFindings < 0:
		return fmt.Errorf("top_findings must not be negative")
	case c.OutputDir == "":
		return fmt.Errorf("output_dir must not be empty")
	}
	return nil
}

// loadEnvFile exports the variables in path without overriding ones already
// set in the environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
