// Package config provides configuration loading and defaults for lodescan.
package config

import "time"

// DefaultConfigDir is the default location for lodescan configuration.
const DefaultConfigDir = "~/.config/lodescan"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultEnvFile is loaded from the working directory when present.
const DefaultEnvFile = ".env"

// EnvPrefix is the prefix for environment variable overrides, e.g.
// LODESCAN_THREADS=8.
const EnvPrefix = "LODESCAN"

// DefaultOutputDir is where reports and dashboards are written.
const DefaultOutputDir = "./reports"

// DefaultMaxReadBytes caps how much of one file the scorer reads.
const DefaultMaxReadBytes int64 = 64 * 1024 * 1024

// DefaultBatchTimeout of zero disables the per-batch deadline.
const DefaultBatchTimeout time.Duration = 0

// DefaultTopFindings is how many findings the report lists in full.
const DefaultTopFindings = 10

// DefaultLogLevel is the console log level.
const DefaultLogLevel = "info"

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
}
