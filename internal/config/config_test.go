package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/lodescan/internal/rules"
	"github.com/blackwell-systems/lodescan/internal/scanner"
)

// isolate points HOME and the working directory at empty temp dirs so the
// developer's own config never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, scanner.DefaultThreads, cfg.Threads)
	assert.False(t, cfg.Obfuscate)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, rules.DefaultLargeFileThreshold, cfg.LargeFileThreshold)
	assert.Equal(t, DefaultMaxReadBytes, cfg.MaxReadBytes)
	assert.Equal(t, time.Duration(0), cfg.BatchTimeout)
	assert.Equal(t, DefaultTopFindings, cfg.TopFindings)
	assert.True(t, cfg.Dashboard)
	assert.Empty(t, cfg.RulesFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Output.Color)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, `
threads: 8
obfuscate: true
output_dir: /tmp/out
batch_timeout: 30s
top_findings: 25
dashboard: false
output:
  color: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Threads)
	assert.True(t, cfg.Obfuscate)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, 30*time.Second, cfg.BatchTimeout)
	assert.Equal(t, 25, cfg.TopFindings)
	assert.False(t, cfg.Dashboard)
	assert.False(t, cfg.Output.Color)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultMaxReadBytes, cfg.MaxReadBytes)
}

func TestLoad_DefaultLocation(t *testing.T) {
	isolate(t)
	dir := ConfigDir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeFile(t, filepath.Join(dir, DefaultConfigFile), "threads: 2\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Threads)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "threads: 8\n")
	t.Setenv("LODESCAN_THREADS", "3")
	t.Setenv("LODESCAN_OUTPUT_COLOR", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Threads)
	assert.False(t, cfg.Output.Color)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := isolate(t)
	// Register cleanup for the variable godotenv is about to export.
	t.Setenv("LODESCAN_TOP_FINDINGS", "")
	require.NoError(t, os.Unsetenv("LODESCAN_TOP_FINDINGS"))
	writeFile(t, filepath.Join(dir, DefaultEnvFile), "LODESCAN_TOP_FINDINGS=3\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TopFindings)
}

func TestLoad_ExpandsHome(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "output_dir: ~/reports\nrules_file: ~/rules.yaml\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "reports"), cfg.OutputDir)
	assert.Equal(t, filepath.Join(home, "rules.yaml"), cfg.RulesFile)
}

func TestLoad_MissingExplicitFileIsNotAnError(t *testing.T) {
	dir := isolate(t)
	cfg, err := Load(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, scanner.DefaultThreads, cfg.Threads)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "threads: [unclosed\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "threads: 0\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "threads")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Threads: 1, OutputDir: "out"}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "valid", mutate: func(*Config) {}, ok: true},
		{name: "zero threads", mutate: func(c *Config) { c.Threads = 0 }},
		{name: "negative threshold", mutate: func(c *Config) { c.LargeFileThreshold = -1 }},
		{name: "negative max read", mutate: func(c *Config) { c.MaxReadBytes = -1 }},
		{name: "negative timeout", mutate: func(c *Config) { c.BatchTimeout = -time.Second }},
		{name: "negative top", mutate: func(c *Config) { c.TopFindings = -1 }},
		{name: "empty output dir", mutate: func(c *Config) { c.OutputDir = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester/x", expandPath("~/x"))
	assert.Equal(t, "/abs/x", expandPath("/abs/x"))
	assert.Equal(t, "rel", expandPath("rel"))
}
