package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, 10, cfg.FileLimit)
	assert.Equal(t, 50, cfg.LineLimit)
	assert.Equal(t, "codedigest.md", cfg.DigestPath)
	assert.Equal(t, "codedigest-report.md", cfg.ReportPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Contains(t, cfg.Extensions, ".go")
	assert.Contains(t, cfg.Extensions, ".js")
	assert.Contains(t, cfg.Extensions, ".py")
	assert.Contains(t, cfg.IgnoreDirs, ".git")
	assert.Contains(t, cfg.IgnoreDirs, "node_modules")
	assert.Empty(t, cfg.IgnorePatterns)
	assert.True(t, cfg.History.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigMergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
root: ./src
file_limit: 25
analyzer:
  command: gemini
  prompt: "find the bugs"
  timeout: 5m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./src", cfg.Root)
	assert.Equal(t, 25, cfg.FileLimit)
	assert.Equal(t, "gemini", cfg.Analyzer.Command)
	assert.Equal(t, "find the bugs", cfg.Analyzer.Prompt)
	assert.Equal(t, 5*time.Minute, cfg.Analyzer.Timeout)
	// Custom command does not inherit the default command's args
	assert.Empty(t, cfg.Analyzer.Args)

	// Untouched keys keep defaults
	assert.Equal(t, 50, cfg.LineLimit)
	assert.Equal(t, "codedigest.md", cfg.DigestPath)
	assert.Contains(t, cfg.IgnoreDirs, "node_modules")
}

func TestLoadConfigHistorySection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
history:
  enabled: false
  db_path: /tmp/runs.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "/tmp/runs.db", cfg.History.DBPath)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigInvalidTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
analyzer:
  command: claude
  timeout: five minutes
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, DefaultConfigDir)
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	content := "line_limit: 80\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(content), 0644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.LineLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty root",
			mutate:  func(c *Config) { c.Root = "" },
			wantErr: "root",
		},
		{
			name:    "zero file limit",
			mutate:  func(c *Config) { c.FileLimit = 0 },
			wantErr: "file_limit",
		},
		{
			name:    "negative line limit",
			mutate:  func(c *Config) { c.LineLimit = -1 },
			wantErr: "line_limit",
		},
		{
			name:    "empty analyzer command",
			mutate:  func(c *Config) { c.Analyzer.Command = "" },
			wantErr: "command",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Analyzer.Timeout = -time.Second },
			wantErr: "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
