// Package config loads codedigest configuration from YAML with defaults that
// reproduce the tool's original hard-coded behavior: scan the current
// directory, digest the first 10 files, 50 lines per file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigDir is the per-project directory holding the config file,
// the run lock, and the history database.
const DefaultConfigDir = ".codedigest"

// DefaultPrompt is the instruction passed to the analysis tool alongside the
// digest path.
const DefaultPrompt = "Review the attached project digest. Identify likely bugs, " +
	"assess the overall architecture, suggest optimizations, and point out " +
	"violations of best practices."

// AnalyzerConfig describes how to invoke the external analysis command.
// The command receives any configured args followed by the digest file path
// and the prompt string.
type AnalyzerConfig struct {
	// Command is the analysis binary to invoke (looked up in PATH if relative)
	Command string `yaml:"command"`

	// Args are extra arguments inserted before the digest path and prompt
	Args []string `yaml:"args"`

	// Prompt is the instruction string passed as the final argument
	Prompt string `yaml:"prompt"`

	// Timeout bounds the external invocation (0 = no timeout)
	Timeout time.Duration `yaml:"-"`
}

// HistoryConfig controls the SQLite run-history ledger.
type HistoryConfig struct {
	// Enabled turns run recording on or off
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`
}

// Config represents codedigest configuration options
type Config struct {
	// Root is the directory to scan
	Root string `yaml:"root"`

	// Extensions is the allow-list of file extensions to collect
	Extensions []string `yaml:"extensions"`

	// IgnoreDirs is the deny-list of directory names never descended into
	IgnoreDirs []string `yaml:"ignore_dirs"`

	// IgnorePatterns are glob patterns matched against root-relative paths
	IgnorePatterns []string `yaml:"ignore_patterns"`

	// FileLimit is the maximum number of files included in the digest
	FileLimit int `yaml:"file_limit"`

	// LineLimit is the maximum number of lines kept per file
	LineLimit int `yaml:"line_limit"`

	// DigestPath is the digest artifact path, overwritten on every run
	DigestPath string `yaml:"digest_path"`

	// ReportPath is the report artifact path, overwritten on every run
	ReportPath string `yaml:"report_path"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Analyzer configures the external analysis command
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	// History configures the run-history ledger
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Root: ".",
		Extensions: []string{
			".go", ".js", ".jsx", ".ts", ".tsx", ".py", ".java", ".rb",
			".php", ".c", ".h", ".cpp", ".hpp", ".cs", ".rs", ".kt", ".swift",
		},
		IgnoreDirs: []string{
			".git", "node_modules", "vendor", "dist", "build", "target",
			"__pycache__",
		},
		IgnorePatterns: nil,
		FileLimit:      10,
		LineLimit:      50,
		DigestPath:     "codedigest.md",
		ReportPath:     "codedigest-report.md",
		LogLevel:       "info",
		Analyzer: AnalyzerConfig{
			Command: "claude",
			Args:    []string{"-p"},
			Prompt:  DefaultPrompt,
			Timeout: 0,
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  filepath.Join(DefaultConfigDir, "history.db"),
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, return defaults (not an error)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Use a temporary struct to handle duration parsing
	type yamlAnalyzer struct {
		Command string   `yaml:"command"`
		Args    []string `yaml:"args"`
		Prompt  string   `yaml:"prompt"`
		Timeout string   `yaml:"timeout"`
	}
	type yamlConfig struct {
		Root           string        `yaml:"root"`
		Extensions     []string      `yaml:"extensions"`
		IgnoreDirs     []string      `yaml:"ignore_dirs"`
		IgnorePatterns []string      `yaml:"ignore_patterns"`
		FileLimit      int           `yaml:"file_limit"`
		LineLimit      int           `yaml:"line_limit"`
		DigestPath     string        `yaml:"digest_path"`
		ReportPath     string        `yaml:"report_path"`
		LogLevel       string        `yaml:"log_level"`
		Analyzer       yamlAnalyzer  `yaml:"analyzer"`
		History        HistoryConfig `yaml:"history"`
	}

	yamlCfg := yamlConfig{
		// History defaults survive when the section is absent from the file
		History: cfg.History,
	}
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.Root != "" {
		cfg.Root = yamlCfg.Root
	}
	if len(yamlCfg.Extensions) > 0 {
		cfg.Extensions = yamlCfg.Extensions
	}
	if len(yamlCfg.IgnoreDirs) > 0 {
		cfg.IgnoreDirs = yamlCfg.IgnoreDirs
	}
	if len(yamlCfg.IgnorePatterns) > 0 {
		cfg.IgnorePatterns = yamlCfg.IgnorePatterns
	}
	if yamlCfg.FileLimit != 0 {
		cfg.FileLimit = yamlCfg.FileLimit
	}
	if yamlCfg.LineLimit != 0 {
		cfg.LineLimit = yamlCfg.LineLimit
	}
	if yamlCfg.DigestPath != "" {
		cfg.DigestPath = yamlCfg.DigestPath
	}
	if yamlCfg.ReportPath != "" {
		cfg.ReportPath = yamlCfg.ReportPath
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.Analyzer.Command != "" {
		cfg.Analyzer.Command = yamlCfg.Analyzer.Command
		// Args belong to the configured command; don't inherit defaults
		cfg.Analyzer.Args = yamlCfg.Analyzer.Args
	}
	if yamlCfg.Analyzer.Prompt != "" {
		cfg.Analyzer.Prompt = yamlCfg.Analyzer.Prompt
	}
	if yamlCfg.Analyzer.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Analyzer.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid analyzer timeout format %q: %w", yamlCfg.Analyzer.Timeout, err)
		}
		cfg.Analyzer.Timeout = timeout
	}
	cfg.History = yamlCfg.History

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from <dir>/.codedigest/config.yaml,
// returning defaults when the file is absent.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, DefaultConfigDir, "config.yaml"))
}

// Validate checks configuration values for consistency
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root directory must not be empty")
	}
	if c.FileLimit <= 0 {
		return fmt.Errorf("file_limit must be positive, got %d", c.FileLimit)
	}
	if c.LineLimit <= 0 {
		return fmt.Errorf("line_limit must be positive, got %d", c.LineLimit)
	}
	if c.Analyzer.Command == "" {
		return fmt.Errorf("analyzer command must not be empty")
	}
	if c.Analyzer.Timeout < 0 {
		return fmt.Errorf("analyzer timeout must not be negative")
	}
	return nil
}
