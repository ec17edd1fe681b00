package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/codedigest/internal/config"
	"github.com/harrison/codedigest/internal/logger"
)

// addScanFlags registers the flags shared by commands that collect files.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .codedigest/config.yaml)")
	cmd.Flags().String("root", "", "Directory to scan (default: current directory)")
	cmd.Flags().StringSlice("extensions", nil, "File extensions to collect (e.g. .go,.py)")
	cmd.Flags().StringSlice("ignore-dirs", nil, "Directory names to skip entirely")
	cmd.Flags().StringSlice("ignore-patterns", nil, "Glob patterns excluded from collection")
	cmd.Flags().String("log-level", "", "Logging verbosity (debug, info, warn, error)")
}

// addAnalyzeFlags registers the flags for commands that run the full pipeline.
func addAnalyzeFlags(cmd *cobra.Command) {
	addScanFlags(cmd)
	cmd.Flags().Int("file-limit", 0, "Maximum number of files in the digest")
	cmd.Flags().Int("line-limit", 0, "Maximum lines kept per file")
	cmd.Flags().String("digest", "", "Digest artifact path")
	cmd.Flags().String("report", "", "Report artifact path")
	cmd.Flags().String("command", "", "External analysis command")
	cmd.Flags().String("prompt", "", "Instruction passed to the analysis command")
	cmd.Flags().String("timeout", "", "Analysis timeout (e.g. 30s, 5m; empty = none)")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the history ledger")
}

// resolveConfig loads configuration and applies flag overrides.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if v, _ := cmd.Flags().GetString("root"); v != "" {
		cfg.Root = v
	}
	if v, _ := cmd.Flags().GetStringSlice("extensions"); len(v) > 0 {
		cfg.Extensions = v
	}
	if v, _ := cmd.Flags().GetStringSlice("ignore-dirs"); len(v) > 0 {
		cfg.IgnoreDirs = v
	}
	if v, _ := cmd.Flags().GetStringSlice("ignore-patterns"); len(v) > 0 {
		cfg.IgnorePatterns = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		if !logger.ValidLevel(v) {
			return nil, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", v)
		}
		cfg.LogLevel = v
	}

	// Pipeline-only flags may not exist on every command
	if f := cmd.Flags().Lookup("file-limit"); f != nil {
		if v, _ := cmd.Flags().GetInt("file-limit"); v > 0 {
			cfg.FileLimit = v
		}
		if v, _ := cmd.Flags().GetInt("line-limit"); v > 0 {
			cfg.LineLimit = v
		}
		if v, _ := cmd.Flags().GetString("digest"); v != "" {
			cfg.DigestPath = v
		}
		if v, _ := cmd.Flags().GetString("report"); v != "" {
			cfg.ReportPath = v
		}
		if v, _ := cmd.Flags().GetString("command"); v != "" {
			cfg.Analyzer.Command = v
			cfg.Analyzer.Args = nil
		}
		if v, _ := cmd.Flags().GetString("prompt"); v != "" {
			cfg.Analyzer.Prompt = v
		}
		if v, _ := cmd.Flags().GetString("timeout"); v != "" {
			timeout, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout %q: %w", v, err)
			}
			cfg.Analyzer.Timeout = timeout
		}
		if v, _ := cmd.Flags().GetBool("no-history"); v {
			cfg.History.Enabled = false
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
