package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for codedigest
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codedigest",
		Short: "Digest a codebase and run an external analysis tool over it",
		Long: `Codedigest collects source files from a project directory, concatenates
bounded excerpts into a markdown digest, and invokes an external
command-line analysis tool with that digest. The tool's output is
persisted verbatim as the analysis report.

Configuration is loaded from .codedigest/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCommand())
	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewWatchCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
