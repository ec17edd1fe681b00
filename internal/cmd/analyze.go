package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/codedigest/internal/history"
	"github.com/harrison/codedigest/internal/logger"
	"github.com/harrison/codedigest/internal/pipeline"
)

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Digest the project and run the analysis tool",
		Long: `Collect source files from the scan root, build the digest artifact,
invoke the external analysis command with the digest path and prompt,
and persist the command's stdout verbatim as the report artifact.

Both artifacts are overwritten on every run. If the analysis command
fails, the error is logged and no report artifact is written; the
previous report, if any, is left untouched.

Examples:
  codedigest analyze
  codedigest analyze --root ./src --file-limit 20
  codedigest analyze --command gemini --prompt "review this code"
  codedigest analyze --timeout 10m --log-level debug`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}

	addAnalyzeFlags(cmd)

	return cmd
}

// runAnalyze implements the analyze command logic
func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.NewStore(cfg.History.DBPath)
		if err != nil {
			// The ledger is bookkeeping; a broken database never blocks a run
			log.Warnf("history disabled for this run: %v", err)
		} else {
			defer store.Close()
		}
	}

	_, err = pipeline.New(cfg, log, store).Run(cmd.Context())
	return err
}
