package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/codedigest/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent analysis runs",
		Long: `Print the most recent runs from the history ledger: when they ran, how
many files they collected and digested, and whether they completed or
failed (and at which stage).`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .codedigest/config.yaml)")
	cmd.Flags().Int("limit", 10, "Maximum number of runs to list")

	return cmd
}

// runHistory implements the history command logic
func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = 10
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	for _, run := range runs {
		state := green.Sprint(run.State)
		detail := fmt.Sprintf("%d collected, %d digested", run.FilesCollected, run.FilesDigested)
		if run.State == "failed" {
			state = red.Sprint(run.State)
			detail = fmt.Sprintf("failed while %s: %s", run.FailureStage, run.ErrorMessage)
		} else if run.FilesSkipped > 0 {
			detail += fmt.Sprintf(", %d skipped", run.FilesSkipped)
		}

		fmt.Fprintf(out, "%s  %s  %-8s  %s  (%s)\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(run.ID),
			state,
			detail,
			run.Duration().Round(10*time.Millisecond),
		)
	}

	return nil
}

// shortID returns the first segment of a run UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
