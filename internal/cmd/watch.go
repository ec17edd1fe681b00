package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/codedigest/internal/history"
	"github.com/harrison/codedigest/internal/logger"
	"github.com/harrison/codedigest/internal/pipeline"
	"github.com/harrison/codedigest/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the full analysis whenever files change",
		Long: `Run the analysis pipeline once, then keep watching the scan root and
re-run the whole pipeline after each debounced burst of file changes.
Every pass is a complete run; nothing is analyzed incrementally.

Stops on Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	addAnalyzeFlags(cmd)
	cmd.Flags().String("debounce", "", "Quiet period before a change triggers a run (e.g. 500ms, 2s)")

	return cmd
}

// runWatch implements the watch command logic
func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	debounce := watch.DefaultDebounce
	if v, _ := cmd.Flags().GetString("debounce"); v != "" {
		debounce, err = time.ParseDuration(v)
		if err != nil {
			return err
		}
	}

	log := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.NewStore(cfg.History.DBPath)
		if err != nil {
			log.Warnf("history disabled: %v", err)
		} else {
			defer store.Close()
		}
	}

	p := pipeline.New(cfg, log, store)
	runOnce := func(ctx context.Context) {
		if _, err := p.Run(ctx); err != nil {
			log.Errorf("run failed: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial pass before waiting for changes
	runOnce(ctx)

	w, err := watch.New(
		cfg.Root,
		cfg.IgnoreDirs,
		[]string{cfg.DigestPath, cfg.ReportPath, cfg.History.DBPath},
		debounce,
		runOnce,
		log,
	)
	if err != nil {
		return err
	}

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Infof("watch stopped")
	return nil
}
