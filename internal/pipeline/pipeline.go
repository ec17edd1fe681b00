// Package pipeline runs the codedigest flow end to end:
// collect files, build the digest, invoke the analysis tool, persist the
// report, and record the run in the history ledger.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/codedigest/internal/analyzer"
	"github.com/harrison/codedigest/internal/config"
	"github.com/harrison/codedigest/internal/digest"
	"github.com/harrison/codedigest/internal/fsutil"
	"github.com/harrison/codedigest/internal/history"
	"github.com/harrison/codedigest/internal/logger"
	"github.com/harrison/codedigest/internal/scanner"
)

// Stage names a step of the run, used for failure classification.
type Stage string

const (
	StageCollecting Stage = "collecting"
	StageDigesting  Stage = "digesting"
	StageInvoking   Stage = "invoking"
	StageReporting  Stage = "reporting"
)

// Result describes a finished run. A run that fails during the analysis
// invocation still produces a Result: the reporting step is abandoned but
// the process terminates normally.
type Result struct {
	RunID          string
	Failed         bool
	FailureStage   Stage
	FilesCollected int
	FilesDigested  int
	FilesSkipped   int
	ReportBytes    int
	ReportSummary  analyzer.Summary
}

// Pipeline executes runs against a fixed configuration.
type Pipeline struct {
	cfg   *config.Config
	log   logger.Logger
	store *history.Store // nil disables history recording
}

// New creates a Pipeline. store may be nil to disable the history ledger.
func New(cfg *config.Config, log logger.Logger, store *history.Store) *Pipeline {
	return &Pipeline{
		cfg:   cfg,
		log:   log,
		store: store,
	}
}

// Run executes one full pipeline pass.
//
// Collection and artifact-write errors abort the run and are returned.
// An analysis-tool failure (spawn error or non-zero exit) is terminal for
// the reporting step only: it is logged, no report artifact is written or
// modified, and Run returns a failed Result with a nil error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	started := time.Now()

	p.log.Debugf("run %s starting (root: %s)", result.RunID, p.cfg.Root)

	// One run at a time per digest artifact
	lock := fsutil.NewRunLock(p.cfg.DigestPath + ".lock")
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("another run is already in progress (lock: %s)", lock.Path())
	}
	defer lock.Unlock()

	// Collecting
	s, err := scanner.New(p.cfg.Root, scanner.Options{
		Extensions:     p.cfg.Extensions,
		IgnoreDirs:     p.cfg.IgnoreDirs,
		IgnorePatterns: p.cfg.IgnorePatterns,
	})
	if err != nil {
		return nil, p.fail(ctx, result, started, StageCollecting, err)
	}
	files, err := s.Collect()
	if err != nil {
		return nil, p.fail(ctx, result, started, StageCollecting, err)
	}
	result.FilesCollected = len(files)
	p.log.Infof("collected %d files from %s", len(files), p.cfg.Root)

	// Digesting
	builder := digest.NewBuilder(p.cfg.FileLimit, p.cfg.LineLimit, p.log)
	d := builder.Build(p.cfg.Root, files)
	result.FilesDigested = len(d.Sections)
	result.FilesSkipped = d.Skipped

	if err := builder.Write(p.cfg.DigestPath, d); err != nil {
		return nil, p.fail(ctx, result, started, StageDigesting, err)
	}
	p.log.Infof("digest written to %s (%d sections)", p.cfg.DigestPath, len(d.Sections))

	// Invoking
	inv := analyzer.NewInvoker(p.cfg.Analyzer)
	report, err := inv.Analyze(ctx, p.cfg.DigestPath)
	if err != nil {
		// Terminal for the reporting step only: no artifact, normal exit
		p.log.Errorf("analysis failed, no report written: %v", err)
		result.Failed = true
		result.FailureStage = StageInvoking
		p.record(ctx, result, started, err)
		return result, nil
	}

	// Reporting: stdout persisted verbatim
	if err := fsutil.AtomicWrite(p.cfg.ReportPath, report); err != nil {
		return nil, p.fail(ctx, result, started, StageReporting, err)
	}
	result.ReportBytes = len(report)
	result.ReportSummary = analyzer.Summarize(report)
	p.log.Infof("analysis report written to %s (%d bytes, %s)",
		p.cfg.ReportPath, len(report), result.ReportSummary)

	p.record(ctx, result, started, nil)
	p.log.Debugf("run %s done in %s", result.RunID, time.Since(started).Round(time.Millisecond))

	return result, nil
}

// fail marks the result failed at the given stage, records it, and returns
// the wrapped error for the caller to propagate.
func (p *Pipeline) fail(ctx context.Context, result *Result, started time.Time, stage Stage, err error) error {
	result.Failed = true
	result.FailureStage = stage
	wrapped := fmt.Errorf("%s: %w", stage, err)
	p.record(ctx, result, started, wrapped)
	return wrapped
}

// record writes the run to the history ledger. Ledger failures degrade to a
// warning; they never affect the run outcome.
func (p *Pipeline) record(ctx context.Context, result *Result, started time.Time, runErr error) {
	if p.store == nil {
		return
	}

	rec := history.RunRecord{
		ID:             result.RunID,
		Root:           p.cfg.Root,
		StartedAt:      started,
		FinishedAt:     time.Now(),
		FilesCollected: result.FilesCollected,
		FilesDigested:  result.FilesDigested,
		FilesSkipped:   result.FilesSkipped,
		State:          "done",
		ReportBytes:    result.ReportBytes,
	}
	if result.Failed {
		rec.State = "failed"
		rec.FailureStage = string(result.FailureStage)
	}
	if runErr != nil {
		rec.ErrorMessage = runErr.Error()
	}

	if err := p.store.RecordRun(ctx, rec); err != nil {
		p.log.Warnf("failed to record run in history: %v", err)
	}
}
