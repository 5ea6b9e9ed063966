package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/zen-systems/quill/pkg/adapter"
	"github.com/zen-systems/quill/pkg/config"
	"github.com/zen-systems/quill/pkg/history"
	"github.com/zen-systems/quill/pkg/pipeline"
)

// execute runs a bound pipeline, prints progress to stderr and records the
// outcome in the history database.
func execute(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, seed map[string]string) (*pipeline.RunResult, error) {
	evidenceDir := evidenceFlag
	if evidenceDir == "" {
		evidenceDir = cfg.Defaults.EvidenceDir
	}

	runID := uuid.NewString()
	start := time.Now()
	result, runErr := pipeline.Run(ctx, p, pipeline.RunOptions{
		RunID:       runID,
		Seed:        seed,
		EvidenceDir: evidenceDir,
		Logger:      slogLogger(slog.Default()),
		Observer:    progressObserver(os.Stderr, len(p.Stages)),
	})

	if !noHistory {
		if err := recordRun(ctx, cfg.Defaults.HistoryDB, historyRun(runID, p.Name, seed, result, runErr, time.Since(start))); err != nil {
			slog.Warn("failed to record history", "error", err)
		}
	}

	if runErr != nil {
		if adapter.IsTransient(runErr) {
			fmt.Fprintln(os.Stderr, "hint: the text-generation service failure looks transient; rerunning the pipeline may succeed")
		}
		return nil, runErr
	}
	if result.EvidenceDir != "" {
		fmt.Fprintf(os.Stderr, "Evidence written to %s\n", result.EvidenceDir)
	}
	return result, nil
}

func slogLogger(logger *slog.Logger) func(format string, args ...any) {
	return func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}
}

func progressObserver(w io.Writer, total int) pipeline.Observer {
	return func(t pipeline.Transition) {
		switch t.Phase {
		case pipeline.PhaseStageRunning:
			fmt.Fprintf(w, "[%d/%d] %s...\n", t.Index+1, total, t.Stage)
		case pipeline.PhaseStageComplete:
			fmt.Fprintf(w, "[%d/%d] %s done (%s)\n", t.Index+1, total, t.Stage, t.Duration.Round(time.Millisecond))
		case pipeline.PhaseFailed:
			fmt.Fprintf(w, "[%d/%d] %s failed\n", t.Index+1, total, t.Stage)
		}
	}
}

func recordRun(ctx context.Context, dbPath string, run history.Run) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.SaveRun(context.WithoutCancel(ctx), run)
	return err
}

// historyRun converts a run outcome into a history record keyed by the
// run's evidence ID.
func historyRun(runID, name string, seed map[string]string, result *pipeline.RunResult, runErr error, elapsed time.Duration) history.Run {
	run := history.Run{
		ID:       runID,
		Pipeline: name,
		Seed:     seed,
		Status:   history.StatusDone,
		Duration: elapsed,
	}

	if runErr != nil {
		run.Status = history.StatusFailed
		run.Error = runErr.Error()
		run.FailedStage = failedStage(runErr)
		return run
	}

	run.Output = result.Output()
	for _, stage := range result.Stages {
		sr := history.StageRun{
			Index:    stage.Index,
			Name:     stage.Name,
			Output:   stage.Output,
			Adapter:  stage.Adapter,
			Model:    stage.Model,
			Duration: stage.Duration,
		}
		if stage.Artifact != nil {
			sr.Content = stage.Artifact.Content
		}
		run.Stages = append(run.Stages, sr)
	}
	return run
}

func failedStage(err error) string {
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	var missing *pipeline.MissingInputError
	if errors.As(err, &missing) {
		return missing.Stage
	}
	return ""
}
