// Package worker runs the queue-consumption loop: pop a job id, fetch the
// job, analyze its repository, upload the resulting graph, and report
// progress and terminal state back to the job store, per spec.md §2 and §5.
// Graceful shutdown is grounded in the signal-handling idiom from the
// teacher's cmd/crisk-check-server/main.go, adapted from an os.Exit callback
// into context cancellation so an in-flight job can still finish its
// current step.
package worker

import (
	"context"
	"log/slog"

	analyzererrors "github.com/rohankatakam/repoanalyzer/internal/errors"
	"github.com/rohankatakam/repoanalyzer/internal/jobstore"
	"github.com/rohankatakam/repoanalyzer/internal/model"
	"github.com/rohankatakam/repoanalyzer/internal/workspace"
)

// JobStore is the relational store the worker reports progress and
// terminal state to.
type JobStore interface {
	GetJob(ctx context.Context, jobID string) (*jobstore.Job, error)
	UpdateJob(ctx context.Context, jobID string, u jobstore.JobUpdate) error
	UpdateProject(ctx context.Context, projectID string, status string) error
}

// ObjectStore uploads a completed graph artifact and returns its storage
// key.
type ObjectStore interface {
	Upload(ctx context.Context, jobID string, artifact *model.GraphArtifact) (string, error)
}

// Queue yields job ids to process.
type Queue interface {
	Pop(ctx context.Context) (jobID string, ok bool, err error)
}

// Analyzer performs the clone/select/index/extract/assemble pipeline for
// one job's repository.
type Analyzer interface {
	Run(ctx context.Context, workspaceDir, repoURL string, ref *string, progress func(fraction float64, message string)) (*model.GraphArtifact, error)
}

// Worker owns the queue-consumption loop.
type Worker struct {
	queue         Queue
	jobs          JobStore
	objects       ObjectStore
	analyzer      Analyzer
	manifest      *workspace.Manifest
	workspaceBase string
	logger        *slog.Logger
}

// New constructs a Worker.
func New(queue Queue, jobs JobStore, objects ObjectStore, analyzer Analyzer, manifest *workspace.Manifest, workspaceBase string) *Worker {
	return &Worker{
		queue:         queue,
		jobs:          jobs,
		objects:       objects,
		analyzer:      analyzer,
		manifest:      manifest,
		workspaceBase: workspaceBase,
		logger:        slog.Default().With("component", "worker"),
	}
}

// Run loops until ctx is cancelled, popping one job at a time. A queue pop
// timeout (no job ready) simply loops again; a pop error is logged and the
// loop continues. Only context cancellation stops the loop, and a job that
// is already in flight runs to completion first.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down")
			return nil
		default:
		}

		jobID, ok, err := w.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("queue pop failed", "error", analyzererrors.Format(err))
			continue
		}
		if !ok {
			continue
		}

		w.processJob(context.WithoutCancel(ctx), jobID)
	}
}

// RunOnce pops and processes a single job, for --once / cron-style
// invocations. ok is false if no job was available within the queue's
// timeout.
func (w *Worker) RunOnce(ctx context.Context) (ok bool, err error) {
	jobID, ok, err := w.queue.Pop(ctx)
	if err != nil || !ok {
		return false, err
	}
	w.processJob(context.WithoutCancel(ctx), jobID)
	return true, nil
}

func (w *Worker) processJob(ctx context.Context, jobID string) {
	logger := w.logger.With("jobId", jobID)

	job, err := w.jobs.GetJob(ctx, jobID)
	if err != nil {
		logger.Error("failed to fetch job", "error", err)
		return
	}
	if job == nil {
		logger.Warn("job not found, skipping")
		return
	}

	w.markRunning(ctx, jobID, 0.0, "queued")

	ws, err := workspace.New(w.workspaceBase, jobID)
	if err != nil {
		w.markFailed(ctx, jobID, job.ProjectID, analyzererrors.Wrap(err, analyzererrors.TypeInternal, "failed to create workspace"))
		return
	}
	if w.manifest != nil {
		_ = w.manifest.Track(ws.Path, jobID)
	}
	defer func() {
		ws.Close()
		if w.manifest != nil {
			_ = w.manifest.Untrack(ws.Path)
		}
	}()

	artifact, err := w.analyzer.Run(ctx, ws.Path, job.RepoURL, job.Ref, func(fraction float64, message string) {
		w.markRunning(ctx, jobID, fraction, message)
	})
	if err != nil {
		w.markFailed(ctx, jobID, job.ProjectID, err)
		return
	}

	w.markRunning(ctx, jobID, 0.8, "uploading graph")

	resultURL, err := w.objects.Upload(ctx, jobID, artifact)
	if err != nil {
		w.markFailed(ctx, jobID, job.ProjectID, analyzererrors.Wrap(err, analyzererrors.TypeUpload, "failed to upload artifact"))
		return
	}

	w.markDone(ctx, jobID, job.ProjectID, resultURL)
}

func (w *Worker) markRunning(ctx context.Context, jobID string, fraction float64, message string) {
	status := "running"
	progress := fraction
	err := w.jobs.UpdateJob(ctx, jobID, jobstore.JobUpdate{
		Status:   &status,
		Progress: &progress,
		Message:  &message,
	})
	if err != nil {
		w.logger.Warn("failed to report progress", "jobId", jobID, "error", err)
	}
}

func (w *Worker) markDone(ctx context.Context, jobID, projectID, resultURL string) {
	status := "done"
	progress := 1.0
	err := w.jobs.UpdateJob(ctx, jobID, jobstore.JobUpdate{
		Status:    &status,
		Progress:  &progress,
		ResultURL: &resultURL,
	})
	if err != nil {
		w.logger.Error("failed to record job completion", "jobId", jobID, "error", err)
	}
	if err := w.jobs.UpdateProject(ctx, projectID, "ready"); err != nil {
		w.logger.Error("failed to update project status", "projectId", projectID, "error", err)
	}
}

func (w *Worker) markFailed(ctx context.Context, jobID, projectID string, cause error) {
	status := "failed"
	message := analyzererrors.Format(cause)
	w.logger.Error("job failed", "jobId", jobID, "error", message)

	if err := w.jobs.UpdateJob(ctx, jobID, jobstore.JobUpdate{Status: &status, ErrorMessage: &message}); err != nil {
		w.logger.Error("failed to record job failure", "jobId", jobID, "error", err)
	}
	if projectID != "" {
		if err := w.jobs.UpdateProject(ctx, projectID, "error"); err != nil {
			w.logger.Error("failed to update project status", "projectId", projectID, "error", err)
		}
	}
}
