// Package jobstore is the relational job store the worker reports progress
// and terminal state to, per spec.md §6. Grounded in the teacher's
// internal/database/postgres_client.go pgxpool usage and the partial-update
// upsert idiom from internal/dlq/queue.go.
package jobstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Job is the row the core consumes, joined with its owning project to
// obtain repoUrl and ref.
type Job struct {
	ID        string
	ProjectID string
	RepoURL   string
	Ref       *string
}

// JobUpdate carries partial-update semantics: a nil field leaves the
// corresponding column untouched.
type JobUpdate struct {
	Status       *string
	Progress     *float64
	Message      *string
	ResultURL    *string
	StatsJSON    []byte
	ErrorMessage *string
}

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store from a connection string and verifies connectivity.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	logger := slog.Default().With("component", "jobstore")
	logger.Info("jobstore connected")

	return &Store{pool: pool, logger: logger}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// GetJob fetches a job row joined with its project. Returns (nil, nil) if
// the job does not exist — callers translate that into a JobNotFound error.
func (s *Store) GetJob(ctx context.Context, jobID string) (*Job, error) {
	const query = `
		SELECT j.id, j.project_id, p.repo_url, j.ref
		FROM jobs j
		JOIN projects p ON p.id = j.project_id
		WHERE j.id = $1
	`

	var job Job
	err := s.pool.QueryRow(ctx, query, jobID).Scan(&job.ID, &job.ProjectID, &job.RepoURL, &job.Ref)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}

	return &job, nil
}

// UpdateJob applies a partial update to the job row; unspecified (nil)
// fields retain their prior values. updated_at is always bumped.
func (s *Store) UpdateJob(ctx context.Context, jobID string, u JobUpdate) error {
	const query = `
		UPDATE jobs SET
			status        = COALESCE($2, status),
			progress      = COALESCE($3, progress),
			message       = COALESCE($4, message),
			result_url    = COALESCE($5, result_url),
			stats_json    = COALESCE($6, stats_json),
			error_message = COALESCE($7, error_message),
			updated_at    = NOW()
		WHERE id = $1
	`

	_, err := s.pool.Exec(ctx, query, jobID, u.Status, u.Progress, u.Message, u.ResultURL, u.StatsJSON, u.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", jobID, err)
	}
	return nil
}

// UpdateProject sets a project's status (ready, error, ...). This is always
// the final write in a job's lifecycle, issued strictly after the job's own
// terminal UpdateJob call.
func (s *Store) UpdateProject(ctx context.Context, projectID, status string) error {
	const query = `UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, projectID, status)
	if err != nil {
		return fmt.Errorf("failed to update project %s: %w", projectID, err)
	}
	return nil
}
