package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyzererrors "github.com/rohankatakam/repoanalyzer/internal/errors"
	"github.com/rohankatakam/repoanalyzer/internal/jobstore"
	"github.com/rohankatakam/repoanalyzer/internal/model"
)

type fakeQueue struct {
	ids []string
	i   int
}

func (q *fakeQueue) Pop(ctx context.Context) (string, bool, error) {
	if q.i >= len(q.ids) {
		return "", false, nil
	}
	id := q.ids[q.i]
	q.i++
	return id, true, nil
}

type fakeJobStore struct {
	job            *jobstore.Job
	updates        []jobstore.JobUpdate
	projectUpdates map[string]string
}

func newFakeJobStore(job *jobstore.Job) *fakeJobStore {
	return &fakeJobStore{job: job, projectUpdates: map[string]string{}}
}

func (s *fakeJobStore) GetJob(ctx context.Context, jobID string) (*jobstore.Job, error) {
	return s.job, nil
}

func (s *fakeJobStore) UpdateJob(ctx context.Context, jobID string, u jobstore.JobUpdate) error {
	s.updates = append(s.updates, u)
	return nil
}

func (s *fakeJobStore) UpdateProject(ctx context.Context, projectID string, status string) error {
	s.projectUpdates[projectID] = status
	return nil
}

type fakeObjectStore struct {
	uploaded *model.GraphArtifact
	err      error
}

func (o *fakeObjectStore) Upload(ctx context.Context, jobID string, artifact *model.GraphArtifact) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	o.uploaded = artifact
	return "codeviz/graphs/" + jobID + "/graph.json", nil
}

type fakeAnalyzer struct {
	artifact *model.GraphArtifact
	err      error
}

func (a *fakeAnalyzer) Run(ctx context.Context, workspaceDir, repoURL string, ref *string, progress func(float64, string)) (*model.GraphArtifact, error) {
	if progress != nil {
		progress(0.3, "analyzing repository history")
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.artifact, nil
}

func TestProcessJobSuccess(t *testing.T) {
	job := &jobstore.Job{ID: "job-1", ProjectID: "proj-1", RepoURL: "https://example.com/repo.git"}
	jobs := newFakeJobStore(job)
	objects := &fakeObjectStore{}
	an := &fakeAnalyzer{artifact: &model.GraphArtifact{Metadata: model.Metadata{RepoURL: job.RepoURL}}}

	w := New(&fakeQueue{}, jobs, objects, an, nil, t.TempDir())
	w.processJob(context.Background(), "job-1")

	require.NotEmpty(t, jobs.updates)
	last := jobs.updates[len(jobs.updates)-1]
	require.NotNil(t, last.Status)
	assert.Equal(t, "done", *last.Status)
	require.NotNil(t, last.ResultURL)
	assert.Equal(t, "codeviz/graphs/job-1/graph.json", *last.ResultURL)
	assert.Equal(t, "ready", jobs.projectUpdates["proj-1"])
	assert.NotNil(t, objects.uploaded)
}

func TestProcessJobAnalyzeFailure(t *testing.T) {
	job := &jobstore.Job{ID: "job-2", ProjectID: "proj-2", RepoURL: "https://example.com/repo.git"}
	jobs := newFakeJobStore(job)
	objects := &fakeObjectStore{}
	an := &fakeAnalyzer{err: analyzererrors.CloneFailure(errors.New("boom"), "clone failed")}

	w := New(&fakeQueue{}, jobs, objects, an, nil, t.TempDir())
	w.processJob(context.Background(), "job-2")

	last := jobs.updates[len(jobs.updates)-1]
	require.NotNil(t, last.Status)
	assert.Equal(t, "failed", *last.Status)
	require.NotNil(t, last.ErrorMessage)
	assert.Contains(t, *last.ErrorMessage, "CloneFailure")
	assert.Equal(t, "error", jobs.projectUpdates["proj-2"])
	assert.Nil(t, objects.uploaded)
}

func TestProcessJobUploadFailure(t *testing.T) {
	job := &jobstore.Job{ID: "job-3", ProjectID: "proj-3", RepoURL: "https://example.com/repo.git"}
	jobs := newFakeJobStore(job)
	objects := &fakeObjectStore{err: errors.New("s3 down")}
	an := &fakeAnalyzer{artifact: &model.GraphArtifact{}}

	w := New(&fakeQueue{}, jobs, objects, an, nil, t.TempDir())
	w.processJob(context.Background(), "job-3")

	last := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, "failed", *last.Status)
	assert.Equal(t, "error", jobs.projectUpdates["proj-3"])
}

func TestProcessJobMissingJobIsNoop(t *testing.T) {
	jobs := newFakeJobStore(nil)
	objects := &fakeObjectStore{}
	an := &fakeAnalyzer{}

	w := New(&fakeQueue{}, jobs, objects, an, nil, t.TempDir())
	w.processJob(context.Background(), "missing")

	assert.Empty(t, jobs.updates)
}

func TestRunOnceDrainsQueue(t *testing.T) {
	job := &jobstore.Job{ID: "job-4", ProjectID: "proj-4", RepoURL: "https://example.com/repo.git"}
	jobs := newFakeJobStore(job)
	objects := &fakeObjectStore{}
	an := &fakeAnalyzer{artifact: &model.GraphArtifact{}}
	q := &fakeQueue{ids: []string{"job-4"}}

	w := New(q, jobs, objects, an, nil, t.TempDir())

	ok, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
