// Package workspace allocates and guarantees cleanup of the scratch
// directory the analyzer clones a repository into, per spec.md §4.1 and
// §9's "ownership of the workspace" design note.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is a scratch directory owned exclusively by one job.
type Workspace struct {
	Path  string
	JobID string
}

// New allocates a fresh scratch directory under baseDir, named with a
// random uuid so concurrent workers never collide.
func New(baseDir, jobID string) (*Workspace, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace base dir %s: %w", baseDir, err)
	}

	path := filepath.Join(baseDir, uuid.NewString())
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace dir %s: %w", path, err)
	}

	return &Workspace{Path: path, JobID: jobID}, nil
}

// Close recursively removes the workspace. Callers invoke this via defer
// immediately after New succeeds so the directory is removed on every exit
// path — success, failure, or panic. Failures here are swallowed by design
// (spec.md §7): a leftover scratch directory is never itself job-fatal.
func (w *Workspace) Close() {
	if w == nil || w.Path == "" {
		return
	}
	_ = os.RemoveAll(w.Path)
}
