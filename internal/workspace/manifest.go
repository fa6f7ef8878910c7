package workspace

import (
	"log/slog"
	"os"

	bolt "go.etcd.io/bbolt"
)

var manifestBucket = []byte("workspaces")

// Manifest is a small embedded side-cache recording which scratch
// directories are currently owned by a live job, mirroring the teacher's
// use of bbolt as a local cache alongside the primary job store
// (cmd/crisk-check-server). It exists solely so a process that crashed
// mid-job leaves a trail the next startup can sweep; the job store itself
// remains the source of truth for job status.
type Manifest struct {
	db *bolt.DB
}

// OpenManifest opens (creating if absent) the bbolt file at path.
func OpenManifest(path string) (*Manifest, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(manifestBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Manifest{db: db}, nil
}

// Close closes the underlying bbolt handle.
func (m *Manifest) Close() error {
	return m.db.Close()
}

// Track records that path is now owned by a live job.
func (m *Manifest) Track(path, jobID string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(manifestBucket).Put([]byte(path), []byte(jobID))
	})
}

// Untrack removes path from the manifest once its workspace is closed.
func (m *Manifest) Untrack(path string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(manifestBucket).Delete([]byte(path))
	})
}

// Sweep removes every directory still listed in the manifest — left behind
// by a process that exited without reaching its deferred Workspace.Close —
// and clears those entries. It is safe to call on every startup.
func (m *Manifest) Sweep(logger *slog.Logger) error {
	var stale [][]byte

	err := m.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(manifestBucket).ForEach(func(k, v []byte) error {
			stale = append(stale, append([]byte(nil), k...))
			return nil
		})
	})
	if err != nil {
		return err
	}

	for _, path := range stale {
		p := string(path)
		if err := os.RemoveAll(p); err != nil {
			logger.Warn("failed to sweep orphaned workspace", "path", p, "error", err)
			continue
		}
		if err := m.Untrack(p); err != nil {
			logger.Warn("failed to untrack swept workspace", "path", p, "error", err)
		}
	}

	return nil
}
