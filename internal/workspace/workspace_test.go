package workspace

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndClose(t *testing.T) {
	base := t.TempDir()
	ws, err := New(base, "job-1")
	require.NoError(t, err)
	assert.DirExists(t, ws.Path)

	ws.Close()
	assert.NoDirExists(t, ws.Path)
}

func TestCloseOnNilIsNoop(t *testing.T) {
	var ws *Workspace
	assert.NotPanics(t, func() { ws.Close() })
}

func TestManifestSweepRemovesOrphans(t *testing.T) {
	base := t.TempDir()
	orphan := filepath.Join(base, "orphan-dir")
	require.NoError(t, os.MkdirAll(orphan, 0o755))

	manifestPath := filepath.Join(base, "manifest.db")
	m, err := OpenManifest(manifestPath)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Track(orphan, "job-xyz"))
	require.NoError(t, m.Sweep(slog.Default()))

	assert.NoDirExists(t, orphan)
}
