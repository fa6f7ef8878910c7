package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFilesSkipsGitSegment(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "objects", "pack"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "util.py"), []byte("import os\n"), 0o644))

	paths, err := listFiles(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main.go", "sub/util.py"}, paths)
}

func TestReadTextRejectsBinary(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bin")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0xff}, 0o644))

	_, ok := readText(path)
	assert.False(t, ok)
}

func TestReadTextAcceptsUTF8(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\nworld\n"), 0o644))

	content, ok := readText(path)
	require.True(t, ok)
	assert.Equal(t, "hello\nworld\n", content)
}
