package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	defer os.Chdir(cwd)
	require.NoError(t, os.Chdir(dir))

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	defer os.Chdir(cwd)
	require.NoError(t, os.Chdir(dir))

	os.Setenv("DATABASE_URL", "postgres://x/y")
	os.Setenv("QUEUE_NAME", "custom-jobs")
	os.Setenv("OBJECT_STORE_BUCKET", "my-bucket")
	defer func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("QUEUE_NAME")
		os.Unsetenv("OBJECT_STORE_BUCKET")
	}()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://x/y", cfg.Database.URL)
	assert.Equal(t, "custom-jobs", cfg.Queue.Name)
	assert.Equal(t, "my-bucket", cfg.ObjectStore.Bucket)
}

func TestDefaultHasQueueDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "repo-analysis-jobs", cfg.Queue.Name)
	assert.NotZero(t, cfg.Queue.PopTimeout)
}
