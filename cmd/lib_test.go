package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLibraryPathPrefersCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	file := filepath.Join(dir, "tune.mid")
	assert.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	resolved, err := resolveLibraryPath("tune.mid")
	assert.NoError(t, err)
	assert.Equal(t, "tune.mid", resolved)
}

func TestResolveLibraryPathFallsBackToLibDir(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	assert.NoError(t, os.Mkdir("lib", 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join("lib", "tune.mid"), []byte("x"), 0o644))

	resolved, err := resolveLibraryPath("tune.mid")
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join("lib", "tune.mid"), resolved)
}

func TestResolveLibraryPathErrorsWhenMissingEverywhere(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	_, err = resolveLibraryPath("nope.mid")
	assert.Error(t, err)
}

func TestTicksToNsScalesByTempoAndPPQ(t *testing.T) {
	ns := ticksToNs(960, 120, 960)
	assert.Equal(t, int64(5e8), ns)
}

func TestOpenSchedulerReturnsNilForNoOutputPort(t *testing.T) {
	sched, err := openScheduler(-1)
	assert.NoError(t, err)
	assert.Nil(t, sched)
}
