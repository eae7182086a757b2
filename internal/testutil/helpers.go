// Package testutil provides test helpers and utilities for actor tests.
package testutil

import (
	"embed"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// WriteTempFile writes content to dir/filename, creating parents, and
// returns the path.
func WriteTempFile(t *testing.T, dir, filename, content string) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "create parent of %s", filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "write %s", filename)
	return path
}

// TouchDone creates empty completion files in dir, the way finished jobs
// signal, and returns their paths.
func TouchDone(t *testing.T, dir string, names ...string) []string {
	t.Helper()

	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, WriteTempFile(t, dir, name, ""))
	}
	return paths
}

// WriteCounter writes a counter file holding n, as jobs that report how
// many units they finished do.
func WriteCounter(t *testing.T, dir, name string, n int) string {
	t.Helper()
	return WriteTempFile(t, dir, name, strconv.Itoa(n)+"\n")
}

// LoadFixture returns an embedded fixture.
func LoadFixture(t *testing.T, name string) []byte {
	t.Helper()

	content, err := fixturesFS.ReadFile("fixtures/" + name)
	require.NoError(t, err, "load fixture %s", name)
	return content
}

// WriteFixtureToDir copies a fixture into dir as destName.
func WriteFixtureToDir(t *testing.T, dir, fixtureName, destName string) string {
	t.Helper()
	return WriteTempFile(t, dir, destName, string(LoadFixture(t, fixtureName)))
}

// ChangeDir enters dir for the duration of the test. Tests using it must
// not run in parallel.
func ChangeDir(t *testing.T, dir string) {
	t.Helper()

	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(original)
	})
}
