package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// ReportFile is the report a run writes into its directory.
const ReportFile = "index.html"

// AssertFileExists asserts that path is a regular file.
func AssertFileExists(t testing.TB, path string) {
	t.Helper()

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		assert.Fail(t, "file does not exist", path)
		return
	}
	require.NoError(t, err)
	assert.False(t, info.IsDir(), "%s is a directory", path)
}

// AssertFileNotExists asserts that nothing exists at path. Waits remove
// the files that satisfied them, so this is how tests see a wait finish.
func AssertFileNotExists(t testing.TB, path string) {
	t.Helper()

	_, err := os.Stat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist, "%s still exists", path)
}

// AssertDirExists asserts that path is a directory.
func AssertDirExists(t testing.TB, path string) {
	t.Helper()

	info, err := os.Stat(path)
	require.NoError(t, err, "directory %s", path)
	assert.True(t, info.IsDir(), "%s is not a directory", path)
}

// AssertFileContains asserts that the file at path contains expected.
func AssertFileContains(t testing.TB, path, expected string, msgAndArgs ...interface{}) {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err, "read %s", path)
	assert.Contains(t, string(content), expected, msgAndArgs...)
}

// AssertFileEquals asserts the content of the file at path, ignoring
// carriage returns.
func AssertFileEquals(t testing.TB, path, expected string, msgAndArgs ...interface{}) {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err, "read %s", path)
	actual := strings.ReplaceAll(string(content), "\r\n", "\n")
	assert.Equal(t, expected, actual, msgAndArgs...)
}

// AssertReportContains asserts that the report of the run in runDir
// contains each of the fragments, in order.
func AssertReportContains(t testing.TB, runDir string, fragments ...string) {
	t.Helper()

	content, err := os.ReadFile(filepath.Join(runDir, ReportFile))
	require.NoError(t, err, "read report of %s", runDir)

	rest := string(content)
	for _, f := range fragments {
		i := strings.Index(rest, f)
		if i < 0 {
			assert.Fail(t, "report fragment missing or out of order", "%q in %s", f, runDir)
			return
		}
		rest = rest[i+len(f):]
	}
}

// AssertYAMLEquals asserts that two YAML documents decode to the same
// value.
func AssertYAMLEquals(t testing.TB, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var want, got interface{}
	require.NoError(t, yaml.Unmarshal([]byte(expected), &want), "parse expected YAML")
	require.NoError(t, yaml.Unmarshal([]byte(actual), &got), "parse actual YAML")
	assert.Equal(t, want, got, msgAndArgs...)
}
