package testutil

import (
	"path/filepath"
	"testing"
)

func TestAssertFileHelpers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := WriteTempFile(t, dir, "a.txt", "hello\r\nworld")

	AssertFileExists(t, path)
	AssertFileNotExists(t, filepath.Join(dir, "b.txt"))
	AssertDirExists(t, dir)
	AssertFileContains(t, path, "world")
	AssertFileEquals(t, path, "hello\nworld")
}

func TestAssertReportContains(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	WriteTempFile(t, dir, ReportFile, "<h1>Demo</h1><h2>Align</h2><p>done</p>")

	AssertReportContains(t, dir, "Demo", "Align", "done")
}
