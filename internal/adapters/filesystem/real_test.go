package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestRealFileSystem_ReadWrite(t *testing.T) {
	fsys := NewRealFileSystem()
	dir := t.TempDir()

	path := filepath.Join(dir, "count.txt")
	if err := fsys.WriteFile(path, []byte("3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	content, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != "3\n" {
		t.Errorf("ReadFile() = %q, want %q", content, "3\n")
	}

	if !fsys.Exists(path) {
		t.Error("Exists() should return true")
	}
}

func TestRealFileSystem_AppendFile(t *testing.T) {
	fsys := NewRealFileSystem()
	path := filepath.Join(t.TempDir(), ".files")

	if err := fsys.AppendFile(path, []byte("*.html\n")); err != nil {
		t.Fatalf("AppendFile() error = %v", err)
	}
	if err := fsys.AppendFile(path, []byte("*.png\n")); err != nil {
		t.Fatalf("AppendFile() error = %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "*.html\n*.png\n" {
		t.Errorf("content = %q", content)
	}
}

func TestRealFileSystem_Stat_NotFound(t *testing.T) {
	fsys := NewRealFileSystem()

	_, err := fsys.Stat(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat() error = %v, want fs.ErrNotExist", err)
	}
}

func TestRealFileSystem_Stat_Directory(t *testing.T) {
	fsys := NewRealFileSystem()
	dir := t.TempDir()

	info, err := fsys.Stat(dir)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir {
		t.Error("IsDir should be true")
	}
}

func TestRealFileSystem_Glob(t *testing.T) {
	fsys := NewRealFileSystem()
	dir := t.TempDir()

	for _, name := range []string{"part1.done", "part2.done", "other.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	matches, err := fsys.Glob(filepath.Join(dir, "part*.done"))
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Glob() matched %d files, want 2: %v", len(matches), matches)
	}

	if _, err := fsys.Glob("[bad"); err == nil {
		t.Error("Glob() should fail on malformed pattern")
	}
}

func TestRealFileSystem_RemoveAndMkdir(t *testing.T) {
	fsys := NewRealFileSystem()
	dir := t.TempDir()

	nested := filepath.Join(dir, "a", "b")
	if err := fsys.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if !fsys.Exists(nested) {
		t.Error("nested dir should exist")
	}
	if err := fsys.Remove(nested); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if fsys.Exists(nested) {
		t.Error("nested dir should be removed")
	}
}

func TestRealFileSystem_CopyFile(t *testing.T) {
	fsys := NewRealFileSystem()
	dir := t.TempDir()

	src := filepath.Join(dir, "run.conf")
	dest := filepath.Join(dir, "copy.conf")
	if err := os.WriteFile(src, []byte("[General]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := fsys.CopyFile(src, dest); err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}

	content, _ := os.ReadFile(dest)
	if string(content) != "[General]\n" {
		t.Errorf("copied content = %q", content)
	}

	if err := fsys.CopyFile(filepath.Join(dir, "nope"), dest); err == nil {
		t.Error("CopyFile() should fail for missing source")
	}
}
