package ports

import (
	"os"
	"time"
)

// FileInfo contains file metadata.
type FileInfo struct {
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
	IsDir   bool
}

// FileSystem provides the file operations used by steps, waiters and the
// actor runtime. Errors for missing paths must satisfy
// errors.Is(err, fs.ErrNotExist) so callers can tell "not there yet" from
// real failures.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	AppendFile(path string, data []byte) error
	Exists(path string) bool
	Stat(path string) (FileInfo, error)
	Remove(path string) error
	MkdirAll(path string, perm os.FileMode) error
	Glob(pattern string) ([]string, error)
	CopyFile(src, dest string) error
}
