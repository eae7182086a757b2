package mocks

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/actor/internal/ports"
)

// FileSystem is an in-memory, thread-safe ports.FileSystem. Paths are
// used as given; no cleaning or cwd resolution happens.
type FileSystem struct {
	mu     sync.RWMutex
	files  map[string][]byte
	mtimes map[string]time.Time
	dirs   map[string]bool
	errs   map[string]error
	now    func() time.Time
}

// NewFileSystem creates an empty FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:  make(map[string][]byte),
		mtimes: make(map[string]time.Time),
		dirs:   make(map[string]bool),
		errs:   make(map[string]error),
		now:    time.Now,
	}
}

// AddFile creates a file with content.
func (m *FileSystem) AddFile(p, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = []byte(content)
	m.mtimes[p] = m.now()
}

// AddFileAt creates a file with an explicit modification time.
func (m *FileSystem) AddFileAt(p, content string, mtime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = []byte(content)
	m.mtimes[p] = mtime
}

// AddDir creates a directory.
func (m *FileSystem) AddDir(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[p] = true
}

// SetError makes every operation on p fail with err.
func (m *FileSystem) SetError(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[p] = err
}

// Files returns the paths of all files, sorted.
func (m *FileSystem) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Content returns a file's content, or "" when it does not exist.
func (m *FileSystem) Content(p string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return string(m.files[p])
}

func (m *FileSystem) notExist(op, p string) error {
	return &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
}

func (m *FileSystem) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs[p]; err != nil {
		return nil, err
	}
	data, ok := m.files[p]
	if !ok {
		return nil, m.notExist("read", p)
	}
	return append([]byte(nil), data...), nil
}

func (m *FileSystem) WriteFile(p string, data []byte, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs[p]; err != nil {
		return err
	}
	m.files[p] = append([]byte(nil), data...)
	m.mtimes[p] = m.now()
	return nil
}

func (m *FileSystem) AppendFile(p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs[p]; err != nil {
		return err
	}
	m.files[p] = append(m.files[p], data...)
	m.mtimes[p] = m.now()
	return nil
}

func (m *FileSystem) Exists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, isFile := m.files[p]
	return isFile || m.dirs[p]
}

func (m *FileSystem) Stat(p string) (ports.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs[p]; err != nil {
		return ports.FileInfo{}, err
	}
	if data, ok := m.files[p]; ok {
		return ports.FileInfo{Size: int64(len(data)), Mode: 0o644, ModTime: m.mtimes[p]}, nil
	}
	if m.dirs[p] {
		return ports.FileInfo{Mode: os.ModeDir | 0o755, IsDir: true}, nil
	}
	return ports.FileInfo{}, m.notExist("stat", p)
}

func (m *FileSystem) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs[p]; err != nil {
		return err
	}
	if _, ok := m.files[p]; ok {
		delete(m.files, p)
		delete(m.mtimes, p)
		return nil
	}
	if m.dirs[p] {
		delete(m.dirs, p)
		return nil
	}
	return m.notExist("remove", p)
}

func (m *FileSystem) MkdirAll(p string, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs[p]; err != nil {
		return err
	}
	for dir := p; dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
		m.dirs[dir] = true
	}
	return nil
}

// Glob matches file paths with path.Match semantics.
func (m *FileSystem) Glob(pattern string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs[pattern]; err != nil {
		return nil, err
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	var out []string
	for p := range m.files {
		if strings.Count(p, "/") != strings.Count(pattern, "/") {
			continue
		}
		if ok, _ := path.Match(pattern, p); ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *FileSystem) CopyFile(src, dest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[src]
	if !ok {
		return m.notExist("copy", src)
	}
	m.files[dest] = append([]byte(nil), data...)
	m.mtimes[dest] = m.now()
	return nil
}

var _ ports.FileSystem = (*FileSystem)(nil)
