// Package wait detects completion of out-of-process work through the
// filesystem. Batch jobs signal that they are done by creating sentinel
// files, writing a counter, or producing a number of output files; a Waiter
// checks for one such condition and Wait polls a set of them until all hold.
package wait

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/actor/internal/ports"
)

// FileSystem is the part of ports.FileSystem that waiters need.
type FileSystem interface {
	Stat(path string) (ports.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	Remove(path string) error
	Glob(pattern string) ([]string, error)
}

// Waiter is a pending condition over the filesystem.
type Waiter interface {
	// Success reports whether the condition holds. "Not yet" is never an
	// error; only unrelated I/O failures are returned.
	Success() (bool, error)
	// Describe returns the pending state for display.
	Describe() string
	// Delete removes the file(s) that satisfied the condition. Files that
	// are already gone are ignored.
	Delete() error
	// Wanted is the number of units this waiter stands for.
	Wanted() int
}

// State is the outcome of probing a file.
type State int

const (
	// NotReady means the condition does not hold yet.
	NotReady State = iota
	// Ready means the condition holds.
	Ready
	// Failed means the probe hit an I/O error.
	Failed
)

func (s State) String() string {
	switch s {
	case NotReady:
		return "not-ready"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileWaiter succeeds when its file exists.
type FileWaiter struct {
	fsys FileSystem
	path string
}

// NewFileWaiter creates a FileWaiter for path.
func NewFileWaiter(fsys FileSystem, path string) *FileWaiter {
	return &FileWaiter{fsys: fsys, path: path}
}

// Path returns the awaited file.
func (w *FileWaiter) Path() string {
	return w.path
}

func (w *FileWaiter) Success() (bool, error) {
	_, err := w.fsys.Stat(w.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", w.path, err)
}

func (w *FileWaiter) Describe() string {
	return fmt.Sprintf("<File %s>", w.path)
}

func (w *FileWaiter) Delete() error {
	return removeQuietly(w.fsys, w.path)
}

// Wanted is zero: a bare file is not counted as a job.
func (w *FileWaiter) Wanted() int {
	return 0
}

// CounterWaiter succeeds when its file holds an integer of at least wanted
// on its first line.
type CounterWaiter struct {
	fsys   FileSystem
	path   string
	wanted int
}

// NewCounterWaiter creates a CounterWaiter.
func NewCounterWaiter(fsys FileSystem, path string, wanted int) *CounterWaiter {
	return &CounterWaiter{fsys: fsys, path: path, wanted: wanted}
}

// Path returns the counter file.
func (w *CounterWaiter) Path() string {
	return w.path
}

// Probe reads the counter. Missing, empty and malformed files are
// NotReady; any other read error is Failed.
func (w *CounterWaiter) Probe() (State, error) {
	data, err := w.fsys.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NotReady, nil
		}
		return Failed, fmt.Errorf("reading counter %s: %w", w.path, err)
	}

	line := string(data)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	current, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return NotReady, nil
	}
	if current >= w.wanted {
		return Ready, nil
	}
	return NotReady, nil
}

func (w *CounterWaiter) Success() (bool, error) {
	state, err := w.Probe()
	return state == Ready, err
}

func (w *CounterWaiter) Describe() string {
	return fmt.Sprintf("<Value %d in %s>", w.wanted, w.path)
}

func (w *CounterWaiter) Delete() error {
	return removeQuietly(w.fsys, w.path)
}

func (w *CounterWaiter) Wanted() int {
	return w.wanted
}

// GlobWaiter succeeds when at least wanted files match its pattern.
type GlobWaiter struct {
	fsys    FileSystem
	pattern string
	wanted  int
	found   int
}

// NewGlobWaiter creates a GlobWaiter. The pattern is used as is; see
// New for the @ template form.
func NewGlobWaiter(fsys FileSystem, pattern string, wanted int) *GlobWaiter {
	return &GlobWaiter{fsys: fsys, pattern: pattern, wanted: wanted}
}

// Pattern returns the glob pattern.
func (w *GlobWaiter) Pattern() string {
	return w.pattern
}

// Found returns the match count seen by the last Success call.
func (w *GlobWaiter) Found() int {
	return w.found
}

func (w *GlobWaiter) Success() (bool, error) {
	matches, err := w.fsys.Glob(w.pattern)
	if err != nil {
		return false, fmt.Errorf("matching %s: %w", w.pattern, err)
	}
	w.found = len(matches)
	return w.found >= w.wanted, nil
}

// Describe shows how many files are still missing.
func (w *GlobWaiter) Describe() string {
	remaining := w.wanted - w.found
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("<%d/%d files matching %s>", remaining, w.wanted, w.pattern)
}

func (w *GlobWaiter) Delete() error {
	matches, err := w.fsys.Glob(w.pattern)
	if err != nil {
		return fmt.Errorf("matching %s: %w", w.pattern, err)
	}
	for _, m := range matches {
		if err := removeQuietly(w.fsys, m); err != nil {
			return err
		}
	}
	return nil
}

func (w *GlobWaiter) Wanted() int {
	return w.wanted
}

func removeQuietly(fsys FileSystem, path string) error {
	if err := fsys.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

var (
	_ Waiter = (*FileWaiter)(nil)
	_ Waiter = (*CounterWaiter)(nil)
	_ Waiter = (*GlobWaiter)(nil)
)
