package wait

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/actor/internal/adapters/filesystem"
	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenFS fails every call with a permission error.
type brokenFS struct{}

func (brokenFS) Stat(string) (ports.FileInfo, error) { return ports.FileInfo{}, fs.ErrPermission }
func (brokenFS) ReadFile(string) ([]byte, error)     { return nil, fs.ErrPermission }
func (brokenFS) Remove(string) error                 { return fs.ErrPermission }
func (brokenFS) Glob(string) ([]string, error)       { return nil, fs.ErrPermission }

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNew_Dispatch(t *testing.T) {
	fsys := filesystem.NewRealFileSystem()

	w := New(fsys, File("out.txt"))
	fw, ok := w.(*FileWaiter)
	require.True(t, ok, "bare path should give a FileWaiter, got %T", w)
	assert.Equal(t, "out.txt", fw.Path())
	assert.Equal(t, 0, fw.Wanted())

	w = New(fsys, Count("count.txt", 5))
	cw, ok := w.(*CounterWaiter)
	require.True(t, ok, "counted path should give a CounterWaiter, got %T", w)
	assert.Equal(t, "count.txt", cw.Path())
	assert.Equal(t, 5, cw.Wanted())

	w = New(fsys, Count("part@.done", 3))
	gw, ok := w.(*GlobWaiter)
	require.True(t, ok, "counted @ path should give a GlobWaiter, got %T", w)
	assert.Equal(t, "part*.done", gw.Pattern())
	assert.Equal(t, 3, gw.Wanted())
}

func TestFileWaiter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	w := NewFileWaiter(filesystem.NewRealFileSystem(), path)

	ok, err := w.Success()
	require.NoError(t, err)
	assert.False(t, ok)

	touch(t, path, "")
	ok, err = w.Success()
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, w.Delete())
	assert.NoFileExists(t, path)
	assert.NoError(t, w.Delete(), "deleting a missing file is not an error")

	assert.Equal(t, "<File "+path+">", w.Describe())
}

func TestCounterWaiter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "count.txt")
	w := NewCounterWaiter(filesystem.NewRealFileSystem(), path, 5)

	tests := []struct {
		name    string
		content *string
		want    State
	}{
		{name: "missing", content: nil, want: NotReady},
		{name: "below", content: strPtr("4\n"), want: NotReady},
		{name: "equal", content: strPtr("5"), want: Ready},
		{name: "above", content: strPtr(" 7 \nextra\n"), want: Ready},
		{name: "garbage", content: strPtr("abc"), want: NotReady},
		{name: "empty", content: strPtr(""), want: NotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = os.Remove(path)
			if tt.content != nil {
				touch(t, path, *tt.content)
			}
			state, err := w.Probe()
			require.NoError(t, err)
			assert.Equal(t, tt.want, state)

			ok, err := w.Success()
			require.NoError(t, err)
			assert.Equal(t, tt.want == Ready, ok)
		})
	}

	assert.Equal(t, "<Value 5 in "+path+">", w.Describe())
}

func TestCounterWaiter_IOError(t *testing.T) {
	w := NewCounterWaiter(brokenFS{}, "count.txt", 1)

	state, err := w.Probe()
	assert.Equal(t, Failed, state)
	assert.True(t, errors.Is(err, fs.ErrPermission))

	ok, err := w.Success()
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestFileWaiter_IOError(t *testing.T) {
	w := NewFileWaiter(brokenFS{}, "a.txt")

	_, err := w.Success()
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.ErrorIs(t, w.Delete(), fs.ErrPermission)
}

func TestGlobWaiter(t *testing.T) {
	dir := t.TempDir()
	w := New(filesystem.NewRealFileSystem(), Count(filepath.Join(dir, "part@.done"), 3)).(*GlobWaiter)

	touch(t, filepath.Join(dir, "part1.done"), "")
	touch(t, filepath.Join(dir, "part2.done"), "")
	touch(t, filepath.Join(dir, "other.txt"), "")

	ok, err := w.Success()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, w.Found())
	assert.Equal(t, "<1/3 files matching "+filepath.Join(dir, "part*.done")+">", w.Describe())

	touch(t, filepath.Join(dir, "part3.done"), "")
	ok, err = w.Success()
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, w.Delete())
	matches, err := filepath.Glob(filepath.Join(dir, "part*.done"))
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.FileExists(t, filepath.Join(dir, "other.txt"))
}

func TestGlobWaiter_BadPattern(t *testing.T) {
	w := NewGlobWaiter(filesystem.NewRealFileSystem(), "[bad", 1)

	_, err := w.Success()
	assert.Error(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not-ready", NotReady.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(9).String())
}

func strPtr(s string) *string {
	return &s
}
