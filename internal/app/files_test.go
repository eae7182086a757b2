package app

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/actor/internal/adapters/config"
	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/felixgeelhaar/actor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActor_BeginCreatesRunDir(t *testing.T) {
	t.Parallel()

	f := newActorFixture(t, "")
	ok, err := f.actor.Begin(context.Background(), "Demo run")
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, f.fs.Exists("demo"))
	assert.Equal(t, []string{"demo"}, f.chdirs)
	index := f.fs.Content("index.html")
	assert.Contains(t, index, "<h1>Demo run</h1>")
	assert.Contains(t, index, "Genomes")
	assert.Contains(t, index, "/work/demo")
	assert.True(t, f.fs.Exists("toc.html"))

	require.NoError(t, f.actor.Reporter().Scene("Alignment"))
	assert.Contains(t, f.fs.Content("index.html"), "1. Alignment")
}

func TestActor_BeginExistingDir(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	declined := newActorFixture(t, "n\n")
	declined.fs.AddDir("demo")
	ok, err := declined.actor.Begin(ctx, "Demo")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, declined.chdirs)
	assert.Contains(t, declined.out.String(), "The output directory already exists. Proceed anyway? (Y/n) ")

	accepted := newActorFixture(t, "\n")
	accepted.fs.AddDir("demo")
	ok, err = accepted.actor.Begin(ctx, "Demo")
	require.NoError(t, err)
	assert.True(t, ok)

	silent := newActorFixture(t, "", WithAsk(false))
	silent.fs.AddDir("demo")
	ok, err = silent.actor.Begin(ctx, "Demo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, silent.out.String())
}

func TestActor_BeginCopiesConfig(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFixtureToDir(t, t.TempDir(), "actor.conf", "actor.conf")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	f := newActorFixture(t, "")
	f.fs.AddFile(path, "[General]\nlabel = demo\n")
	f.actor.cfg = cfg

	ok, err := f.actor.Begin(context.Background(), "Demo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[General]\nlabel = demo\n", f.fs.Content(filepath.Join("demo", "actor.conf")))
	assert.Contains(t, f.fs.Content("index.html"), "<h1>Demo</h1>")
	assert.NotContains(t, f.fs.Content("index.html"), "(c) Demo Lab", "copyright closes the report")

	require.NoError(t, f.actor.Cleanup(context.Background()))
	assert.Contains(t, f.fs.Content("index.html"), "(c) Demo Lab")
}

func TestActor_BeginReportFailure(t *testing.T) {
	t.Parallel()

	f := newActorFixture(t, "")
	f.fs.SetError("index.html", errors.New("disk full"))

	ok, err := f.actor.Begin(context.Background(), "Demo")
	assert.False(t, ok)
	assert.Error(t, err)
	assert.Equal(t, []string{"demo", "/work"}, f.chdirs)
}

func TestActor_InitFiles(t *testing.T) {
	t.Parallel()

	logfile := &closeRecorder{}
	f := newActorFixture(t, "", WithLogOpener(func(path string) (io.WriteCloser, error) {
		assert.Equal(t, "run.log", path)
		return logfile, nil
	}))
	f.cfg.Set(ports.SectionGeneral, "logfile", "run.log")
	f.fs.AddFile("align-1.done", "")
	f.fs.AddFile("tmp-sorted", "")
	f.fs.AddFile("counts.csv", "")
	f.fs.AddFile("sub/x.done", "")
	ctx := context.Background()

	require.NoError(t, f.actor.InitFiles(ctx))
	assert.ElementsMatch(t, []string{".files", "counts.csv", "sub/x.done"}, f.fs.Files())

	lines := strings.Split(strings.TrimSpace(f.fs.Content(".files")), "\n")
	assert.Len(t, lines, len(DefaultSettings().IncludePatterns))
	assert.Equal(t, "demo/*.html", lines[0])
	assert.Equal(t, "demo/*.conf", lines[len(lines)-1])

	f.actor.Logger().Info(ctx, "Executing: true")
	assert.Contains(t, logfile.String(), "[INFO] Executing: true")

	require.NoError(t, f.actor.Cleanup(ctx))
	assert.True(t, logfile.closed)
	f.actor.Logger().Info(ctx, "after cleanup")
	assert.NotContains(t, logfile.String(), "after cleanup")
}

func TestActor_InitFilesLogError(t *testing.T) {
	t.Parallel()

	f := newActorFixture(t, "", WithLogOpener(func(string) (io.WriteCloser, error) {
		return nil, errors.New("read-only file system")
	}))
	f.cfg.Set(ports.SectionGeneral, "logfile", "run.log")
	assert.Error(t, f.actor.InitFiles(context.Background()))
}

func TestActor_Cleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newActorFixture(t, "")
	ok, err := f.actor.Begin(ctx, "Demo")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, f.actor.Reporter().Scene("Counts"))

	require.NoError(t, f.actor.Cleanup(ctx))
	assert.Equal(t, []string{"demo", "/work"}, f.chdirs)
	assert.Contains(t, f.fs.Content("index.html"), "</html>")
	assert.Equal(t, ports.NopReporter{}, f.actor.Reporter())

	require.NoError(t, f.actor.Cleanup(ctx))
	assert.Len(t, f.chdirs, 2)
}

func TestActor_PackageLists(t *testing.T) {
	t.Parallel()

	f := newActorFixture(t, "")
	require.NoError(t, f.actor.AddToInclude("plots/*.svg"))
	require.NoError(t, f.actor.Exclude("*.bam", "*.bai"))
	require.NoError(t, f.actor.Mkdir("results/qc"))

	assert.Equal(t, "demo/plots/*.svg\n", f.fs.Content(".files"))
	assert.Equal(t, "demo/*.bam\ndemo/*.bai\n", f.fs.Content(".exclude"))
	assert.True(t, f.fs.Exists("results/qc"))

	stale, err := f.actor.MissingOrStale("results/out.txt")
	require.NoError(t, err)
	assert.True(t, stale)
}
