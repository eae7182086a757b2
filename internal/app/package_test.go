package app

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/felixgeelhaar/actor/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveArgs(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()

	fsys := mocks.NewFileSystem()
	assert.Equal(t, []string{"-x", "*.IN.*", "-r", "demo.zip", "demo"},
		ArchiveArgs(fsys, settings, "demo", "demo.zip"))

	fsys.AddFile("demo/.exclude", "demo/*.bam\n")
	assert.Equal(t, []string{"-x@demo/.exclude", "-x", "demo/.exclude", "-x", "*.IN.*", "-r", "demo.zip", "demo"},
		ArchiveArgs(fsys, settings, "demo", "demo.zip"))

	fsys.AddFile("demo/.files", "demo/*.html\n")
	assert.Equal(t, []string{"-i@demo/.files", "-x", "*.IN.*", "-r", "out.zip", "demo"},
		ArchiveArgs(fsys, settings, "demo", "out.zip"))
}

func TestActor_Package(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newActorFixture(t, "")
	f.fs.AddFile("demo/.files", "demo/*.html\n")
	f.runner.OnRun(func(ports.CommandCall) (ports.CommandResult, error) {
		return ports.CommandResult{}, nil
	})

	archive, err := f.actor.Package(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "demo.zip", archive)
	assert.Equal(t, []string{"zip -i@demo/.files -x *.IN.* -r demo.zip demo"}, f.runner.CommandLines())
	assert.Contains(t, f.log.String(), "Executing: zip -i@demo/.files")
}

func TestActor_PackageFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newActorFixture(t, "")
	f.runner.OnRun(func(ports.CommandCall) (ports.CommandResult, error) {
		return ports.CommandResult{ExitCode: 12, Stderr: "zip error: Nothing to do!\n"}, nil
	})
	_, err := f.actor.Package(ctx, "x.zip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip exited with code 12: zip error: Nothing to do!")

	f.runner.OnRun(func(ports.CommandCall) (ports.CommandResult, error) {
		return ports.CommandResult{}, errors.New("executable file not found")
	})
	_, err = f.actor.Package(ctx, "x.zip")
	assert.ErrorContains(t, err, "failed to run zip")
}
