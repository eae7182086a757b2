package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_RecordAndList(t *testing.T) {
	j, err := OpenMemory()
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	require.NoError(t, j.Record(ctx, ports.JobRecord{
		JobID: "101", RunID: "r1", Step: "align", Script: "align.qsub",
		Args: []string{"s1.fastq"}, Done: "align-@.done", User: "alice", SubmittedAt: at,
	}))
	require.NoError(t, j.Record(ctx, ports.JobRecord{
		JobID: "102", RunID: "r1", Step: "count", Script: "count.qsub",
		After: []string{"101"}, SubmittedAt: at.Add(time.Minute),
	}))
	require.NoError(t, j.Record(ctx, ports.JobRecord{JobID: "200", RunID: "r2", Script: "x.qsub", SubmittedAt: at}))

	jobs, err := j.List(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "101", jobs[0].JobID)
	assert.Equal(t, []string{"s1.fastq"}, jobs[0].Args)
	assert.Empty(t, jobs[0].After)
	assert.Equal(t, "align-@.done", jobs[0].Done)
	assert.Equal(t, "alice", jobs[0].User)
	assert.True(t, at.Equal(jobs[0].SubmittedAt))
	assert.Equal(t, []string{"101"}, jobs[1].After)

	all, err := j.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestJournal_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(context.Background(), ports.JobRecord{JobID: "1", Script: "a.qsub"}))
	require.NoError(t, j.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	j, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	jobs, err := j.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.False(t, jobs[0].SubmittedAt.IsZero())
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "actor", "journal.db"), p)

	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/alice")
	p, err = DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/alice", ".local", "share", "actor", "journal.db"), p)
}
