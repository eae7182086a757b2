package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/actor/internal/adapters/journal"
	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRunID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

func writeJournal(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	at := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, j.Record(ctx, ports.JobRecord{JobID: "101", RunID: testRunID, Step: "submit.align", Script: "align.qsub", SubmittedAt: at}))
	require.NoError(t, j.Record(ctx, ports.JobRecord{JobID: "102", RunID: testRunID, Step: "submit.count", Script: "count.qsub", After: []string{"101"}, SubmittedAt: at}))
	require.NoError(t, j.Record(ctx, ports.JobRecord{JobID: "900", RunID: "other-run", Step: "submit", Script: "x.qsub", SubmittedAt: at}))
	return path
}

func TestPrintJobs_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJobs(&buf, nil))
	assert.Equal(t, "No jobs recorded.\n", buf.String())
}

func TestRunJobs(t *testing.T) {
	resetFlag(t, &jobsJournal, writeJournal(t))
	resetFlag(t, &jobsRun, testRunID)
	resetFlag(t, &jobsJSON, false)

	cmd, out := newTestCommand(t)
	require.NoError(t, runJobs(cmd, nil))

	assert.Contains(t, out.String(), "JOB")
	assert.Regexp(t, `102\s+6ba7b810\s+submit\.count\s+count\.qsub\s+101`, out.String())
	assert.NotContains(t, out.String(), "900")
	assert.Contains(t, out.String(), "Total: 2")
}

func TestRunJobs_JSON(t *testing.T) {
	resetFlag(t, &jobsJournal, writeJournal(t))
	resetFlag(t, &jobsRun, "")
	resetFlag(t, &jobsJSON, true)

	cmd, out := newTestCommand(t)
	require.NoError(t, runJobs(cmd, nil))
	assert.Contains(t, out.String(), `"JobID": "900"`)
}

func TestRunJobs_InvalidRun(t *testing.T) {
	resetFlag(t, &jobsRun, "not-a-run")

	cmd, _ := newTestCommand(t)
	assert.Error(t, runJobs(cmd, nil))
}
