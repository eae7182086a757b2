package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/actor/internal/adapters/journal"
	"github.com/felixgeelhaar/actor/internal/app"
	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/library"
	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/felixgeelhaar/actor/internal/testutil"
	"github.com/felixgeelhaar/actor/internal/testutil/mocks"
	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVersionInfo() VersionInfo {
	return VersionInfo{Version: "1.2.0", Commit: "abc1234", BuildDate: "2024-03-09"}
}

// newTestServer creates an MCP server with all tools registered.
func newTestServer(t *testing.T, opts Options) *mcp.Server {
	t.Helper()
	if opts.Registry == nil {
		opts.Registry = pipeline.NewRegistry(library.Builtin())
	}
	if opts.FileSystem == nil {
		opts.FileSystem = mocks.NewFileSystem()
	}
	opts.Version = testVersionInfo()
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
	RegisterAll(srv, opts)
	return srv
}

// executeTool retrieves and executes a registered tool by name.
func executeTool(t *testing.T, srv *mcp.Server, toolName string, input interface{}) (interface{}, error) {
	t.Helper()
	tool, ok := srv.GetTool(toolName)
	require.True(t, ok, "tool %q should be registered", toolName)

	data, err := json.Marshal(input)
	require.NoError(t, err)

	return tool.Execute(context.Background(), data)
}

func writeDefinition(t *testing.T) string {
	t.Helper()
	yaml := testutil.NewDefinitionBuilder("demo").
		WithTitle("Demo Pipeline").
		WithStep("mkdir.results", "path", "results").
		WithStep("note.intro", "text", "hello").
		WithStep("bogus.step").
		Build().
		ToYAML()
	return testutil.WriteTempFile(t, t.TempDir(), "pipeline.yaml", yaml)
}

func TestRegisterAll_Tools(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{})
	for _, name := range []string{"actor_steps", "actor_plan", "actor_wait_check", "actor_status"} {
		_, ok := srv.GetTool(name)
		assert.True(t, ok, name)
	}
	_, ok := srv.GetTool("actor_jobs")
	assert.False(t, ok, "actor_jobs needs a journal")
}

func TestStepsTool(t *testing.T) {
	t.Parallel()

	extra := pipeline.Library{Name: "site", Lines: map[string]pipeline.Factory{
		"note": func(b pipeline.Base) pipeline.Line { return &b },
	}}
	srv := newTestServer(t, Options{Registry: pipeline.NewRegistry(library.Builtin(), extra)})

	result, err := executeTool(t, srv, "actor_steps", StepsInput{})
	require.NoError(t, err)
	output, ok := result.(*StepsOutput)
	require.True(t, ok, "result should be *StepsOutput")

	assert.Contains(t, output.Steps, StepInfo{Tag: "shell", Library: library.Name})
	assert.Contains(t, output.Steps, StepInfo{Tag: "note", Library: "site"})
	assert.Equal(t, []OverrideInfo{{Tag: "note", Previous: library.Name, Library: "site"}}, output.Overrides)

	result, err = executeTool(t, srv, "actor_steps", StepsInput{Library: "site"})
	require.NoError(t, err)
	assert.Equal(t, []StepInfo{{Tag: "note", Library: "site"}}, result.(*StepsOutput).Steps)
}

func TestPlanTool(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{})
	path := writeDefinition(t)

	result, err := executeTool(t, srv, "actor_plan", PlanInput{
		DefinitionPath: path,
		Steps:          "mkdir.results,-note.intro,bogus.step",
	})
	require.NoError(t, err)
	output, ok := result.(*PlanOutput)
	require.True(t, ok, "result should be *PlanOutput")

	assert.Equal(t, "demo", output.Name)
	assert.Equal(t, "Demo Pipeline", output.Title)
	assert.Equal(t, PlanSummary{Declared: 3, Selected: 2, Run: 1, Dry: 1, Unknown: 1}, output.Summary)
	require.Len(t, output.Steps, 3)
	assert.Equal(t, app.PlannedStep{Key: "note.intro", Tag: "note", Library: library.Name, Selected: true, Known: true, Dry: true}, output.Steps[1])
}

func TestPlanTool_Dry(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{})
	result, err := executeTool(t, srv, "actor_plan", PlanInput{DefinitionPath: writeDefinition(t), Dry: true})
	require.NoError(t, err)

	summary := result.(*PlanOutput).Summary
	assert.Equal(t, 0, summary.Run)
	assert.Equal(t, 2, summary.Dry)
}

func TestPlanTool_Errors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{DefaultDefinition: filepath.Join(t.TempDir(), "missing.yaml")})

	_, err := executeTool(t, srv, "actor_plan", PlanInput{})
	assert.Error(t, err)

	_, err = executeTool(t, srv, "actor_plan", PlanInput{DefinitionPath: "pipeline.json"})
	assert.ErrorContains(t, err, "invalid definition_path")

	_, err = executeTool(t, srv, "actor_plan", PlanInput{DefinitionPath: "p.yaml", StartAt: "bad key"})
	assert.ErrorContains(t, err, "invalid start_at")
}

func TestWaitCheckTool(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("align.done", "")
	fs.AddFile("count-1.done", "")
	srv := newTestServer(t, Options{FileSystem: fs})

	result, err := executeTool(t, srv, "actor_wait_check", WaitCheckInput{Specs: []string{"align.done", "count-@.done:2"}})
	require.NoError(t, err)
	output, ok := result.(*WaitCheckOutput)
	require.True(t, ok, "result should be *WaitCheckOutput")
	assert.False(t, output.Satisfied)
	assert.Equal(t, 2, output.Total)
	assert.Equal(t, 1, output.Pending)
	assert.Contains(t, output.Waiting, "count-*.done")
	assert.True(t, fs.Exists("align.done"), "files are left in place")

	fs.AddFile("count-2.done", "")
	result, err = executeTool(t, srv, "actor_wait_check", WaitCheckInput{Specs: []string{"align.done", "count-@.done:2"}})
	require.NoError(t, err)
	output = result.(*WaitCheckOutput)
	assert.True(t, output.Satisfied)
	assert.Equal(t, 2, output.Jobs)
	assert.Empty(t, output.Waiting)
}

func TestWaitCheckTool_InvalidInput(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{})

	_, err := executeTool(t, srv, "actor_wait_check", WaitCheckInput{})
	assert.ErrorContains(t, err, "invalid specs")

	_, err = executeTool(t, srv, "actor_wait_check", WaitCheckInput{Specs: []string{"../outside.done"}})
	assert.ErrorContains(t, err, "invalid spec")
}

func TestStatusTool(t *testing.T) {
	t.Parallel()

	path := writeDefinition(t)
	fs := mocks.NewFileSystem()
	fs.AddFile(path, "")
	srv := newTestServer(t, Options{FileSystem: fs, DefaultDefinition: path})

	result, err := executeTool(t, srv, "actor_status", StatusInput{})
	require.NoError(t, err)
	output, ok := result.(*StatusOutput)
	require.True(t, ok, "result should be *StatusOutput")

	assert.Equal(t, "1.2.0", output.Version)
	assert.Equal(t, "abc1234", output.Commit)
	assert.True(t, output.DefinitionExists)
	assert.True(t, output.IsValid)
	assert.Equal(t, 3, output.StepCount)
}

func TestStatusTool_Missing(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{})

	result, err := executeTool(t, srv, "actor_status", StatusInput{DefinitionPath: "none.yaml"})
	require.NoError(t, err)
	output := result.(*StatusOutput)
	assert.False(t, output.DefinitionExists)
	assert.False(t, output.IsValid)
	assert.Equal(t, "none.yaml", output.DefinitionPath)
}

func TestJobsTool(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	ctx := context.Background()
	runID := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	base := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	for i, id := range []string{"101", "102", "103"} {
		require.NoError(t, j.Record(ctx, ports.JobRecord{
			JobID:       id,
			RunID:       runID,
			Step:        "submit.align",
			Script:      "align.qsub",
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, j.Record(ctx, ports.JobRecord{JobID: "200", RunID: "other", Step: "submit", Script: "x.qsub", SubmittedAt: base}))
	require.NoError(t, j.Close())

	srv := newTestServer(t, Options{OpenJournal: func() (ports.JobJournal, error) { return journal.Open(path) }})

	result, err := executeTool(t, srv, "actor_jobs", JobsInput{RunID: runID, Limit: 2})
	require.NoError(t, err)
	output, ok := result.(*JobsOutput)
	require.True(t, ok, "result should be *JobsOutput")

	assert.Equal(t, 3, output.Total)
	require.Len(t, output.Jobs, 2)
	assert.Equal(t, "103", output.Jobs[0].JobID)
	assert.Equal(t, "2024-03-09T14:07:00Z", output.Jobs[0].SubmittedAt)
	assert.Equal(t, "102", output.Jobs[1].JobID)

	result, err = executeTool(t, srv, "actor_jobs", JobsInput{})
	require.NoError(t, err)
	assert.Equal(t, 4, result.(*JobsOutput).Total)

	_, err = executeTool(t, srv, "actor_jobs", JobsInput{RunID: "not-a-uuid"})
	assert.ErrorContains(t, err, "invalid run_id")
}
