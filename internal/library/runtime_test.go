package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/actor/internal/adapters/logging"
	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/domain/wait"
	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/felixgeelhaar/actor/internal/testutil/mocks"
)

// stubRuntime records shell, submit and wait calls against an in-memory
// file system.
type stubRuntime struct {
	fs       *mocks.FileSystem
	reporter *recordingReporter

	shellResult ports.CommandResult
	shellErr    error
	shells      []string

	submits   []ports.JobRequest
	submitErr error

	waits   []wait.Spec
	waitErr error
}

func newStubRuntime() *stubRuntime {
	return &stubRuntime{fs: mocks.NewFileSystem(), reporter: &recordingReporter{}}
}

func (r *stubRuntime) Logger() ports.Logger                        { return logging.NewNopLogger() }
func (r *stubRuntime) Conf(string) (string, bool)                  { return "", false }
func (r *stubRuntime) Config() ports.Config                        { return nil }
func (r *stubRuntime) FileSystem() ports.FileSystem                { return r.fs }
func (r *stubRuntime) Reporter() ports.Reporter                    { return r.reporter }
func (r *stubRuntime) Dry() bool                                   { return false }
func (r *stubRuntime) Ask() bool                                   { return false }
func (r *stubRuntime) Confirm(string) bool                         { return true }
func (r *stubRuntime) Begin(context.Context, string) (bool, error) { return true, nil }
func (r *stubRuntime) InitFiles(context.Context) error             { return nil }
func (r *stubRuntime) Cleanup(context.Context) error               { return nil }
func (r *stubRuntime) SetComplete(bool)                            {}

func (r *stubRuntime) Shell(_ context.Context, line string) (ports.CommandResult, error) {
	r.shells = append(r.shells, line)
	return r.shellResult, r.shellErr
}

func (r *stubRuntime) Submit(_ context.Context, _ string, req ports.JobRequest) (string, error) {
	if r.submitErr != nil {
		return "", r.submitErr
	}
	r.submits = append(r.submits, req)
	return fmt.Sprintf("%d", 100+len(r.submits)), nil
}

func (r *stubRuntime) Wait(_ context.Context, specs ...wait.Spec) error {
	r.waits = append(r.waits, specs...)
	return r.waitErr
}

// recordingReporter keeps report calls as text lines.
type recordingReporter struct {
	lines []string
}

func (r *recordingReporter) Scene(title string) error {
	r.lines = append(r.lines, "scene: "+title)
	return nil
}

func (r *recordingReporter) Paragraph(text string) error {
	r.lines = append(r.lines, "p: "+text)
	return nil
}

func (r *recordingReporter) Link(path, label string) error {
	r.lines = append(r.lines, "link: "+path)
	return nil
}

func (r *recordingReporter) Close() error { return nil }

func (r *recordingReporter) String() string {
	return strings.Join(r.lines, "\n")
}

// build resolves key in the builtin library and binds it to rt.
func build(rt pipeline.Runtime, key string, props pipeline.Properties) pipeline.Line {
	lib := Builtin()
	factory := lib.Lines[pipeline.TagOf(key)]
	return factory(pipeline.NewBase(rt, key, props))
}
