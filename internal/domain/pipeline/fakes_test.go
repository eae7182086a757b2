package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/actor/internal/adapters/logging"
	"github.com/felixgeelhaar/actor/internal/domain/wait"
	"github.com/felixgeelhaar/actor/internal/ports"
)

// fakeRuntime is an in-memory Runtime.
type fakeRuntime struct {
	logBuf   bytes.Buffer
	logger   ports.Logger
	conf     map[string]string
	dry      bool
	ask      bool
	confirm  bool
	beginOK  bool
	beginErr error

	mu       sync.Mutex
	calls    []string
	complete bool
}

func newFakeRuntime() *fakeRuntime {
	rt := &fakeRuntime{conf: map[string]string{}, beginOK: true, confirm: true}
	rt.logger = logging.New(logging.WithOutput(&rt.logBuf), logging.WithTimestamp(false), logging.WithLevelLabel(false))
	return rt
}

func (r *fakeRuntime) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *fakeRuntime) Logger() ports.Logger { return r.logger }
func (r *fakeRuntime) Conf(key string) (string, bool) {
	v, ok := r.conf[key]
	return v, ok
}
func (r *fakeRuntime) Config() ports.Config            { return nil }
func (r *fakeRuntime) FileSystem() ports.FileSystem    { return nil }
func (r *fakeRuntime) Reporter() ports.Reporter        { return ports.NopReporter{} }
func (r *fakeRuntime) Dry() bool                       { return r.dry }
func (r *fakeRuntime) Ask() bool                       { return r.ask }
func (r *fakeRuntime) Confirm(string) bool             { r.record("confirm"); return r.confirm }
func (r *fakeRuntime) SetComplete(complete bool)       { r.complete = complete }
func (r *fakeRuntime) InitFiles(context.Context) error { r.record("initFiles"); return nil }
func (r *fakeRuntime) Cleanup(context.Context) error   { r.record("cleanup"); return nil }

func (r *fakeRuntime) Begin(_ context.Context, title string) (bool, error) {
	r.record("begin " + title)
	return r.beginOK, r.beginErr
}

func (r *fakeRuntime) Shell(context.Context, string) (ports.CommandResult, error) {
	return ports.CommandResult{}, nil
}

func (r *fakeRuntime) Submit(context.Context, string, ports.JobRequest) (string, error) {
	return "1", nil
}

func (r *fakeRuntime) Wait(context.Context, ...wait.Spec) error { return nil }

func (r *fakeRuntime) log() string { return r.logBuf.String() }

// trace records phase calls across all recording lines.
type trace struct {
	events []string
}

func (t *trace) add(format string, args ...interface{}) {
	t.events = append(t.events, fmt.Sprintf(format, args...))
}

func (t *trace) String() string {
	return strings.Join(t.events, " ")
}

// recordingLine logs every phase call and fails the phases listed in fail.
type recordingLine struct {
	Base
	trace *trace
	fail  map[Phase]bool
}

func (l *recordingLine) do(p Phase) bool {
	dry := ""
	if p == PhaseExecute && l.Dry() {
		dry = "(dry)"
	}
	l.trace.add("%s:%s%s", p, l.Key(), dry)
	if l.fail[p] {
		return l.Fail("%s broke", p)
	}
	return true
}

func (l *recordingLine) Verify(context.Context) bool      { return l.do(PhaseVerify) }
func (l *recordingLine) PreExecute(context.Context) bool  { return l.do(PhasePreExecute) }
func (l *recordingLine) Execute(context.Context) bool     { return l.do(PhaseExecute) }
func (l *recordingLine) PostExecute(context.Context) bool { return l.do(PhasePostExecute) }
func (l *recordingLine) Report(context.Context) bool      { return l.do(PhaseReport) }

// recordingLibrary returns a library with tags a, b, c, d and x whose lines
// share tr. Lines with a key listed in failures fail in the given phase.
func recordingLibrary(tr *trace, failures map[string]Phase) Library {
	factory := func(b Base) Line {
		l := &recordingLine{Base: b, trace: tr, fail: map[Phase]bool{}}
		if p, ok := failures[b.Key()]; ok {
			l.fail[p] = true
		}
		return l
	}
	lines := map[string]Factory{}
	for _, tag := range []string{"a", "b", "c", "d", "x"} {
		lines[tag] = factory
	}
	return Library{Name: "recording", Lines: lines}
}

// countingMetrics counts step results per phase.
type countingMetrics struct {
	counts  map[string]int
	phases  map[string]time.Duration
	flushed int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{counts: map[string]int{}, phases: map[string]time.Duration{}}
}

func (m *countingMetrics) ObservePhase(phase string, d time.Duration) { m.phases[phase] += d }
func (m *countingMetrics) CountStep(phase, result string)             { m.counts[phase+"/"+result]++ }
func (m *countingMetrics) AddWaitUnits(int)                           {}
func (m *countingMetrics) Flush() error                               { m.flushed++; return nil }
