package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/felixgeelhaar/statekit"
)

// Director selects, configures and runs the Lines of a pipeline.
type Director struct {
	rt        Runtime
	registry  *Registry
	selection Selection
	steps     []Line
	stopAt    string

	out     io.Writer
	metrics ports.RunMetrics
	view    func([]Line) string

	mu      sync.Mutex
	interp  *statekit.Interpreter[phaseContext]
	tracker *phaseTracker
}

// DirectorOption configures a Director.
type DirectorOption func(*Director)

// WithOutput sets where the step list and notices are printed
// (default: os.Stdout).
func WithOutput(w io.Writer) DirectorOption {
	return func(d *Director) {
		d.out = w
	}
}

// WithMetrics sets the run metrics collector.
func WithMetrics(m ports.RunMetrics) DirectorOption {
	return func(d *Director) {
		d.metrics = m
	}
}

// WithStepView sets the renderer for the step list shown before a run.
func WithStepView(view func([]Line) string) DirectorOption {
	return func(d *Director) {
		d.view = view
	}
}

// NewDirector creates a Director over registry, bound to rt.
func NewDirector(rt Runtime, registry *Registry, opts ...DirectorOption) (*Director, error) {
	tracker := &phaseTracker{}
	interp, err := buildPhaseMachine(tracker)
	if err != nil {
		return nil, fmt.Errorf("failed to build phase machine: %w", err)
	}

	d := &Director{
		rt:       rt,
		registry: registry,
		out:      os.Stdout,
		metrics:  ports.NopMetrics{},
		view:     PlainStepView,
		interp:   interp,
		tracker:  tracker,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.interp.Start()

	ctx := context.Background()
	log := rt.Logger()
	for _, lib := range registry.Libraries() {
		log.Debug(ctx, fmt.Sprintf("%d Lines loaded from library %s", len(lib.Lines), lib.Name))
	}
	for _, o := range registry.Overrides() {
		log.Warn(ctx, "step tag redefined", ports.F("tag", o.Tag), ports.F("previous", o.Previous), ports.F("library", o.Library))
	}

	return d, nil
}

// SetSteps sets the selection from a comma separated list.
func (d *Director) SetSteps(steplist string) {
	d.selection = ParseSelection(steplist)
}

// SetStepList sets the selection from a list of names.
func (d *Director) SetStepList(names []string) {
	d.selection = NewSelection(names)
}

// Selection returns the current selection.
func (d *Director) Selection() Selection {
	return d.selection
}

// StepPresent reports whether name is selected in any form.
func (d *Director) StepPresent(name string) bool {
	return d.selection.Present(name)
}

// StepDry reports whether name is selected as dry.
func (d *Director) StepDry(name string) bool {
	return d.selection.Dry(name)
}

// Step adds key when it is selected, dry if selected as such. Steps that
// are not selected are announced as unused. Returns the new Line or nil.
func (d *Director) Step(key string, props Properties) Line {
	if !d.StepPresent(key) {
		_, _ = fmt.Fprintf(d.out, "[Unused step: %s]\n", key)
		return nil
	}
	line := d.Add(key, props)
	if line != nil {
		line.SetDry(d.StepDry(key))
	}
	return line
}

// Add builds the Line for key and appends it. An unknown tag is logged
// and yields nil.
func (d *Director) Add(key string, props Properties) Line {
	factory, err := d.registry.Resolve(key)
	if err != nil {
		d.rt.Logger().Warn(context.Background(), "Warning: no Line for step", ports.F("key", key), ports.F("error", err))
		return nil
	}
	line := factory(NewBase(d.rt, key, props))
	d.steps = append(d.steps, line)
	return line
}

// Steps returns the materialised Lines in execution order.
func (d *Director) Steps() []Line {
	return append([]Line(nil), d.steps...)
}

// DryRun marks every step dry.
func (d *Director) DryRun() {
	for _, s := range d.steps {
		s.SetDry(true)
	}
}

// StartAt marks the steps before the first one with key dry, and that step
// and all later ones not dry. An empty key does nothing. A key that never
// matches leaves every step dry.
func (d *Director) StartAt(key string) {
	if key == "" {
		return
	}
	_, _ = fmt.Fprintf(d.out, "Starting at %s\n", key)
	dry := true
	for _, s := range d.steps {
		if s.Key() == key {
			dry = false
		}
		s.SetDry(dry)
	}
}

// StopAt ends dispatching after the step with key has been processed, in
// the current phase and all later ones.
func (d *Director) StopAt(key string) {
	d.stopAt = key
}

// Phase returns the lifecycle position.
func (d *Director) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Phase(d.interp.State().Value)
}

// History returns the phases entered so far, in order.
func (d *Director) History() []Phase {
	return d.tracker.snapshot()
}

func (d *Director) send(event string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

// ShowSteps prints the steps about to run and, when the runtime asks,
// waits for confirmation. It returns false if the user cancels.
func (d *Director) ShowSteps() bool {
	_, _ = fmt.Fprintln(d.out, "Ready to run the following steps:")
	_, _ = fmt.Fprint(d.out, d.view(d.steps))
	if !d.rt.Ask() {
		return true
	}
	if d.rt.Confirm("Press Enter to start execution.") {
		return true
	}
	_, _ = fmt.Fprintln(d.out, "\nExecution cancelled.")
	return false
}

// Run executes the pipeline: it applies the run-wide dry flag and the
// configured startAt and stopAt, confirms the step list, enters the run
// directory and runs all phases. It reports whether every phase succeeded.
func (d *Director) Run(ctx context.Context, title string) bool {
	if d.rt.Dry() {
		d.DryRun()
	}
	if key, ok := d.rt.Conf("startAt"); ok {
		d.StartAt(key)
	}
	if key, ok := d.rt.Conf("stopAt"); ok {
		d.StopAt(key)
	}

	if !d.ShowSteps() {
		return false
	}

	log := d.rt.Logger()
	ok, err := d.rt.Begin(ctx, title)
	if err != nil {
		log.Error(ctx, "failed to begin run", ports.F("error", err))
		return false
	}
	if !ok {
		return false
	}

	if err := d.rt.InitFiles(ctx); err != nil {
		log.Error(ctx, "failed to initialise run files", ports.F("error", err))
		_ = d.rt.Cleanup(ctx)
		return false
	}

	good := d.RunScript(ctx)
	if failed := d.FailedPhase(); failed != "" {
		log.Error(ctx, fmt.Sprintf("Run stopped in %s.", failed.Method()))
	} else if good {
		log.Info(ctx, "All phases complete.", ports.F("phase", d.Phase()))
	}

	if err := d.rt.Cleanup(ctx); err != nil {
		log.Error(ctx, "cleanup failed", ports.F("error", err))
		good = false
	}
	if err := d.metrics.Flush(); err != nil {
		log.Warn(ctx, "failed to write metrics", ports.F("error", err))
	}
	return good
}

// RunScript runs the phases in order, stopping after the first phase that
// fails. When all succeed the run is marked complete. A finished machine
// is reset first; while phases are running a second call fails at once.
func (d *Director) RunScript(ctx context.Context) bool {
	log := d.rt.Logger()
	d.rt.SetComplete(false)
	if current, ok := d.start(); !ok {
		log.Error(ctx, "Director: phases already running.", ports.F("phase", current))
		return false
	}
	for i, phase := range Phases {
		if i > 0 && !d.advance(phase) {
			log.Error(ctx, fmt.Sprintf("Director: cannot enter %s.", phase.Method()), ports.F("phase", d.Phase()))
			d.send(EventFail)
			return false
		}
		if !d.PerformAll(ctx, phase, phase.Halts()) {
			d.send(EventFail)
			return false
		}
	}
	d.send(EventComplete)
	d.rt.SetComplete(true)
	return true
}

// start moves the machine from idle into verify, resetting it and its
// history when an earlier run finished. It returns the current phase and
// false when a run is in progress.
func (d *Director) start() (Phase, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch current := Phase(d.interp.State().Value); current {
	case PhaseComplete, PhaseFailed:
		d.interp.Send(statekit.Event{Type: EventReset})
		d.tracker.reset()
	case PhaseIdle:
	default:
		return current, false
	}
	return d.enter(PhaseVerify)
}

// advance enters the next step phase.
func (d *Director) advance(p Phase) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.enter(p)
	return ok
}

// enter sends the event of p and reports whether the machine accepted it.
// The caller holds d.mu.
func (d *Director) enter(p Phase) (Phase, bool) {
	d.interp.Send(statekit.Event{Type: statekit.EventType(phaseEvents[p])})
	current := Phase(d.interp.State().Value)
	return current, current == p
}

// FailedPhase returns the step phase the last run failed in, or "" when
// it did not fail.
func (d *Director) FailedPhase() Phase {
	h := d.History()
	if n := len(h); n >= 2 && h[n-1] == PhaseFailed {
		return h[n-2]
	}
	return ""
}

// PerformAll dispatches phase to every step in order. A failing step is
// logged; with halt the phase returns at once, otherwise the remaining
// steps still run and the phase fails. Dispatching ends after the stopAt
// step, or when ctx is done.
func (d *Director) PerformAll(ctx context.Context, phase Phase, halt bool) bool {
	log := d.rt.Logger()
	method := phase.Method()
	started := time.Now()
	defer func() { d.metrics.ObservePhase(string(phase), time.Since(started)) }()

	good := true
	for _, l := range d.steps {
		if err := ctx.Err(); err != nil {
			log.Error(ctx, fmt.Sprintf("Interrupted before %s: %s", method, l.Key()), ports.F("error", err))
			return false
		}

		log.Info(ctx, fmt.Sprintf("Director: performing %s on `%s'.", method, l.Key()))
		stepCtx := ports.ContextWithLogger(ctx, log.With(ports.F("step", l.Key())))
		ok, err := phase.perform(stepCtx, l)
		if err != nil {
			log.Error(ctx, err.Error())
			return false
		}
		if ok {
			d.metrics.CountStep(string(phase), "ok")
		} else {
			d.metrics.CountStep(string(phase), "failed")
			log.Error(ctx, fmt.Sprintf("Error in %s: %s: %s", method, l.Key(), l.Status()))
			if halt {
				return false
			}
			good = false
		}

		if d.stopAt != "" && l.Key() == d.stopAt {
			log.Info(ctx, fmt.Sprintf("Stop requested at step %s.", l.Key()))
			break
		}
	}
	return good
}

// PlainStepView lists steps one per line, "+" for steps that run and "-"
// for dry ones.
func PlainStepView(steps []Line) string {
	var b strings.Builder
	for _, s := range steps {
		mark := "+"
		if s.Dry() {
			mark = "-"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, s.Key())
	}
	return b.String()
}
