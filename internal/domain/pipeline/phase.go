package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"
)

// Phase is a lifecycle stage of the Director.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseVerify      Phase = "verify"
	PhasePreExecute  Phase = "preexecute"
	PhaseExecute     Phase = "execute"
	PhasePostExecute Phase = "postexecute"
	PhaseReport      Phase = "report"
	PhaseComplete    Phase = "complete"
	PhaseFailed      Phase = "failed"
)

// Phases lists the step phases in execution order.
var Phases = []Phase{PhaseVerify, PhasePreExecute, PhaseExecute, PhasePostExecute, PhaseReport}

// Method returns the Line method name for a step phase.
func (p Phase) Method() string {
	switch p {
	case PhaseVerify:
		return "Verify"
	case PhasePreExecute:
		return "PreExecute"
	case PhaseExecute:
		return "Execute"
	case PhasePostExecute:
		return "PostExecute"
	case PhaseReport:
		return "Report"
	default:
		return string(p)
	}
}

// Halts reports whether a failure in this phase stops the phase at once.
func (p Phase) Halts() bool {
	return p == PhaseExecute
}

// perform calls the phase method of l.
func (p Phase) perform(ctx context.Context, l Line) (bool, error) {
	switch p {
	case PhaseVerify:
		return l.Verify(ctx), nil
	case PhasePreExecute:
		return l.PreExecute(ctx), nil
	case PhaseExecute:
		return l.Execute(ctx), nil
	case PhasePostExecute:
		return l.PostExecute(ctx), nil
	case PhaseReport:
		return l.Report(ctx), nil
	default:
		return false, fmt.Errorf("%s is not a step phase", p)
	}
}

// Events of the phase machine.
const (
	EventVerify      = "VERIFY"
	EventPreExecute  = "PREEXECUTE"
	EventExecute     = "EXECUTE"
	EventPostExecute = "POSTEXECUTE"
	EventReport      = "REPORT"
	EventComplete    = "COMPLETE"
	EventFail        = "FAIL"
	EventReset       = "RESET"
)

var phaseEvents = map[Phase]string{
	PhaseVerify:      EventVerify,
	PhasePreExecute:  EventPreExecute,
	PhaseExecute:     EventExecute,
	PhasePostExecute: EventPostExecute,
	PhaseReport:      EventReport,
}

// phaseContext is the statekit context of the phase machine. The Director
// only enters a phase the machine accepts.
type phaseContext struct{}

// phaseTracker records the phases the machine entered.
type phaseTracker struct {
	mu      sync.Mutex
	history []Phase
}

func (t *phaseTracker) enter(p Phase) func(*phaseContext, statekit.Event) {
	return func(_ *phaseContext, _ statekit.Event) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.history = append(t.history, p)
	}
}

func (t *phaseTracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = nil
}

func (t *phaseTracker) snapshot() []Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Phase(nil), t.history...)
}

// buildPhaseMachine constructs the Director lifecycle:
// idle → verify → preexecute → execute → postexecute → report → complete,
// with failed reachable from every step phase.
func buildPhaseMachine(tracker *phaseTracker) (*statekit.Interpreter[phaseContext], error) {
	machine, err := statekit.NewMachine[phaseContext]("actor-director").
		WithInitial("idle").
		WithContext(phaseContext{}).
		WithAction("enterVerify", tracker.enter(PhaseVerify)).
		WithAction("enterPreExecute", tracker.enter(PhasePreExecute)).
		WithAction("enterExecute", tracker.enter(PhaseExecute)).
		WithAction("enterPostExecute", tracker.enter(PhasePostExecute)).
		WithAction("enterReport", tracker.enter(PhaseReport)).
		WithAction("enterComplete", tracker.enter(PhaseComplete)).
		WithAction("enterFailed", tracker.enter(PhaseFailed)).
		State("idle").
		On(EventVerify).Target("verify").Done().
		State("verify").
		OnEntry("enterVerify").
		On(EventPreExecute).Target("preexecute").
		On(EventFail).Target("failed").Done().
		State("preexecute").
		OnEntry("enterPreExecute").
		On(EventExecute).Target("execute").
		On(EventFail).Target("failed").Done().
		State("execute").
		OnEntry("enterExecute").
		On(EventPostExecute).Target("postexecute").
		On(EventFail).Target("failed").Done().
		State("postexecute").
		OnEntry("enterPostExecute").
		On(EventReport).Target("report").
		On(EventFail).Target("failed").Done().
		State("report").
		OnEntry("enterReport").
		On(EventComplete).Target("complete").
		On(EventFail).Target("failed").Done().
		State("complete").
		OnEntry("enterComplete").
		On(EventReset).Target("idle").Done().
		State("failed").
		OnEntry("enterFailed").
		On(EventReset).Target("idle").Done().
		Build()

	if err != nil {
		return nil, err
	}

	return statekit.NewInterpreter(machine), nil
}
