// Package mocks provides test doubles for the ports interfaces.
package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/felixgeelhaar/actor/internal/ports"
)

// RunFunc computes the outcome of a command call.
type RunFunc func(call ports.CommandCall) (ports.CommandResult, error)

// CommandRunner is a thread-safe test double for ports.CommandRunner.
// Exact registrations take precedence over the fallback handler.
type CommandRunner struct {
	mu       sync.Mutex
	results  map[string]ports.CommandResult
	errors   map[string]error
	fallback RunFunc
	calls    []ports.CommandCall
}

// NewCommandRunner creates a new CommandRunner mock.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		results: make(map[string]ports.CommandResult),
		errors:  make(map[string]error),
	}
}

// AddResult registers the result of an exact command line.
func (m *CommandRunner) AddResult(command string, args []string, result ports.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[buildKey(command, args)] = result
}

// AddError registers an exact command line that fails to run.
func (m *CommandRunner) AddError(command string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[buildKey(command, args)] = err
}

// OnRun sets the handler for calls without an exact registration.
func (m *CommandRunner) OnRun(fn RunFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = fn
}

// Run records the call and returns the registered outcome.
func (m *CommandRunner) Run(_ context.Context, command string, args ...string) (ports.CommandResult, error) {
	call := ports.CommandCall{Command: command, Args: append([]string(nil), args...)}

	m.mu.Lock()
	m.calls = append(m.calls, call)
	key := buildKey(command, args)
	err, hasErr := m.errors[key]
	result, hasResult := m.results[key]
	fallback := m.fallback
	m.mu.Unlock()

	switch {
	case hasErr:
		return ports.CommandResult{}, err
	case hasResult:
		return result, nil
	case fallback != nil:
		return fallback(call)
	default:
		return ports.CommandResult{}, fmt.Errorf("no mock result for command: %s", call)
	}
}

// Calls returns all recorded invocations.
func (m *CommandRunner) Calls() []ports.CommandCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]ports.CommandCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CommandLines returns the recorded invocations rendered as strings.
func (m *CommandRunner) CommandLines() []string {
	calls := m.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.String())
	}
	return out
}

// Reset clears registrations and recorded calls.
func (m *CommandRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = make(map[string]ports.CommandResult)
	m.errors = make(map[string]error)
	m.fallback = nil
	m.calls = nil
}

func buildKey(command string, args []string) string {
	return command + "\x00" + strings.Join(args, "\x00")
}

var _ ports.CommandRunner = (*CommandRunner)(nil)
