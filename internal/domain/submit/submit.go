// Package submit hands batch jobs to the cluster submit command and keeps
// a journal of what was submitted.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/actor/internal/ports"
)

// DefaultCommand is the cluster submit wrapper.
const DefaultCommand = "submit"

// ErrNoJobID is returned when the submit command prints no job id.
var ErrNoJobID = errors.New("submit command returned no job id")

// CommandLine builds the arguments of the submit wrapper for req:
// -after for each dependency, -done, -o and -p, then the script and its
// arguments.
func CommandLine(req ports.JobRequest) []string {
	var args []string
	for _, id := range req.After {
		if id = strings.TrimSpace(id); id != "" {
			args = append(args, "-after", id)
		}
	}
	if req.Done != "" {
		args = append(args, "-done", req.Done)
	}
	if req.Options != "" {
		args = append(args, "-o", req.Options)
	}
	if req.Prefix != "" {
		args = append(args, "-p", req.Prefix)
	}
	args = append(args, req.Script)
	args = append(args, req.Args...)
	return args
}

// ParseJobID returns the last non-empty line of the submit output.
func ParseJobID(stdout string) (string, error) {
	lines := strings.Split(stdout, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if id := strings.TrimSpace(lines[i]); id != "" {
			return id, nil
		}
	}
	return "", ErrNoJobID
}

// Submitter runs the submit command and journals each job.
type Submitter struct {
	runner  ports.CommandRunner
	command []string
	journal ports.JobJournal
	logger  ports.Logger
	runID   string
	user    string
	now     func() time.Time
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithCommand sets the submit command. It may carry leading arguments,
// e.g. "submit -q long".
func WithCommand(command string) Option {
	return func(s *Submitter) {
		if fields := strings.Fields(command); len(fields) > 0 {
			s.command = fields
		}
	}
}

// WithJournal records every submission in j.
func WithJournal(j ports.JobJournal) Option {
	return func(s *Submitter) {
		s.journal = j
	}
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(s *Submitter) {
		s.logger = l
	}
}

// WithRun tags journal entries with a run id and user.
func WithRun(runID, user string) Option {
	return func(s *Submitter) {
		s.runID = runID
		s.user = user
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Submitter) {
		s.now = now
	}
}

// NewSubmitter creates a Submitter that runs commands through runner.
func NewSubmitter(runner ports.CommandRunner, opts ...Option) *Submitter {
	s := &Submitter{
		runner:  runner,
		command: []string{DefaultCommand},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit launches req and returns the scheduler job id.
func (s *Submitter) Submit(ctx context.Context, req ports.JobRequest) (string, error) {
	return s.SubmitFor(ctx, "", req)
}

// SubmitFor launches req on behalf of a pipeline step.
func (s *Submitter) SubmitFor(ctx context.Context, step string, req ports.JobRequest) (string, error) {
	if req.Script == "" {
		return "", fmt.Errorf("submit: no script given")
	}

	args := append(append([]string(nil), s.command[1:]...), CommandLine(req)...)
	call := ports.CommandCall{Command: s.command[0], Args: args}
	if s.logger != nil {
		s.logger.Info(ctx, "Submitting job", ports.F("cmd", call.String()), ports.F("step", step))
	}

	result, err := s.runner.Run(ctx, call.Command, call.Args...)
	if err != nil {
		return "", fmt.Errorf("failed to run %s: %w", call.Command, err)
	}
	if !result.Success() {
		return "", fmt.Errorf("%s exited with code %d: %s", call.Command, result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	jobID, err := ParseJobID(result.Stdout)
	if err != nil {
		return "", err
	}

	if s.journal != nil {
		rec := ports.JobRecord{
			JobID:       jobID,
			RunID:       s.runID,
			Step:        step,
			Script:      req.Script,
			Args:        req.Args,
			After:       req.After,
			Done:        req.Done,
			User:        s.user,
			SubmittedAt: s.now(),
		}
		if err := s.journal.Record(ctx, rec); err != nil && s.logger != nil {
			s.logger.Warn(ctx, "failed to journal job", ports.F("job", jobID), ports.F("error", err))
		}
	}

	return jobID, nil
}

var _ ports.Submitter = (*Submitter)(nil)
