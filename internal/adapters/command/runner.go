// Package command provides command execution adapters: a local runner and an
// SSH runner for submitting jobs from a remote cluster login node.
package command

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/felixgeelhaar/actor/internal/ports"
)

// RealRunner executes local commands.
type RealRunner struct {
	dir string
	env []string
}

// NewRealRunner creates a new RealRunner that runs in the current directory.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// WithDir returns a runner that executes commands in dir.
func (r *RealRunner) WithDir(dir string) *RealRunner {
	return &RealRunner{dir: dir, env: r.env}
}

// WithEnv returns a runner that adds the given KEY=VALUE pairs to the
// inherited environment.
func (r *RealRunner) WithEnv(env ...string) *RealRunner {
	merged := make([]string, 0, len(r.env)+len(env))
	merged = append(merged, r.env...)
	merged = append(merged, env...)
	return &RealRunner{dir: r.dir, env: merged}
}

// Run executes a command and returns the result. A non-zero exit is
// reported through the result, not as an error.
func (r *RealRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = r.dir
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := ports.CommandResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}

// Ensure RealRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*RealRunner)(nil)
