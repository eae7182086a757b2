// Package ports defines the interfaces the pipeline core uses to reach the
// outside world: processes, files, logs, configuration, reports and the
// cluster scheduler.
package ports

import (
	"context"
	"strings"
)

// CommandResult represents the result of executing a command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// Output returns stdout without the trailing newline, the way shell
// substitution would.
func (r CommandResult) Output() string {
	return strings.TrimRight(r.Stdout, "\r\n")
}

// CommandCall records a command invocation.
type CommandCall struct {
	Command string
	Args    []string
}

// String renders the call as a single command line.
func (c CommandCall) String() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	return c.Command + " " + strings.Join(c.Args, " ")
}

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)
}

// ShellCommand returns the command and arguments that run line through
// /bin/sh, allowing pipes and redirection.
func ShellCommand(line string) (string, []string) {
	return "sh", []string{"-c", line}
}
