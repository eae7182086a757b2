package pipeline

import (
	"context"

	"github.com/felixgeelhaar/actor/internal/domain/wait"
	"github.com/felixgeelhaar/actor/internal/ports"
)

// Runtime is the process-wide context Lines and the Director work in.
type Runtime interface {
	Logger() ports.Logger
	// Conf reads a [General] configuration value.
	Conf(key string) (string, bool)
	Config() ports.Config
	FileSystem() ports.FileSystem
	Reporter() ports.Reporter

	// Dry is the run-wide dry default.
	Dry() bool
	// Ask reports whether the user is prompted before starting.
	Ask() bool
	// Confirm shows prompt and reports whether the user accepted.
	Confirm(prompt string) bool

	// Begin prepares the run directory and enters it. It returns false
	// when the user declines to reuse an existing directory.
	Begin(ctx context.Context, title string) (bool, error)
	// InitFiles clears stale sentinel files and seeds the package list.
	InitFiles(ctx context.Context) error
	// Cleanup closes the report and leaves the run directory.
	Cleanup(ctx context.Context) error
	// SetComplete marks whether every phase succeeded.
	SetComplete(complete bool)

	// Shell runs a command line through sh, logging it.
	Shell(ctx context.Context, line string) (ports.CommandResult, error)
	// Submit launches a batch job on behalf of step key.
	Submit(ctx context.Context, key string, req ports.JobRequest) (string, error)
	// Wait blocks until all specs are satisfied, deleting their files.
	Wait(ctx context.Context, specs ...wait.Spec) error
}
