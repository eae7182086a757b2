package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/actor/internal/adapters/report"
	"github.com/felixgeelhaar/actor/internal/library"
	"github.com/felixgeelhaar/actor/internal/ports"
)

// teeLogger is a logger that can copy its output to the run logfile.
type teeLogger interface {
	Tee(w io.Writer) (stop func())
}

// Begin creates the run directory, or asks before reusing an existing
// one, copies the configuration into it, enters it and starts the report.
// It returns false when the user declines.
func (a *Actor) Begin(ctx context.Context, title string) (bool, error) {
	dir := a.runDir
	if a.fsys.Exists(dir) {
		if a.ask && !a.Confirm("The output directory already exists. Proceed anyway? (Y/n) ") {
			return false, nil
		}
	} else if err := a.fsys.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create run directory: %w", err)
	}

	if src := a.cfg.Path(); src != "" {
		if err := a.fsys.CopyFile(src, filepath.Join(dir, filepath.Base(src))); err != nil {
			return false, fmt.Errorf("failed to copy configuration: %w", err)
		}
	}

	prev, err := a.getwd()
	if err != nil {
		return false, fmt.Errorf("failed to read working directory: %w", err)
	}
	if err := a.chdir(dir); err != nil {
		return false, fmt.Errorf("failed to enter run directory: %w", err)
	}
	a.prevDir = prev

	copyright, ok := a.Conf("copyright")
	if !ok {
		copyright = a.settings.Copyright
	}
	rep, err := a.openReport(a.fsys, a.settings.ReportFile, report.Header{
		Title:      title,
		Name:       a.def.Name,
		Project:    a.def.Project,
		RunDir:     filepath.Join(prev, dir),
		ConfigFile: a.cfg.Path(),
		Copyright:  copyright,
		Started:    a.now(),
	})
	if err != nil {
		_ = a.chdir(prev)
		a.prevDir = ""
		return false, err
	}
	a.reporter = rep

	a.logger.Info(ctx, "Run started", ports.F("dir", dir), ports.F("run", a.runID))
	return true, nil
}

// InitFiles removes sentinel and temporary files left by an earlier run,
// seeds the package include list and opens the logfile when one is
// configured.
func (a *Actor) InitFiles(ctx context.Context) error {
	for _, pattern := range []string{"*.done", "tmp-*"} {
		stale, err := a.fsys.Glob(pattern)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", pattern, err)
		}
		for _, f := range stale {
			if err := a.fsys.Remove(f); err != nil {
				return fmt.Errorf("failed to remove %s: %w", f, err)
			}
		}
	}

	var b strings.Builder
	for _, p := range a.settings.IncludePatterns {
		b.WriteString(a.runDir + "/" + p + "\n")
	}
	if err := a.fsys.WriteFile(a.settings.IncludeFile, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.settings.IncludeFile, err)
	}

	if path, ok := a.Conf("logfile"); ok && path != "" {
		if err := a.openLogfile(path); err != nil {
			return err
		}
		a.logger.Debug(ctx, "Logging to "+path)
	}
	return nil
}

func (a *Actor) openLogfile(path string) error {
	w, err := a.openLog(path)
	if err != nil {
		return err
	}
	tl, ok := a.logger.(teeLogger)
	if !ok {
		_ = w.Close()
		return nil
	}
	a.logfile = w
	a.untee = tl.Tee(w)
	return nil
}

// Cleanup closes the report and the logfile and returns to the directory
// the run started in.
func (a *Actor) Cleanup(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(a.reporter.Close())
	a.reporter = ports.NopReporter{}

	if a.untee != nil {
		a.untee()
		a.untee = nil
	}
	if a.logfile != nil {
		keep(a.logfile.Close())
		a.logfile = nil
	}

	if a.prevDir != "" {
		keep(a.chdir(a.prevDir))
		a.prevDir = ""
	}
	if firstErr != nil {
		a.logger.Warn(ctx, "cleanup incomplete", ports.F("error", firstErr))
	}
	return firstErr
}

// MissingOrStale reports whether file is missing or older than any of the
// existing others.
func (a *Actor) MissingOrStale(file string, others ...string) (bool, error) {
	return library.MissingOrStale(a.fsys, file, others...)
}

// Mkdir creates path and its parents.
func (a *Actor) Mkdir(path string) error {
	return a.fsys.MkdirAll(path, 0o755)
}

// AddToInclude adds patterns, relative to the run directory, to the
// package include list.
func (a *Actor) AddToInclude(patterns ...string) error {
	return a.appendPatterns(a.settings.IncludeFile, patterns)
}

// Exclude adds patterns, relative to the run directory, to the package
// exclude list.
func (a *Actor) Exclude(patterns ...string) error {
	return a.appendPatterns(a.settings.ExcludeFile, patterns)
}

func (a *Actor) appendPatterns(file string, patterns []string) error {
	var b strings.Builder
	for _, p := range patterns {
		b.WriteString(a.runDir + "/" + p + "\n")
	}
	if err := a.fsys.AppendFile(file, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to update %s: %w", file, err)
	}
	return nil
}
