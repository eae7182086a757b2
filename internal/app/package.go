package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/actor/internal/ports"
)

// ArchiveArgs returns the zip arguments that package dir into zipName. The
// include list wins over the exclude list; input copies (*.IN.*) are never
// packaged.
func ArchiveArgs(fsys ports.FileSystem, settings Settings, dir, zipName string) []string {
	args := []string{"-x", "*.IN.*", "-r", zipName, dir}
	include := filepath.Join(dir, settings.IncludeFile)
	exclude := filepath.Join(dir, settings.ExcludeFile)
	switch {
	case fsys.Exists(include):
		return append([]string{"-i@" + include}, args...)
	case fsys.Exists(exclude):
		return append([]string{"-x@" + exclude, "-x", exclude}, args...)
	default:
		return args
	}
}

// Package zips the run directory. It runs from the directory the run
// started in, so it must be called after Cleanup. An empty zipName means
// "<name>.zip". It returns the archive name.
func (a *Actor) Package(ctx context.Context, zipName string) (string, error) {
	if zipName == "" {
		zipName = a.def.Name + ".zip"
	}
	args := ArchiveArgs(a.fsys, a.settings, a.runDir, zipName)
	a.logger.Info(ctx, "Executing: zip "+strings.Join(args, " "))

	res, err := a.runner.Run(ctx, "zip", args...)
	if err != nil {
		return "", fmt.Errorf("failed to run zip: %w", err)
	}
	if !res.Success() {
		return "", fmt.Errorf("zip exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	a.logger.Info(ctx, "Run packaged", ports.F("archive", zipName))
	return zipName, nil
}
