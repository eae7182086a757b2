package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
)

// newTestCommand returns a command writing to a buffer, for calling the
// run functions directly.
func newTestCommand(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetContext(context.Background())
	return cmd, &buf
}

// resetFlag restores a flag variable after the test.
func resetFlag[T any](t *testing.T, p *T, v T) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}
