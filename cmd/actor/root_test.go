package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/felixgeelhaar/actor/internal/app"
	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_UseLine(t *testing.T) {
	assert.Equal(t, "actor", rootCmd.Use)
	assert.True(t, rootCmd.SilenceErrors)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCommand_HasPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	t.Run("verbose flag exists", func(t *testing.T) {
		flag := flags.Lookup("verbose")
		require.NotNil(t, flag)
		assert.Equal(t, "false", flag.DefValue)
		assert.Equal(t, "v", flag.Shorthand)
	})

	t.Run("log-json flag exists", func(t *testing.T) {
		flag := flags.Lookup("log-json")
		require.NotNil(t, flag)
		assert.Equal(t, "false", flag.DefValue)
	})
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"run", "steps", "wait", "jobs", "mcp", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestFormatError(t *testing.T) {
	underlying := errors.New("open p.yaml: no such file or directory")
	userErr := &app.UserError{
		Code:       app.ErrCodeDefinitionNotFound,
		Message:    "pipeline definition not found",
		Context:    "p.yaml",
		Suggestion: "Check the path of the definition file.",
		Underlying: underlying,
	}

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, "boom", formatError(errors.New("boom")))
	})

	t.Run("user error", func(t *testing.T) {
		msg := formatError(userErr)
		assert.Equal(t, "pipeline definition not found (at p.yaml)\n\nSuggestion: Check the path of the definition file.", msg)
	})

	t.Run("verbose shows details", func(t *testing.T) {
		verbose = true
		defer func() { verbose = false }()

		assert.Contains(t, formatError(userErr), "Technical details: open p.yaml")
	})
}

func TestPrintErrorTo(t *testing.T) {
	var buf bytes.Buffer
	printErrorTo(&buf, errors.New("something broke"))
	assert.Equal(t, "Error: something broke\n", buf.String())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	assert.Equal(t, ports.LevelInfo, newLogger(&buf).Level())

	verbose = true
	defer func() { verbose = false }()
	assert.Equal(t, ports.LevelDebug, newLogger(&buf).Level())
}
