package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/felixgeelhaar/actor/internal/adapters/config"
	"github.com/felixgeelhaar/actor/internal/domain/definition"
)

// Error codes for categorization.
const (
	ErrCodeDefinitionNotFound = "DEFINITION_NOT_FOUND"
	ErrCodeDefinitionInvalid  = "DEFINITION_INVALID"
	ErrCodeDefinitionFormat   = "DEFINITION_FORMAT"
	ErrCodeVersionTooOld      = "VERSION_TOO_OLD"
	ErrCodeConfigNotFound     = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid      = "CONFIG_INVALID"
)

// UserError represents a user-friendly error with actionable suggestions.
type UserError struct {
	Code       string // Error code for categorization (e.g., "CONFIG_NOT_FOUND")
	Message    string // User-friendly error message
	Context    string // File path or other location context
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the message and its context.
func (e *UserError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, " (at %s)", e.Context)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *UserError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	return b.String()
}

// NewDefinitionError explains why the definition at path could not be
// used.
func NewDefinitionError(path string, err error) *UserError {
	e := &UserError{Context: path, Underlying: err}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		e.Code = ErrCodeDefinitionNotFound
		e.Message = "pipeline definition not found"
		e.Suggestion = "Check the path of the definition file."
	case errors.Is(err, definition.ErrUnsupportedFormat):
		e.Code = ErrCodeDefinitionFormat
		e.Message = "unsupported definition format"
		e.Suggestion = "Use a .yaml, .yml or .toml file."
	case errors.Is(err, definition.ErrVersionTooOld):
		e.Code = ErrCodeVersionTooOld
		e.Message = "this definition needs a newer actor"
		e.Suggestion = "Upgrade actor, or lower 'requires' in the definition."
	default:
		e.Code = ErrCodeDefinitionInvalid
		e.Message = "failed to load pipeline definition"
		e.Suggestion = "Check the syntax and that every step has a unique key."
	}
	return e
}

// NewConfigError explains why the configuration at path could not be
// used.
func NewConfigError(path string, err error) *UserError {
	if errors.Is(err, config.ErrNotFound) {
		return &UserError{
			Code:       ErrCodeConfigNotFound,
			Message:    "configuration file not found",
			Context:    path,
			Suggestion: "Check the --conf path, or run without it to use defaults.",
			Underlying: err,
		}
	}
	return &UserError{
		Code:       ErrCodeConfigInvalid,
		Message:    "failed to load configuration",
		Context:    path,
		Suggestion: "Check the INI syntax: [Section] headers followed by key = value lines.",
		Underlying: err,
	}
}
