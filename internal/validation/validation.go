// Package validation checks user and agent supplied inputs before they
// reach the file system or a shell.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Common validation errors.
var (
	ErrEmptyInput       = errors.New("input cannot be empty")
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrInvalidPath      = errors.New("invalid path")
	ErrCommandInjection = errors.New("potential command injection detected")
	ErrInvalidHostname  = errors.New("invalid hostname")
	ErrNewlineInjection = errors.New("newline injection detected")
	ErrInvalidStepKey   = errors.New("invalid step key")
	ErrInvalidRunID     = errors.New("invalid run id")
)

var (
	// stepKeyRegex matches a tag with an optional dotted subkey.
	// Examples: "shell", "submit.align", "wait.all-lanes"
	stepKeyRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*(\.[a-zA-Z0-9_.-]+)?$`)

	// hostnameRegex matches valid hostnames
	// Examples: "login.cluster.org", "192.168.1.1"
	hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9.-]*$`)

	// controlRegex matches control characters
	controlRegex = regexp.MustCompile(`[\x00-\x1f\x7f]`)

	// shellMetaChars contains shell metacharacters that could enable injection
	shellMetaChars = []string{";", "|", "&", "$", "`", "(", ")", "{", "}", "<", ">", "\n", "\r", "\\"}

	definitionExts = map[string]bool{".yaml": true, ".yml": true, ".toml": true}
)

// ValidatePath validates a file path and prevents path traversal attacks.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyInput
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}

	if containsPathTraversal(path) {
		return fmt.Errorf("%w: %q contains traversal sequence", ErrPathTraversal, path)
	}

	return nil
}

// ValidateConfigPath validates the path of an INI configuration file.
func ValidateConfigPath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if containsShellMeta(path) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, path)
	}
	return nil
}

// ValidateDefinitionPath validates the path of a pipeline definition. The
// extension must name a supported format.
func ValidateDefinitionPath(path string) error {
	if err := ValidateConfigPath(path); err != nil {
		return err
	}
	if ext := strings.ToLower(filepath.Ext(path)); !definitionExts[ext] {
		return fmt.Errorf("%w: %q must end in .yaml, .yml or .toml", ErrInvalidPath, path)
	}
	return nil
}

// ValidateStepKey validates a step key of the form tag or tag.subkey.
func ValidateStepKey(key string) error {
	if key == "" {
		return ErrEmptyInput
	}
	if len(key) > 128 {
		return fmt.Errorf("%w: key too long (max 128 characters)", ErrInvalidStepKey)
	}
	if !stepKeyRegex.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidStepKey, key)
	}
	return nil
}

// ValidateStepList validates a comma separated step selection. Empty
// entries are ignored, as the selection parser does.
func ValidateStepList(list string) error {
	for _, key := range strings.Split(list, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if err := ValidateStepKey(key); err != nil {
			return err
		}
	}
	return nil
}

// ValidateWaitSpec validates a wait spec, a path optionally followed by
// :count. The path must stay below the working directory.
func ValidateWaitSpec(spec string) error {
	if spec == "" {
		return ErrEmptyInput
	}
	if controlRegex.MatchString(spec) {
		return fmt.Errorf("%w: %q contains control characters", ErrNewlineInjection, spec)
	}
	if filepath.IsAbs(spec) {
		return fmt.Errorf("%w: %q is absolute", ErrPathTraversal, spec)
	}
	return ValidatePath(spec)
}

// ValidateRunID validates a run identifier.
func ValidateRunID(id string) error {
	if id == "" {
		return ErrEmptyInput
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, id)
	}
	return nil
}

// ValidateHostname validates the cluster login host.
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return ErrEmptyInput
	}

	if len(hostname) > 253 {
		return fmt.Errorf("%w: hostname too long", ErrInvalidHostname)
	}

	if !hostnameRegex.MatchString(hostname) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidHostname, hostname)
	}

	return nil
}

// containsShellMeta checks if a string contains shell metacharacters.
func containsShellMeta(s string) bool {
	for _, char := range shellMetaChars {
		if strings.Contains(s, char) {
			return true
		}
	}
	return false
}

// containsPathTraversal checks for common path traversal patterns.
func containsPathTraversal(path string) bool {
	normalized := filepath.Clean(path)

	for _, seg := range strings.Split(normalized, string(filepath.Separator)) {
		if seg == ".." {
			return true
		}
	}

	// URL-encoded traversal
	if strings.Contains(path, "%2e%2e") || strings.Contains(path, "%2E%2E") {
		return true
	}

	return false
}
