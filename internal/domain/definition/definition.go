// Package definition loads pipeline definition files. A definition names
// the run and lists its steps in execution order; the run driver hands
// each step to the Director.
package definition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither YAML nor TOML.
	ErrUnsupportedFormat = errors.New("unsupported definition format")
	// ErrVersionTooOld is returned when the definition requires a newer actor.
	ErrVersionTooOld = errors.New("actor version too old for definition")
	// ErrInvalid is returned when a definition fails validation.
	ErrInvalid = errors.New("invalid definition")
)

// Format is a definition file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Definition describes a pipeline run.
type Definition struct {
	Name     string `yaml:"name" toml:"name"`
	Title    string `yaml:"title" toml:"title"`
	Project  string `yaml:"project" toml:"project"`
	Requires string `yaml:"requires,omitempty" toml:"requires,omitempty"`
	// StepList is the default selection when none is configured.
	StepList string `yaml:"steplist,omitempty" toml:"steplist,omitempty"`
	Steps    []Step `yaml:"steps" toml:"steps"`
}

// Step is one declared step.
type Step struct {
	Key        string                 `yaml:"key" toml:"key"`
	Properties map[string]interface{} `yaml:"properties,omitempty" toml:"properties,omitempty"`
}

// Load reads and validates a definition file.
func Load(path string) (*Definition, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // user supplied definition
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	def, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes and validates a definition.
func Parse(data []byte, format Format) (*Definition, error) {
	var def Definition
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks that every step has a unique key.
func (d *Definition) Validate() error {
	seen := make(map[string]bool, len(d.Steps))
	for i, s := range d.Steps {
		key := strings.TrimSpace(s.Key)
		if key == "" {
			return fmt.Errorf("%w: step %d has no key", ErrInvalid, i+1)
		}
		if strings.ContainsAny(key, ", ") {
			return fmt.Errorf("%w: step key %q contains a comma or space", ErrInvalid, key)
		}
		if seen[key] {
			return fmt.Errorf("%w: duplicate step key %q", ErrInvalid, key)
		}
		seen[key] = true
	}
	if d.Requires != "" && !semver.IsValid(normalizeVersion(d.Requires)) {
		return fmt.Errorf("%w: requires %q is not a semantic version", ErrInvalid, d.Requires)
	}
	return nil
}

// Keys returns the step keys in declaration order.
func (d *Definition) Keys() []string {
	keys := make([]string, 0, len(d.Steps))
	for _, s := range d.Steps {
		keys = append(keys, s.Key)
	}
	return keys
}

// DisplayTitle returns the title, falling back to the name.
func (d *Definition) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// CheckVersion fails with ErrVersionTooOld when current is below the
// definition's minimum. Development builds and unversioned definitions
// always pass.
func (d *Definition) CheckVersion(current string) error {
	if d.Requires == "" || current == "" || current == "dev" {
		return nil
	}
	want := normalizeVersion(d.Requires)
	have := normalizeVersion(current)
	if !semver.IsValid(have) {
		return nil
	}
	if semver.Compare(have, want) < 0 {
		return fmt.Errorf("%w: definition requires %s, running %s", ErrVersionTooOld, want, have)
	}
	return nil
}

// normalizeVersion strips a ">=" constraint and adds the "v" prefix semver
// expects.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), ">="))
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
