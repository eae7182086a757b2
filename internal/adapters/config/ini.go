// Package config loads the run configuration from INI files.
//
// A configuration has a [General] section holding run-wide settings, an
// optional [Include] section whose values name further INI files merged on
// top when they exist, and free-form sections read by steps.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/actor/internal/ports"
	"gopkg.in/ini.v1"
)

// SectionInclude lists additional configuration files.
const SectionInclude = "Include"

// ErrNotFound is returned when the configuration file does not exist.
var ErrNotFound = errors.New("configuration file not found")

// File is an INI-backed configuration.
type File struct {
	path     string
	cfg      *ini.File
	included []string
}

// Empty returns a configuration with no values.
func Empty() *File {
	return &File{cfg: ini.Empty()}
}

// Load reads path and merges every existing file listed under [Include],
// in file order. Included values override the main file's.
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:         true,
		SpaceBeforeInlineComment: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	f := &File{path: path, cfg: cfg}

	if cfg.HasSection(SectionInclude) {
		for _, key := range cfg.Section(SectionInclude).Keys() {
			inc := resolveInclude(path, key.String())
			if inc == "" {
				continue
			}
			if err := cfg.Append(inc); err != nil {
				return nil, fmt.Errorf("failed to include %s: %w", inc, err)
			}
			f.included = append(f.included, inc)
		}
	}

	return f, nil
}

// resolveInclude finds an include file as given, then next to the main
// file. Returns "" when neither exists.
func resolveInclude(mainPath, name string) string {
	if name == "" {
		return ""
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	if filepath.IsAbs(name) {
		return ""
	}
	candidate := filepath.Join(filepath.Dir(mainPath), name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// Path returns the main configuration file, or "" for an empty config.
func (f *File) Path() string {
	return f.path
}

// Included returns the include files that were merged.
func (f *File) Included() []string {
	return f.included
}

// Get returns a value and whether it is set.
func (f *File) Get(section, key string) (string, bool) {
	if !f.cfg.HasSection(section) {
		return "", false
	}
	s := f.cfg.Section(section)
	if !s.HasKey(key) {
		return "", false
	}
	return s.Key(key).String(), true
}

// GetDefault returns a value or def when it is not set.
func (f *File) GetDefault(section, key, def string) string {
	if v, ok := f.Get(section, key); ok {
		return v
	}
	return def
}

// Int returns an integer value. Unset values yield def; malformed values
// are an error.
func (f *File) Int(section, key string, def int) (int, error) {
	v, ok := f.Get(section, key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("[%s] %s: %w", section, key, err)
	}
	return n, nil
}

// Float returns a floating point value.
func (f *File) Float(section, key string, def float64) (float64, error) {
	v, ok := f.Get(section, key)
	if !ok {
		return def, nil
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def, fmt.Errorf("[%s] %s: %w", section, key, err)
	}
	return x, nil
}

// Bool returns a boolean value. Accepts the INI spellings
// (1/0, true/false, yes/no, on/off).
func (f *File) Bool(section, key string, def bool) (bool, error) {
	if _, ok := f.Get(section, key); !ok {
		return def, nil
	}
	b, err := f.cfg.Section(section).Key(key).Bool()
	if err != nil {
		return def, fmt.Errorf("[%s] %s: %w", section, key, err)
	}
	return b, nil
}

// List splits a comma-delimited value into trimmed, non-empty entries.
func (f *File) List(section, key string) []string {
	v, ok := f.Get(section, key)
	if !ok {
		return nil
	}
	return SplitList(v)
}

// Section returns all keys of a section. Missing sections give an empty map.
func (f *File) Section(name string) map[string]string {
	out := make(map[string]string)
	if !f.cfg.HasSection(name) {
		return out
	}
	for _, k := range f.cfg.Section(name).Keys() {
		out[k.Name()] = k.String()
	}
	return out
}

// Set overrides a value, creating the section if needed. Used to apply
// command line flags on top of the file.
func (f *File) Set(section, key, value string) {
	f.cfg.Section(section).Key(key).SetValue(value)
}

// SplitList splits s on commas, trimming entries and dropping empty ones.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var _ ports.Config = (*File)(nil)
