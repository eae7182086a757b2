package pipeline

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownStep is returned when no library provides a step's tag.
var ErrUnknownStep = errors.New("unknown step")

// Factory builds a Line from its Base.
type Factory func(base Base) Line

// Library is a named set of step types.
type Library struct {
	Name  string
	Lines map[string]Factory
}

// Override records a tag that a later library replaced.
type Override struct {
	Tag      string
	Previous string
	Library  string
}

type entry struct {
	factory Factory
	library string
}

// Registry maps tags to factories. It is not modified after NewRegistry.
type Registry struct {
	entries   map[string]entry
	libraries []Library
	overrides []Override
}

// NewRegistry merges libraries in order. When two libraries define the
// same tag the later one wins and the replacement is recorded.
func NewRegistry(libs ...Library) *Registry {
	r := &Registry{entries: make(map[string]entry)}
	for _, lib := range libs {
		r.libraries = append(r.libraries, lib)
		tags := make([]string, 0, len(lib.Lines))
		for tag := range lib.Lines {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			if prev, ok := r.entries[tag]; ok {
				r.overrides = append(r.overrides, Override{Tag: tag, Previous: prev.library, Library: lib.Name})
			}
			r.entries[tag] = entry{factory: lib.Lines[tag], library: lib.Name}
		}
	}
	return r
}

// Resolve returns the factory for a step key's tag.
func (r *Registry) Resolve(key string) (Factory, error) {
	tag := TagOf(key)
	e, ok := r.entries[tag]
	if !ok {
		return nil, fmt.Errorf("%w: no Line with key %q", ErrUnknownStep, tag)
	}
	return e.factory, nil
}

// Has reports whether a Line is registered for a step key's tag. A bare
// tag is its own key.
func (r *Registry) Has(key string) bool {
	_, ok := r.entries[TagOf(key)]
	return ok
}

// LibraryOf returns the library that provides a step key's tag.
func (r *Registry) LibraryOf(key string) string {
	return r.entries[TagOf(key)].library
}

// Tags returns the registered tags, sorted.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Libraries returns the merged libraries in merge order.
func (r *Registry) Libraries() []Library {
	return r.libraries
}

// Overrides returns the tags replaced during the merge.
func (r *Registry) Overrides() []Override {
	return r.overrides
}
