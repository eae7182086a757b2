package pipeline

import "strings"

// Selection is the raw list of step names a run asks for. A name prefixed
// with "-" or "no" selects the step but runs it dry.
type Selection struct {
	names []string
}

// ParseSelection splits a comma separated step list.
func ParseSelection(s string) Selection {
	return NewSelection(strings.Split(s, ","))
}

// NewSelection builds a Selection from names, trimming them and dropping
// empty entries.
func NewSelection(names []string) Selection {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return Selection{names: out}
}

// Names returns the entries as given.
func (s Selection) Names() []string {
	return append([]string(nil), s.names...)
}

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool {
	return len(s.names) == 0
}

// Present reports whether name is selected in any form.
func (s Selection) Present(name string) bool {
	return s.contains(name) || s.Dry(name)
}

// Dry reports whether name is selected as dry.
func (s Selection) Dry(name string) bool {
	return s.contains("-"+name) || s.contains("no"+name)
}

func (s Selection) contains(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

func (s Selection) String() string {
	return strings.Join(s.names, ",")
}
