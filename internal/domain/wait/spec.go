package wait

import (
	"fmt"
	"strconv"
	"strings"
)

// Template marks where a scheduler job id goes in a done-file path.
const Template = "@"

// Spec describes one awaited condition: a bare path, or a path with a
// count. A counted path containing @ awaits that many files matching the
// path with @ as a wildcard; otherwise it awaits a counter file.
type Spec struct {
	Path    string
	Count   int
	Counted bool
}

// File awaits the existence of path.
func File(path string) Spec {
	return Spec{Path: path}
}

// Count awaits count on path (a counter file, or count files when path
// holds @).
func Count(path string, count int) Spec {
	return Spec{Path: path, Count: count, Counted: true}
}

// ParseSpec reads "path" or "path:N". The count is taken after the last
// colon only when it parses as a non-negative integer.
func ParseSpec(s string) (Spec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Spec{}, fmt.Errorf("empty wait spec")
	}
	if i := strings.LastIndexByte(s, ':'); i > 0 && i < len(s)-1 {
		if n, err := strconv.Atoi(s[i+1:]); err == nil {
			if n < 0 {
				return Spec{}, fmt.Errorf("wait spec %q: negative count", s)
			}
			return Count(s[:i], n), nil
		}
	}
	return File(s), nil
}

// ParseSpecs parses each argument with ParseSpec.
func ParseSpecs(args []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(args))
	for _, a := range args {
		sp, err := ParseSpec(a)
		if err != nil {
			return nil, err
		}
		specs = append(specs, sp)
	}
	return specs, nil
}

func (s Spec) String() string {
	if !s.Counted {
		return s.Path
	}
	return fmt.Sprintf("%s:%d", s.Path, s.Count)
}

// New builds the Waiter a spec describes.
func New(fsys FileSystem, s Spec) Waiter {
	switch {
	case !s.Counted:
		return NewFileWaiter(fsys, s.Path)
	case strings.Contains(s.Path, Template):
		return NewGlobWaiter(fsys, strings.Replace(s.Path, Template, "*", 1), s.Count)
	default:
		return NewCounterWaiter(fsys, s.Path, s.Count)
	}
}
