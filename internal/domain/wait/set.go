package wait

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultInterval is the pause between poll passes.
const DefaultInterval = 5 * time.Second

// ErrTimeout is returned when MaxWait elapses with waiters still pending.
var ErrTimeout = errors.New("wait timed out")

// Set is the working set of a wait: the waiters not yet satisfied.
type Set struct {
	pending []Waiter
	total   int
	wanted  int
}

// NewSet builds a Set from specs.
func NewSet(fsys FileSystem, specs ...Spec) *Set {
	waiters := make([]Waiter, 0, len(specs))
	for _, sp := range specs {
		waiters = append(waiters, New(fsys, sp))
	}
	return NewSetOf(waiters...)
}

// NewSetOf builds a Set from existing waiters.
func NewSetOf(waiters ...Waiter) *Set {
	s := &Set{pending: append([]Waiter(nil), waiters...), total: len(waiters)}
	for _, w := range waiters {
		s.wanted += w.Wanted()
	}
	return s
}

// Poll checks every pending waiter once, dropping the satisfied ones and
// deleting their files when del is set. It reports whether the set is now
// empty. An I/O error stops the pass and leaves the set as it is.
func (s *Set) Poll(del bool) (bool, error) {
	remaining := s.pending[:0:0]
	for i, w := range s.pending {
		ok, err := w.Success()
		if err != nil {
			s.pending = append(remaining, s.pending[i:]...)
			return false, err
		}
		if !ok {
			remaining = append(remaining, w)
			continue
		}
		if del {
			if err := w.Delete(); err != nil {
				s.pending = append(remaining, s.pending[i:]...)
				return false, err
			}
		}
	}
	s.pending = remaining
	return len(s.pending) == 0, nil
}

// Satisfied reports whether no waiters are pending.
func (s *Set) Satisfied() bool {
	return len(s.pending) == 0
}

// Pending returns the number of waiters still pending.
func (s *Set) Pending() int {
	return len(s.pending)
}

// Total returns the number of waiters the set started with.
func (s *Set) Total() int {
	return s.total
}

// Wanted returns the summed units of all waiters the set started with.
func (s *Set) Wanted() int {
	return s.wanted
}

// Describe lists the pending waiters.
func (s *Set) Describe() string {
	parts := make([]string, 0, len(s.pending))
	for _, w := range s.pending {
		parts = append(parts, w.Describe())
	}
	return strings.Join(parts, ", ")
}

// Options tune Wait.
type Options struct {
	// Interval between poll passes. Zero means DefaultInterval.
	Interval time.Duration
	// MaxWait bounds the whole wait. Zero waits forever.
	MaxWait time.Duration
	// Delete removes satisfied files.
	Delete bool
	// OnProgress is called with the pending description at the start and
	// whenever it changes.
	OnProgress func(description string)
}

// Wait polls specs until all are satisfied and returns their total wanted
// units. It returns early on an I/O error, on ErrTimeout, or when ctx is
// done.
func Wait(ctx context.Context, fsys FileSystem, specs []Spec, opts Options) (int, error) {
	return WaitSet(ctx, NewSet(fsys, specs...), opts)
}

// WaitSet is Wait over an existing Set.
func WaitSet(ctx context.Context, set *Set, opts Options) (int, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	var deadline <-chan time.Time
	if opts.MaxWait > 0 {
		timer := time.NewTimer(opts.MaxWait)
		defer timer.Stop()
		deadline = timer.C
	}

	last := ""
	report := func() {
		if opts.OnProgress == nil {
			return
		}
		if d := set.Describe(); d != last {
			last = d
			opts.OnProgress(d)
		}
	}
	report()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := set.Poll(opts.Delete)
		if err != nil {
			return 0, err
		}
		if done {
			return set.Wanted(), nil
		}
		report()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-deadline:
			return 0, fmt.Errorf("%w after %s: %s", ErrTimeout, opts.MaxWait, set.Describe())
		case <-ticker.C:
		}
	}
}
