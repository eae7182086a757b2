package ui

import "time"

// TickMsg asks the wait view to check its files.
type TickMsg struct {
	At time.Time
}

// PolledMsg carries the outcome of one check.
type PolledMsg struct {
	Satisfied bool
	Pending   int
	Waiting   string
	Err       error
}
