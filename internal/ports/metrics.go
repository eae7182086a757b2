package ports

import "time"

// RunMetrics collects per-run measurements of the pipeline.
type RunMetrics interface {
	// ObservePhase records how long a phase took across all steps.
	ObservePhase(phase string, d time.Duration)
	// CountStep counts one step dispatch with its result ("ok", "failed").
	CountStep(phase, result string)
	// AddWaitUnits adds completed wait units (jobs, files).
	AddWaitUnits(n int)
	// Flush writes the collected metrics out, if a destination is set.
	Flush() error
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

// ObservePhase does nothing.
func (NopMetrics) ObservePhase(string, time.Duration) {}

// CountStep does nothing.
func (NopMetrics) CountStep(string, string) {}

// AddWaitUnits does nothing.
func (NopMetrics) AddWaitUnits(int) {}

// Flush does nothing.
func (NopMetrics) Flush() error { return nil }

var _ RunMetrics = NopMetrics{}
