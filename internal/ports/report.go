package ports

// Reporter is the append-only run report. Steps write to it during their
// Report phase, in step order. It is closed once at the end of the run.
type Reporter interface {
	// Scene starts a new titled section.
	Scene(title string) error

	// Paragraph appends text to the current section.
	Paragraph(text string) error

	// Link appends a download link to a file produced by the run.
	Link(path, label string) error

	// Close finishes the report. Further writes fail.
	Close() error
}

// NopReporter discards everything. Used before a run has begun.
type NopReporter struct{}

// Scene does nothing.
func (NopReporter) Scene(string) error { return nil }

// Paragraph does nothing.
func (NopReporter) Paragraph(string) error { return nil }

// Link does nothing.
func (NopReporter) Link(string, string) error { return nil }

// Close does nothing.
func (NopReporter) Close() error { return nil }

var _ Reporter = NopReporter{}
