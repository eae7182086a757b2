package ui

// Default component dimensions.
const (
	// DefaultWidth is the width used before the terminal size is known.
	DefaultWidth = 80

	// DefaultProgressBarWidth is the default width for progress bars.
	DefaultProgressBarWidth = 40
)
