package app

import "github.com/felixgeelhaar/actor/internal/domain/submit"

// Settings are the installation-wide defaults of a run.
type Settings struct {
	// SubmitCommand is the cluster submission wrapper, unless the
	// configuration names another under [Cluster] submit.
	SubmitCommand string
	// Copyright is printed at the foot of the report.
	Copyright string
	// IncludeFile lists the run files to package, one pattern per line.
	IncludeFile string
	// ExcludeFile lists patterns to leave out of the package. It is only
	// used when there is no IncludeFile.
	ExcludeFile string
	// ReportFile is the report written inside the run directory.
	ReportFile string
	// IncludePatterns seed IncludeFile at the start of a run.
	IncludePatterns []string
}

// DefaultSettings returns the stock settings.
func DefaultSettings() Settings {
	return Settings{
		SubmitCommand: submit.DefaultCommand,
		IncludeFile:   ".files",
		ExcludeFile:   ".exclude",
		ReportFile:    "index.html",
		IncludePatterns: []string{
			"*.html", "*.png", "*.pdf", "*.xlsx", "*.csv", "*.css", "*.js",
			"*.bed", "*.vcf", "*.bedGraph", "*.conf",
		},
	}
}
