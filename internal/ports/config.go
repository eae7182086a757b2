package ports

// SectionGeneral is the configuration section read by default.
const SectionGeneral = "General"

// Config is read-only access to the run configuration.
type Config interface {
	// Get returns the value of key in section and whether it was set.
	Get(section, key string) (string, bool)

	// Section returns all key/value pairs of a section, or an empty map.
	Section(name string) map[string]string

	// Path returns the file the configuration was loaded from, if any.
	Path() string
}
