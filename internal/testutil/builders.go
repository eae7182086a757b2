package testutil

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TestStep is a step entry of a test definition.
type TestStep struct {
	Key        string                 `yaml:"key"`
	Properties map[string]interface{} `yaml:"properties,omitempty"`
}

// TestDefinition is a pipeline definition for tests.
type TestDefinition struct {
	Name     string     `yaml:"name"`
	Title    string     `yaml:"title,omitempty"`
	Project  string     `yaml:"project,omitempty"`
	Requires string     `yaml:"requires,omitempty"`
	StepList string     `yaml:"steplist,omitempty"`
	Steps    []TestStep `yaml:"steps"`
}

// DefinitionBuilder builds test definitions.
type DefinitionBuilder struct {
	def TestDefinition
}

// NewDefinitionBuilder creates a builder for a definition named name.
func NewDefinitionBuilder(name string) *DefinitionBuilder {
	return &DefinitionBuilder{def: TestDefinition{Name: name, Steps: make([]TestStep, 0)}}
}

// WithTitle sets the report title.
func (b *DefinitionBuilder) WithTitle(title string) *DefinitionBuilder {
	b.def.Title = title
	return b
}

// WithRequires sets the minimum actor version.
func (b *DefinitionBuilder) WithRequires(version string) *DefinitionBuilder {
	b.def.Requires = version
	return b
}

// WithStepList sets the default step selection.
func (b *DefinitionBuilder) WithStepList(list string) *DefinitionBuilder {
	b.def.StepList = list
	return b
}

// WithStep appends a step. props alternates keys and values.
func (b *DefinitionBuilder) WithStep(key string, props ...interface{}) *DefinitionBuilder {
	step := TestStep{Key: key}
	if len(props) > 0 {
		step.Properties = make(map[string]interface{}, len(props)/2)
		for i := 0; i+1 < len(props); i += 2 {
			step.Properties[fmt.Sprint(props[i])] = props[i+1]
		}
	}
	b.def.Steps = append(b.def.Steps, step)
	return b
}

// Build returns the constructed definition.
func (b *DefinitionBuilder) Build() TestDefinition {
	return b.def
}

// ToYAML renders the definition as YAML.
func (d TestDefinition) ToYAML() string {
	out, err := yaml.Marshal(d)
	if err != nil {
		panic(fmt.Sprintf("marshal test definition: %v", err))
	}
	return string(out)
}

// ConfBuilder builds INI configuration files.
type ConfBuilder struct {
	sections map[string]map[string]string
}

// NewConfBuilder creates an empty configuration builder.
func NewConfBuilder() *ConfBuilder {
	return &ConfBuilder{sections: make(map[string]map[string]string)}
}

// Set assigns key in section.
func (b *ConfBuilder) Set(section, key, value string) *ConfBuilder {
	if b.sections[section] == nil {
		b.sections[section] = make(map[string]string)
	}
	b.sections[section][key] = value
	return b
}

// General assigns key in the [General] section.
func (b *ConfBuilder) General(key, value string) *ConfBuilder {
	return b.Set("General", key, value)
}

// String renders the configuration with sections and keys sorted.
func (b *ConfBuilder) String() string {
	names := make([]string, 0, len(b.sections))
	for name := range b.sections {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString("[" + name + "]\n")
		keys := make([]string, 0, len(b.sections[name]))
		for k := range b.sections[name] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(k + " = " + b.sections[name][k] + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
