// Package library provides the built-in pipeline steps.
package library

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/ports"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Name is the name of the built-in library.
const Name = "builtin"

// Builtin returns the built-in step library.
func Builtin() pipeline.Library {
	return pipeline.Library{
		Name: Name,
		Lines: map[string]pipeline.Factory{
			"shell":  NewShell,
			"submit": NewSubmit,
			"wait":   NewWait,
			"mkdir":  NewMkdir,
			"note":   NewNote,
		},
	}
}

var titleCaser = cases.Title(language.English)

// SceneTitle returns the report title of a step: its title property, or
// the key made readable ("align.sample_one" becomes "Align Sample One").
func SceneTitle(key string, props pipeline.Properties) string {
	if t := props.String("title"); t != "" {
		return t
	}
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	return titleCaser.String(strings.Join(words, " "))
}

// MissingOrStale reports whether file is missing or older than any of the
// existing others.
func MissingOrStale(fsys ports.FileSystem, file string, others ...string) (bool, error) {
	info, err := fsys.Stat(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	for _, o := range others {
		oi, err := fsys.Stat(o)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return false, err
		}
		if info.ModTime.Before(oi.ModTime) {
			return true, nil
		}
	}
	return false, nil
}

// checkInputs fails b unless every input exists.
func checkInputs(b *pipeline.Base, inputs []string) bool {
	fsys := b.Runtime().FileSystem()
	for _, in := range inputs {
		if !fsys.Exists(in) {
			return b.Fail("input file %s does not exist or is not readable", in)
		}
	}
	return true
}

// packager is implemented by runtimes that bundle run files into an
// archive.
type packager interface {
	AddToInclude(patterns ...string) error
	Exclude(patterns ...string) error
}

// addToPackage hands the include and exclude properties of b to the
// runtime's package lists.
func addToPackage(b *pipeline.Base) bool {
	p, ok := b.Runtime().(packager)
	if !ok {
		return true
	}
	props := b.Properties()
	if inc := props.Strings("include"); len(inc) > 0 {
		if err := p.AddToInclude(inc...); err != nil {
			return b.Fail("%v", err)
		}
	}
	if exc := props.Strings("exclude"); len(exc) > 0 {
		if err := p.Exclude(exc...); err != nil {
			return b.Fail("%v", err)
		}
	}
	return true
}
