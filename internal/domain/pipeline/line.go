// Package pipeline runs analysis steps through a fixed lifecycle.
//
// A Line is one step of a pipeline. The Director materialises the Lines a
// run selects, in declaration order, and drives all of them through
// Verify, PreExecute, Execute, PostExecute and Report, one phase at a time.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/actor/internal/ports"
)

// Line is a named unit of pipeline work. Each phase method returns false
// on failure after setting a status message.
type Line interface {
	// Tag is the registry key the Line was built from.
	Tag() string
	// Key is the instance name, either the tag or tag.subkey.
	Key() string
	Properties() Properties
	// Dry reports whether Execute must only simulate its work.
	Dry() bool
	SetDry(dry bool)
	// Status is the diagnostic message of the last failure.
	Status() string

	Verify(ctx context.Context) bool
	PreExecute(ctx context.Context) bool
	Execute(ctx context.Context) bool
	PostExecute(ctx context.Context) bool
	Report(ctx context.Context) bool
}

// Base carries the state every Line shares. Step types embed it and
// override the phases they need; the others succeed without doing anything.
type Base struct {
	rt     Runtime
	tag    string
	key    string
	props  Properties
	dry    bool
	status string
}

// NewBase creates a Base. The properties are copied.
func NewBase(rt Runtime, key string, props Properties) Base {
	return Base{
		rt:    rt,
		tag:   TagOf(key),
		key:   key,
		props: props.Clone(),
	}
}

func (b *Base) Tag() string            { return b.tag }
func (b *Base) Key() string            { return b.key }
func (b *Base) Properties() Properties { return b.props }
func (b *Base) Dry() bool              { return b.dry }
func (b *Base) SetDry(dry bool)        { b.dry = dry }
func (b *Base) Status() string         { return b.status }

// Runtime returns the actor runtime the Line is bound to.
func (b *Base) Runtime() Runtime { return b.rt }

// Logger returns the logger the Director attached to ctx for this step,
// or the runtime's logger.
func (b *Base) Logger(ctx context.Context) ports.Logger {
	if l := ports.LoggerFromContext(ctx); l != nil {
		return l
	}
	return b.rt.Logger()
}

// Fail records a status message and returns false, so phases can
// `return b.Fail(...)`.
func (b *Base) Fail(format string, args ...interface{}) bool {
	b.status = fmt.Sprintf(format, args...)
	return false
}

func (b *Base) Verify(context.Context) bool      { return true }
func (b *Base) PreExecute(context.Context) bool  { return true }
func (b *Base) Execute(context.Context) bool     { return true }
func (b *Base) PostExecute(context.Context) bool { return true }
func (b *Base) Report(context.Context) bool      { return true }

// TagOf returns the registry tag of a step key: the text before the first
// dot, or the whole key.
func TagOf(key string) string {
	if i := strings.IndexByte(key, '.'); i >= 0 {
		return key[:i]
	}
	return key
}

// Properties are the declaration-time settings of a Line.
type Properties map[string]interface{}

// Clone returns a shallow copy. A nil map clones to an empty one.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Has reports whether key is set.
func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns a property rendered as text, or "".
func (p Properties) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns an integer property. Strings are parsed; anything that is
// not a number yields def.
func (p Properties) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Bool returns a boolean property. Strings are parsed with strconv.
func (p Properties) Bool(key string, def bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// Strings returns a list property. A string value is split on commas.
func (p Properties) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, x := range v {
			out = append(out, fmt.Sprint(x))
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
