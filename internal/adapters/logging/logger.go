package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/actor/internal/ports"
)

// sink is one destination for log entries with its own formatting.
type sink struct {
	w          io.Writer
	json       bool
	timeLayout string
	label      bool
}

// RunLogger logs structured messages to a console sink and any number of
// file sinks.
type RunLogger struct {
	mu     *sync.Mutex
	level  ports.Level
	fields []ports.Field
	sinks  []*sink
	now    func() time.Time
}

// Option configures a RunLogger.
type Option func(*RunLogger)

// WithOutput sets the console writer (default: os.Stderr).
func WithOutput(w io.Writer) Option {
	return func(l *RunLogger) {
		l.sinks[0].w = w
	}
}

// WithLevel sets the minimum log level (default: Info).
func WithLevel(level ports.Level) Option {
	return func(l *RunLogger) {
		l.level = level
	}
}

// WithJSONFormat switches the console sink to JSON lines.
func WithJSONFormat(enabled bool) Option {
	return func(l *RunLogger) {
		l.sinks[0].json = enabled
	}
}

// WithTimestamp prefixes console entries with the wall clock time.
func WithTimestamp(enabled bool) Option {
	return func(l *RunLogger) {
		if enabled {
			l.sinks[0].timeLayout = "15:04:05"
		} else {
			l.sinks[0].timeLayout = ""
		}
	}
}

// WithLevelLabel includes the level label in console entries.
func WithLevelLabel(enabled bool) Option {
	return func(l *RunLogger) {
		l.sinks[0].label = enabled
	}
}

// WithTee adds a plain-text sink that receives every entry with a full
// date stamp. Used for the run logfile.
func WithTee(w io.Writer) Option {
	return func(l *RunLogger) {
		l.sinks = append(l.sinks, &sink{w: w, timeLayout: "2006-01-02 15:04:05", label: true})
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *RunLogger) {
		l.now = now
	}
}

// New creates a RunLogger.
func New(opts ...Option) *RunLogger {
	l := &RunLogger{
		mu:    &sync.Mutex{},
		level: ports.LevelInfo,
		sinks: []*sink{{w: os.Stderr, timeLayout: "15:04:05", label: true}},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OpenLogFile opens path for appending, creating parent directories.
func OpenLogFile(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // path comes from run configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open logfile %s: %w", path, err)
	}
	return f, nil
}

// Tee starts copying every entry to w with a full date stamp, as WithTee
// does, and returns a func that stops it. Loggers derived earlier with With
// do not see the new sink.
func (l *RunLogger) Tee(w io.Writer) (stop func()) {
	s := &sink{w: w, timeLayout: "2006-01-02 15:04:05", label: true}
	l.mu.Lock()
	l.sinks = append(l.sinks, s)
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		kept := l.sinks[:0:0]
		for _, existing := range l.sinks {
			if existing != s {
				kept = append(kept, existing)
			}
		}
		l.sinks = kept
	}
}

func (l *RunLogger) Debug(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelDebug, msg, fields)
}

func (l *RunLogger) Info(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelInfo, msg, fields)
}

func (l *RunLogger) Warn(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelWarn, msg, fields)
}

func (l *RunLogger) Error(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelError, msg, fields)
}

// With returns a logger sharing sinks and lock with l, carrying extra fields.
func (l *RunLogger) With(fields ...ports.Field) ports.Logger {
	merged := make([]ports.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	l.mu.Lock()
	defer l.mu.Unlock()
	return &RunLogger{
		mu:     l.mu,
		level:  l.level,
		fields: merged,
		sinks:  l.sinks,
		now:    l.now,
	}
}

func (l *RunLogger) Level() ports.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *RunLogger) SetLevel(level ports.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *RunLogger) log(_ context.Context, level ports.Level, msg string, fields []ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	all := make([]ports.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	now := l.now()
	for _, s := range l.sinks {
		if s.json {
			writeJSON(s, now, level, msg, all)
		} else {
			writeText(s, now, level, msg, all)
		}
	}
}

func writeJSON(s *sink, now time.Time, level ports.Level, msg string, fields []ports.Field) {
	entry := make(map[string]interface{}, len(fields)+3)
	if s.timeLayout != "" {
		entry["time"] = now.UTC().Format(time.RFC3339)
	}
	if s.label {
		entry["level"] = level.String()
	}
	entry["msg"] = msg
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			entry[f.Key] = err.Error()
			continue
		}
		entry[f.Key] = f.Value
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(s.w, string(data))
}

func writeText(s *sink, now time.Time, level ports.Level, msg string, fields []ports.Field) {
	var b strings.Builder
	if s.timeLayout != "" {
		b.WriteString(now.Format(s.timeLayout))
		b.WriteByte(' ')
	}
	if s.label {
		fmt.Fprintf(&b, "[%s] ", level)
	}
	b.WriteString(msg)
	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(quoteValue(f.Value))
	}
	_, _ = fmt.Fprintln(s.w, b.String())
}

// quoteValue renders a field value, quoting it when it contains spaces.
func quoteValue(v interface{}) string {
	s := fmt.Sprintf("%v", v)
	if s == "" || strings.ContainsAny(s, " \t\n\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

var _ ports.Logger = (*RunLogger)(nil)
