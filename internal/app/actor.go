// Package app provides the main application logic for actor: the runtime
// the pipeline steps work in, the run driver and packaging.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/actor/internal/adapters/command"
	"github.com/felixgeelhaar/actor/internal/adapters/config"
	"github.com/felixgeelhaar/actor/internal/adapters/filesystem"
	"github.com/felixgeelhaar/actor/internal/adapters/logging"
	"github.com/felixgeelhaar/actor/internal/adapters/report"
	"github.com/felixgeelhaar/actor/internal/domain/definition"
	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/domain/submit"
	"github.com/felixgeelhaar/actor/internal/domain/wait"
	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/google/uuid"
)

// Actor is the runtime of a pipeline run. It owns the run directory, the
// report, the log and the connections to the shell and the cluster.
type Actor struct {
	settings Settings
	def      *definition.Definition
	cfg      *config.File

	logger    ports.Logger
	fsys      ports.FileSystem
	runner    ports.CommandRunner
	submitter *submit.Submitter
	metrics   ports.RunMetrics
	reporter  ports.Reporter

	in  *bufio.Reader
	out io.Writer

	dry       bool
	ask       bool
	timestamp bool
	poll      time.Duration
	maxWait   time.Duration
	complete  bool

	runID   string
	runDir  string
	prevDir string
	now     func() time.Time

	chdir      func(string) error
	getwd      func() (string, error)
	openLog    func(string) (io.WriteCloser, error)
	openReport func(ports.FileSystem, string, report.Header) (ports.Reporter, error)

	logfile io.WriteCloser
	untee   func()
}

// ActorOption configures an Actor.
type ActorOption func(*Actor)

// WithSettings replaces the default settings.
func WithSettings(s Settings) ActorOption {
	return func(a *Actor) { a.settings = s }
}

// WithLogger sets the run logger.
func WithLogger(l ports.Logger) ActorOption {
	return func(a *Actor) { a.logger = l }
}

// WithFileSystem sets the file system.
func WithFileSystem(fsys ports.FileSystem) ActorOption {
	return func(a *Actor) { a.fsys = fsys }
}

// WithCommandRunner sets the runner for shell commands and packaging.
func WithCommandRunner(r ports.CommandRunner) ActorOption {
	return func(a *Actor) { a.runner = r }
}

// WithSubmitter sets the job submitter.
func WithSubmitter(s *submit.Submitter) ActorOption {
	return func(a *Actor) { a.submitter = s }
}

// WithRunMetrics sets the metrics collector fed by Wait.
func WithRunMetrics(m ports.RunMetrics) ActorOption {
	return func(a *Actor) { a.metrics = m }
}

// WithPrompt sets where confirmation prompts are written and answers read.
func WithPrompt(in io.Reader, out io.Writer) ActorOption {
	return func(a *Actor) {
		a.in = bufio.NewReader(in)
		a.out = out
	}
}

// WithDry makes every step dry.
func WithDry(dry bool) ActorOption {
	return func(a *Actor) { a.dry = dry }
}

// WithAsk enables confirmation prompts.
func WithAsk(ask bool) ActorOption {
	return func(a *Actor) { a.ask = ask }
}

// WithTimestamp adds the start time to the run directory name.
func WithTimestamp(enabled bool) ActorOption {
	return func(a *Actor) { a.timestamp = enabled }
}

// WithPoll sets the wait poll interval and the maximum wait (zero waits
// forever).
func WithPoll(interval, maxWait time.Duration) ActorOption {
	return func(a *Actor) {
		a.poll = interval
		a.maxWait = maxWait
	}
}

// WithRunID sets the run identifier.
func WithRunID(id string) ActorOption {
	return func(a *Actor) { a.runID = id }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ActorOption {
	return func(a *Actor) { a.now = now }
}

// WithWorkDir overrides how the working directory is read and changed.
func WithWorkDir(getwd func() (string, error), chdir func(string) error) ActorOption {
	return func(a *Actor) {
		a.getwd = getwd
		a.chdir = chdir
	}
}

// WithLogOpener overrides how the run logfile is opened.
func WithLogOpener(open func(string) (io.WriteCloser, error)) ActorOption {
	return func(a *Actor) { a.openLog = open }
}

// NewActor creates the runtime for def. cfg may be nil.
func NewActor(def *definition.Definition, cfg *config.File, opts ...ActorOption) *Actor {
	if cfg == nil {
		cfg = config.Empty()
	}
	a := &Actor{
		settings: DefaultSettings(),
		def:      def,
		cfg:      cfg,
		logger:   logging.New(),
		fsys:     filesystem.NewRealFileSystem(),
		runner:   command.NewRealRunner(),
		metrics:  ports.NopMetrics{},
		reporter: ports.NopReporter{},
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		ask:      true,
		now:      time.Now,
		chdir:    os.Chdir,
		getwd:    os.Getwd,
		openLog:  logging.OpenLogFile,
		openReport: func(fsys ports.FileSystem, path string, h report.Header) (ports.Reporter, error) {
			return report.Open(fsys, path, h)
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.runID == "" {
		a.runID = uuid.NewString()
	}
	if a.submitter == nil {
		a.submitter = submit.NewSubmitter(a.runner,
			submit.WithCommand(a.settings.SubmitCommand),
			submit.WithLogger(a.logger),
			submit.WithRun(a.runID, os.Getenv("USER")))
	}
	a.runDir = RunDirName(def.Name, a.timestamp, a.now())
	return a
}

// RunDirName returns the output directory of a run: the definition name,
// followed by the start time when stamped.
func RunDirName(name string, stamped bool, t time.Time) string {
	if !stamped {
		return name
	}
	return fmt.Sprintf("%s-%d-%d-%d@%d:%02d", name, int(t.Month()), t.Day(), t.Year(), t.Hour(), t.Minute())
}

// RunDir returns the output directory name, relative to where the run
// started.
func (a *Actor) RunDir() string { return a.runDir }

// RunID returns the run identifier.
func (a *Actor) RunID() string { return a.runID }

// Complete reports whether every phase succeeded.
func (a *Actor) Complete() bool { return a.complete }

func (a *Actor) Logger() ports.Logger         { return a.logger }
func (a *Actor) Config() ports.Config         { return a.cfg }
func (a *Actor) FileSystem() ports.FileSystem { return a.fsys }
func (a *Actor) Reporter() ports.Reporter     { return a.reporter }
func (a *Actor) Dry() bool                    { return a.dry }
func (a *Actor) Ask() bool                    { return a.ask }
func (a *Actor) SetComplete(complete bool)    { a.complete = complete }

// Conf reads key from the [General] section.
func (a *Actor) Conf(key string) (string, bool) {
	return a.cfg.Get(ports.SectionGeneral, key)
}

// Confirm prints prompt and reads one answer. An empty answer or one
// starting with y accepts; end of input declines.
func (a *Actor) Confirm(prompt string) bool {
	_, _ = fmt.Fprint(a.out, prompt)
	answer, err := a.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || answer == "") {
		return false
	}
	answer = strings.TrimSpace(answer)
	return answer == "" || strings.HasPrefix(strings.ToLower(answer), "y")
}

// Shell runs line through sh in the current directory. The command is
// logged with the step logger in ctx when there is one.
func (a *Actor) Shell(ctx context.Context, line string) (ports.CommandResult, error) {
	log := a.logger
	if l := ports.LoggerFromContext(ctx); l != nil {
		log = l
	}
	log.Info(ctx, "Executing: "+line)
	cmd, args := ports.ShellCommand(line)
	return a.runner.Run(ctx, cmd, args...)
}

// Submit launches a batch job for step key. The job name prefix defaults
// to the configured label.
func (a *Actor) Submit(ctx context.Context, key string, req ports.JobRequest) (string, error) {
	if req.Prefix == "" {
		req.Prefix, _ = a.Conf("label")
	}
	return a.submitter.SubmitFor(ctx, key, req)
}

// Wait blocks until every spec is satisfied, removing the files that
// satisfied them.
func (a *Actor) Wait(ctx context.Context, specs ...wait.Spec) error {
	n, err := wait.Wait(ctx, a.fsys, specs, wait.Options{
		Interval: a.poll,
		MaxWait:  a.maxWait,
		Delete:   true,
		OnProgress: func(desc string) {
			a.logger.Info(ctx, "Waiting for: "+desc)
		},
	})
	if err != nil {
		return err
	}
	a.logger.Info(ctx, fmt.Sprintf("%d jobs completed.", n))
	a.metrics.AddWaitUnits(n)
	return nil
}

var _ pipeline.Runtime = (*Actor)(nil)
