package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/actor/internal/adapters/command"
	"github.com/felixgeelhaar/actor/internal/adapters/config"
	"github.com/felixgeelhaar/actor/internal/adapters/journal"
	"github.com/felixgeelhaar/actor/internal/adapters/logging"
	"github.com/felixgeelhaar/actor/internal/adapters/metrics"
	"github.com/felixgeelhaar/actor/internal/domain/definition"
	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/domain/submit"
	"github.com/felixgeelhaar/actor/internal/library"
	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/felixgeelhaar/actor/internal/validation"
	"github.com/google/uuid"
)

// SectionCluster holds the job submission settings.
const SectionCluster = "Cluster"

// RunOptions are the command line inputs of a run. Non-empty values
// override the configuration file.
type RunOptions struct {
	DefinitionPath string
	ConfigPath     string
	Steps          string
	StartAt        string
	StopAt         string
	Dry            bool
	Yes            bool
	Timestamp      bool
	Poll           time.Duration
	Zip            bool
	ZipName        string
	// Version is the running actor version, checked against the
	// definition's requirement.
	Version string
}

// RunResult describes a finished run.
type RunResult struct {
	RunID    string
	RunDir   string
	Success  bool
	Complete bool
	Archive  string

	// FailedPhase is the step phase a failed run stopped in, empty when no
	// phase failed.
	FailedPhase string
}

// Runner drives pipeline runs.
type Runner struct {
	settings  Settings
	in        io.Reader
	out       io.Writer
	logger    ports.Logger
	local     ports.CommandRunner
	libraries []pipeline.Library
	stepView  func([]pipeline.Line) string
	journal   ports.JobJournal
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the run logger.
func WithRunnerLogger(l ports.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithRunnerInput sets where confirmation answers are read.
func WithRunnerInput(in io.Reader) RunnerOption {
	return func(r *Runner) { r.in = in }
}

// WithLibraries replaces the step libraries. Later libraries override
// tags of earlier ones.
func WithLibraries(libs ...pipeline.Library) RunnerOption {
	return func(r *Runner) { r.libraries = libs }
}

// WithStepList sets how the step list is rendered before a run.
func WithStepList(view func([]pipeline.Line) string) RunnerOption {
	return func(r *Runner) { r.stepView = view }
}

// WithLocalRunner sets the runner for shell commands, packaging and, when
// no cluster host is configured, job submission.
func WithLocalRunner(cr ports.CommandRunner) RunnerOption {
	return func(r *Runner) { r.local = cr }
}

// WithJournal sets the submission journal instead of opening the
// configured one.
func WithJournal(j ports.JobJournal) RunnerOption {
	return func(r *Runner) { r.journal = j }
}

// WithRunnerSettings replaces the default settings.
func WithRunnerSettings(s Settings) RunnerOption {
	return func(r *Runner) { r.settings = s }
}

// NewRunner creates a Runner printing to out.
func NewRunner(out io.Writer, opts ...RunnerOption) *Runner {
	r := &Runner{
		settings:  DefaultSettings(),
		in:        os.Stdin,
		out:       out,
		logger:    logging.New(),
		local:     command.NewRealRunner(),
		libraries: []pipeline.Library{library.Builtin()},
		stepView:  pipeline.PlainStepView,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadConfig reads the configuration at path, or returns an empty one
// when path is empty, and applies the overrides in opts.
func LoadConfig(path string, opts RunOptions) (*config.File, error) {
	cfg := config.Empty()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	for key, value := range map[string]string{
		"steps":   opts.Steps,
		"startAt": opts.StartAt,
		"stopAt":  opts.StopAt,
	} {
		if value != "" {
			cfg.Set(ports.SectionGeneral, key, value)
		}
	}
	return cfg, nil
}

// LoadDefinition reads the definition at path and checks it against
// version.
func LoadDefinition(path, version string) (*definition.Definition, error) {
	def, err := definition.Load(path)
	if err != nil {
		return nil, err
	}
	if err := def.CheckVersion(version); err != nil {
		return nil, err
	}
	return def, nil
}

// Run executes the pipeline described by opts.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if opts.ConfigPath != "" {
		if err := validation.ValidateConfigPath(opts.ConfigPath); err != nil {
			return nil, NewConfigError(opts.ConfigPath, err)
		}
	}
	if opts.ZipName != "" {
		if err := validation.ValidatePath(opts.ZipName); err != nil {
			return nil, fmt.Errorf("invalid archive name: %w", err)
		}
	}
	cfg, err := LoadConfig(opts.ConfigPath, opts)
	if err != nil {
		return nil, NewConfigError(opts.ConfigPath, err)
	}
	if level, ok := cfg.Get(ports.SectionGeneral, "loglevel"); ok && level != "" {
		r.logger.SetLevel(ports.ParseLevel(strings.ToUpper(level)))
	}
	def, err := LoadDefinition(opts.DefinitionPath, opts.Version)
	if err != nil {
		return nil, NewDefinitionError(opts.DefinitionPath, err)
	}

	poll, maxWait, err := pollSettings(cfg, opts.Poll)
	if err != nil {
		return nil, err
	}
	dry, err := cfg.Bool(ports.SectionGeneral, "dry", false)
	if err != nil {
		return nil, err
	}
	ask, err := cfg.Bool(ports.SectionGeneral, "ask", true)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := r.logger.With(ports.F("run", runID[:8]))

	jrnl := r.journal
	if jrnl == nil {
		jrnl = r.openJournal(ctx, cfg)
		if jrnl != nil {
			defer func() { _ = jrnl.Close() }()
		}
	}

	metricsFile, _ := cfg.Get(ports.SectionGeneral, "metrics_file")
	recorder := metrics.NewRecorder(metricsFile, map[string]string{"pipeline": def.Name})

	start := time.Now()
	runDir := RunDirName(def.Name, opts.Timestamp, start)
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to read working directory: %w", err)
	}
	submitCmd := cfg.GetDefault(SectionCluster, "submit", r.settings.SubmitCommand)
	submitOpts := []submit.Option{
		submit.WithCommand(submitCmd),
		submit.WithLogger(r.logger),
		submit.WithRun(runID, os.Getenv("USER")),
	}
	if jrnl != nil {
		submitOpts = append(submitOpts, submit.WithJournal(jrnl))
	}
	submitRunner, err := r.submitRunner(cfg, filepath.Join(cwd, runDir))
	if err != nil {
		return nil, err
	}
	submitter := submit.NewSubmitter(submitRunner, submitOpts...)

	actorOpts := []ActorOption{
		WithSettings(r.settings),
		WithLogger(r.logger),
		WithCommandRunner(r.local),
		WithSubmitter(submitter),
		WithRunMetrics(recorder),
		WithPrompt(r.in, r.out),
		WithDry(dry || opts.Dry),
		WithAsk(ask && !opts.Yes),
		WithTimestamp(opts.Timestamp),
		WithPoll(poll, maxWait),
		WithRunID(runID),
		WithClock(func() time.Time { return start }),
	}
	actor := NewActor(def, cfg, actorOpts...)

	director, err := pipeline.NewDirector(actor, pipeline.NewRegistry(r.libraries...),
		pipeline.WithOutput(r.out),
		pipeline.WithMetrics(recorder),
		pipeline.WithStepView(r.stepView))
	if err != nil {
		return nil, err
	}
	Select(director, cfg, def)
	for _, step := range def.Steps {
		director.Step(step.Key, step.Properties)
	}

	log.Debug(ctx, "Starting run", ports.F("definition", opts.DefinitionPath), ports.F("steps", len(director.Steps())))
	result := &RunResult{RunID: runID, RunDir: actor.RunDir()}
	result.Success = director.Run(ctx, def.DisplayTitle())
	result.Complete = actor.Complete()
	result.FailedPhase = director.FailedPhase().Method()

	if result.Complete && opts.Zip {
		archive, err := actor.Package(ctx, opts.ZipName)
		if err != nil {
			return result, err
		}
		result.Archive = archive
	}
	return result, nil
}

// Select sets the director's step selection: the configured steps, else
// the definition's step list, else every declared step.
func Select(d *pipeline.Director, cfg ports.Config, def *definition.Definition) {
	if steps, ok := cfg.Get(ports.SectionGeneral, "steps"); ok && steps != "" {
		d.SetSteps(steps)
		return
	}
	if def.StepList != "" {
		d.SetSteps(def.StepList)
		return
	}
	d.SetStepList(def.Keys())
}

func pollSettings(cfg *config.File, override time.Duration) (time.Duration, time.Duration, error) {
	poll := override
	if poll == 0 {
		if v, ok := cfg.Get(SectionCluster, "poll"); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return 0, 0, fmt.Errorf("invalid [%s] poll: %w", SectionCluster, err)
			}
			poll = d
		}
	}
	var maxWait time.Duration
	if v, ok := cfg.Get(SectionCluster, "max_wait"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid [%s] max_wait: %w", SectionCluster, err)
		}
		maxWait = d
	}
	return poll, maxWait, nil
}

// submitRunner returns the runner for the submit command: SSH to the
// configured cluster host, or the local runner.
func (r *Runner) submitRunner(cfg *config.File, runDir string) (ports.CommandRunner, error) {
	host, ok := cfg.Get(SectionCluster, "host")
	if !ok || host == "" {
		return r.local, nil
	}
	if err := validation.ValidateHostname(host); err != nil {
		return nil, fmt.Errorf("invalid [%s] host: %w", SectionCluster, err)
	}
	port, err := cfg.Int(SectionCluster, "port", 22)
	if err != nil {
		port = 22
	}
	user, _ := cfg.Get(SectionCluster, "user")
	identity, _ := cfg.Get(SectionCluster, "identity")
	return command.NewSSHRunner(command.SSHConfig{
		Host:         host,
		Port:         port,
		User:         user,
		IdentityFile: identity,
		Dir:          runDir,
	}), nil
}

// openJournal opens the configured submission journal. Failures are
// logged; runs proceed without a journal.
func (r *Runner) openJournal(ctx context.Context, cfg *config.File) ports.JobJournal {
	path, ok := cfg.Get(ports.SectionGeneral, "journal")
	if !ok || path == "" {
		var err error
		if path, err = journal.DefaultPath(); err != nil {
			r.logger.Warn(ctx, "submission journal disabled", ports.F("error", err))
			return nil
		}
	}
	j, err := journal.Open(path)
	if err != nil {
		r.logger.Warn(ctx, "submission journal disabled", ports.F("error", err))
		return nil
	}
	return j
}
