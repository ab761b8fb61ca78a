package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmetl/checkpoint"
	"github.com/mensylisir/xmetl/common"
	"github.com/mensylisir/xmetl/hook"
	"github.com/mensylisir/xmetl/lock"
	"github.com/mensylisir/xmetl/logger"
	"github.com/mensylisir/xmetl/param"
	"github.com/mensylisir/xmetl/pipeline/ending"
	"github.com/mensylisir/xmetl/step"
)

// Orchestrator runs the registered steps of one pipeline in sequence order,
// records their progress and resumes interrupted runs from a checkpoint.
// It is single threaded; use one Orchestrator per goroutine.
type Orchestrator struct {
	name      string
	workDir   string
	registry  *Registry
	params    *param.Store
	workspace param.Materializer
	store     checkpoint.Store
	lock      Locker
	clock     clockwork.Clock
	log       *logrus.Entry
	sequence  []string

	state        State
	successHooks []hook.Hook
	failureHooks []hook.Hook
	results      []*ending.StepResult
	lastFailure  error
	runID        string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithName sets the pipeline name used in logs. Default: "xmetl".
func WithName(name string) Option {
	return func(o *Orchestrator) { o.name = name }
}

// WithWorkDir sets the project home. Default checkpoint and lock paths are
// resolved against it.
func WithWorkDir(dir string) Option {
	return func(o *Orchestrator) { o.workDir = dir }
}

// WithSequence overrides the default step order.
func WithSequence(sequence []string) Option {
	return func(o *Orchestrator) { o.sequence = sequence }
}

// WithClock injects the time source.
func WithClock(c clockwork.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithLogger sets the base log entry.
func WithLogger(log *logrus.Entry) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithParams sets the parameter store.
func WithParams(p *param.Store) Option {
	return func(o *Orchestrator) { o.params = p }
}

// WithWorkspace sets where parameters are materialized. The workspace is
// written only while the run lock is held. Default: the materializer the
// parameter store was created with.
func WithWorkspace(m param.Materializer) Option {
	return func(o *Orchestrator) { o.workspace = m }
}

// WithCheckpointStore sets where snapshots go.
func WithCheckpointStore(s checkpoint.Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithLock sets the run lock.
func WithLock(l Locker) Option {
	return func(o *Orchestrator) { o.lock = l }
}

// New creates an orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range opts {
		opt(o)
	}
	if o.name == "" {
		o.name = common.AppName
	}
	if o.workDir == "" {
		o.workDir = "."
	}
	if o.sequence == nil {
		o.sequence = common.DefaultSequence()
	}
	if o.clock == nil {
		o.clock = clockwork.NewRealClock()
	}
	if o.log == nil {
		o.log = logger.Log.Pipeline(o.name)
	}
	if o.params == nil {
		o.params = param.NewStore(o.log, nil)
	}
	if m := o.params.Detach(); o.workspace == nil {
		o.workspace = m
	}
	if o.store == nil {
		o.store = checkpoint.NewFileStore(filepath.Join(o.workDir, common.DefaultCheckpointFile))
	}
	if o.lock == nil {
		o.lock = lock.New(filepath.Join(o.workDir, common.DefaultLockFile))
	}
	o.registry = NewRegistry(o.sequence, o.log)
	return o
}

// Name returns the pipeline name.
func (o *Orchestrator) Name() string { return o.name }

// WorkDir returns the project home.
func (o *Orchestrator) WorkDir() string { return o.workDir }

// Params returns the parameter store.
func (o *Orchestrator) Params() *param.Store { return o.params }

// Registry returns the step registry.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// State returns a copy of the run state.
func (o *Orchestrator) State() State { return o.state }

// Results returns the step results of the last run or restart.
func (o *Orchestrator) Results() []*ending.StepResult {
	out := make([]*ending.StepResult, len(o.results))
	copy(out, o.results)
	return out
}

// LastFailure returns the step error that failed the last run, if any.
func (o *Orchestrator) LastFailure() error { return o.lastFailure }

// RunID returns the id of the last run or restart.
func (o *Orchestrator) RunID() string { return o.runID }

// Step registers a step named name with body.
func (o *Orchestrator) Step(name string, body step.Body, opts ...step.Option) (*step.Step, error) {
	opts = append([]step.Option{step.WithBody(body)}, opts...)
	return o.registry.Register(step.New(name, opts...))
}

// AddStep registers a prebuilt step.
func (o *Orchestrator) AddStep(s *step.Step) (*step.Step, error) {
	return o.registry.Register(s)
}

// SetSequence replaces the step order.
func (o *Orchestrator) SetSequence(sequence []string) {
	o.sequence = sequence
	o.registry.SetSequence(sequence)
}

// AfterSuccess appends a hook run after a run that did not fail.
func (o *Orchestrator) AfterSuccess(h hook.Hook) {
	o.successHooks = append(o.successHooks, h)
}

// AfterFailure appends a hook run after a failed run. It receives the step error.
func (o *Orchestrator) AfterFailure(h hook.Hook) {
	o.failureHooks = append(o.failureHooks, h)
}

// Run executes every registered step from the start.
func (o *Orchestrator) Run(ctx context.Context) error {
	return o.execute(ctx, func(now time.Time) []*step.Step {
		steps := o.registry.Ordered()
		for _, s := range steps {
			s.Reset()
		}
		o.state.FullRun = true
		o.state.PartialRun = false
		o.state.CurrentFullRunStart = now
		return steps
	})
}

// RestartFromLastCheckpoint resumes at ProposeRestartPoint.
func (o *Orchestrator) RestartFromLastCheckpoint(ctx context.Context) error {
	point := o.ProposeRestartPoint()
	if point == nil {
		return step.NewConfigurationError("", "no steps registered, nothing to restart")
	}
	return o.restart(ctx, point)
}

// RestartFrom resumes at the step called name.
func (o *Orchestrator) RestartFrom(ctx context.Context, name string) error {
	point, ok := o.registry.Find(name)
	if !ok {
		return step.NewConfigurationError(name, "cannot restart from an unregistered step")
	}
	return o.restart(ctx, point)
}

func (o *Orchestrator) restart(ctx context.Context, point *step.Step) error {
	return o.execute(ctx, func(time.Time) []*step.Step {
		o.log.Infof("Restarting from step %s", point.Name)
		o.state.FullRun = false
		o.state.PartialRun = true
		return o.registry.From(point)
	})
}

// execute holds the run lock around prepare and the step loop. prepare runs
// only once the lock is held.
func (o *Orchestrator) execute(ctx context.Context, prepare func(now time.Time) []*step.Step) (err error) {
	runID := uuid.NewString()
	if lerr := o.lock.Acquire(runID); lerr != nil {
		return lockError(o.lock, lerr)
	}
	log := o.log.WithField(common.RunID, runID)
	defer func() {
		if rerr := o.lock.Release(); rerr != nil {
			log.Errorf("Failed to release run lock: %v", rerr)
			if err == nil {
				err = rerr
			}
		}
	}()

	o.params.Attach(o.workspace)
	defer o.params.Detach()

	now := o.now()
	o.runID = runID
	o.results = nil
	o.lastFailure = nil
	o.state.Ran = true
	o.state.Error = false
	o.state.Bail = false
	o.state.LastAttempt = now
	steps := prepare(now)

	fatal := o.loop(ctx, log, steps)

	if !o.state.Error {
		o.state.LastSuccessfulFinish = o.now()
		o.state.LastSuccessfulStart = o.state.LastAttempt
		if o.state.FullRun {
			o.state.LastFullRunStart = o.state.CurrentFullRunStart
		}
	}

	sleepErr := o.Sleep()
	if sleepErr != nil {
		log.Errorf("Failed to save checkpoint: %v", sleepErr)
	}
	hookErr := o.dispatchHooks(log)

	switch {
	case fatal != nil:
		return fatal
	case sleepErr != nil:
		return sleepErr
	default:
		return hookErr
	}
}

// loop runs steps until one does not succeed. It returns a configuration
// error raised by a body.
func (o *Orchestrator) loop(ctx context.Context, log *logrus.Entry, steps []*step.Step) error {
	for _, s := range steps {
		s.Ran = true
		stepLog := logger.StepEntry(log, s.Name)

		if err := o.params.Materialize(); err != nil {
			stepLog.Errorf("Failed to prepare workspace: %v", err)
			o.state.Error = true
			o.lastFailure = errors.Wrapf(err, "step %s", s.Name)
			return nil
		}

		stepLog.Infof("Running step %s", s.Name)
		start := o.clock.Now()
		stepErr := s.Execute(&stepRuntime{ctx: ctx, o: o, log: stepLog})
		result := ending.NewStepResult(s.Name, stepErr, o.clock.Since(start))
		o.results = append(o.results, result)

		switch result.Outcome {
		case ending.Success:
			s.Finished = true
			stepLog.Infof("Step %s finished in %s", s.Name, result.Duration)
			continue
		case ending.Bailed:
			s.Finished = true
			o.state.Bail = true
			stepLog.Infof("Step %s asked to stop the run", s.Name)
		case ending.Failed:
			o.state.Error = true
			o.lastFailure = errors.Wrapf(stepErr, "step %s", s.Name)
			stepLog.Errorf("Step %s failed: %v", s.Name, stepErr)
		case ending.Fatal:
			o.state.Error = true
			o.lastFailure = stepErr
			stepLog.Errorf("Step %s is misconfigured: %v", s.Name, stepErr)
			return stepErr
		}
		return nil
	}
	return nil
}

func (o *Orchestrator) dispatchHooks(log *logrus.Entry) error {
	var hooks []hook.Hook
	var failure error
	switch {
	case o.state.Bail:
		log.Info("Run stopped early, skipping hooks")
		return nil
	case o.state.Error:
		hooks, failure = o.failureHooks, o.lastFailure
	default:
		hooks = o.successHooks
	}
	for _, h := range hooks {
		hookLog := log.WithField(common.HookName, hook.Name(h))
		if err := hook.Call(h, failure); err != nil {
			hookLog.Errorf("Hook failed: %v", err)
			return err
		}
		hookLog.Debug("Hook done")
	}
	return nil
}

func (o *Orchestrator) now() time.Time {
	return o.clock.Now().Truncate(time.Second)
}
