// Package orchestrator sequences the build stages.
//
// The engine stage runs first and is waited on synchronously; if it fails
// nothing else is launched. Shaders and content are then launched together
// and both are always waited on, even when one of them fails. The overall
// outcome fails if any stage that ran failed.
package orchestrator

import (
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sofmeright/sboxbuild/src/config"
	"github.com/sofmeright/sboxbuild/src/stage"
)

// State is a step of a single orchestrator run.
type State int

const (
	Idle State = iota
	EngineRunning
	OptionalStagesRunning
	Aggregating
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case EngineRunning:
		return "engine-running"
	case OptionalStagesRunning:
		return "optional-stages-running"
	case Aggregating:
		return "aggregating"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Orchestrator runs the stages of one build configuration.
type Orchestrator struct {
	launcher stage.Launcher
	log      *zap.Logger
	observe  func(State)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithObserver registers a callback invoked on every state entered.
func WithObserver(fn func(State)) Option {
	return func(o *Orchestrator) { o.observe = fn }
}

// New creates an orchestrator that starts stages through l.
func New(l stage.Launcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{launcher: l, log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// optional are the stages launched together after the engine.
var optional = []stage.Name{stage.Shaders, stage.Content}

// Plan returns the stages cfg enables, in launch order.
func Plan(cfg config.BuildConfiguration) []stage.Name {
	var names []stage.Name
	for _, name := range stage.All {
		if enabled(cfg, name) {
			names = append(names, name)
		}
	}
	return names
}

func enabled(cfg config.BuildConfiguration, name stage.Name) bool {
	switch name {
	case stage.Engine:
		return cfg.RunEngine
	case stage.Shaders:
		return cfg.RunShaders
	case stage.Content:
		return cfg.RunContent
	default:
		return false
	}
}

func optionalStages(cfg config.BuildConfiguration) []stage.Name {
	var names []stage.Name
	for _, name := range optional {
		if enabled(cfg, name) {
			names = append(names, name)
		}
	}
	return names
}

// Run executes the stages enabled by cfg and returns the aggregate outcome.
// It blocks until every launched stage has terminated.
func (o *Orchestrator) Run(cfg config.BuildConfiguration) Outcome {
	out := Outcome{}
	o.enter(Idle)

	if cfg.RunEngine {
		o.enter(EngineRunning)
		res := o.runSync(stage.Engine, cfg.Profile)
		out.Results = append(out.Results, res)
		if !res.Succeeded {
			out.Skipped = optionalStages(cfg)
			o.log.Warn("engine stage failed, skipping optional stages",
				zap.Int("exit_code", res.ExitCode),
				zap.Int("skipped", len(out.Skipped)),
			)
			o.enter(Done)
			return out.finish()
		}
	} else {
		out.Skipped = append(out.Skipped, stage.Engine)
	}

	o.enter(OptionalStagesRunning)
	var pending []slot
	for _, name := range optional {
		if !enabled(cfg, name) {
			out.Skipped = append(out.Skipped, name)
			continue
		}
		h, err := o.launcher.Launch(name, cfg.Profile)
		if err != nil {
			o.log.Error("stage launch failed", zap.String("stage", name.String()), zap.Error(err))
			pending = append(pending, slot{result: stage.LaunchFailure(name, err)})
			continue
		}
		pending = append(pending, slot{handle: h})
	}

	o.enter(Aggregating)
	out.Results = append(out.Results, joinAll(pending)...)

	o.enter(Done)
	return out.finish()
}

// runSync launches a stage and waits for it.
func (o *Orchestrator) runSync(name stage.Name, profile string) stage.Result {
	h, err := o.launcher.Launch(name, profile)
	if err != nil {
		o.log.Error("stage launch failed", zap.String("stage", name.String()), zap.Error(err))
		return stage.LaunchFailure(name, err)
	}
	return h.Wait()
}

// slot is an optional stage that was either started or failed to start.
type slot struct {
	handle stage.Handle
	result stage.Result
}

// joinAll waits on every started handle and returns the results in slot
// order. A failing stage does not stop the others from being waited on.
func joinAll(slots []slot) []stage.Result {
	results := make([]stage.Result, len(slots))
	var g errgroup.Group
	for i, s := range slots {
		if s.handle == nil {
			results[i] = s.result
			continue
		}
		g.Go(func() error {
			results[i] = s.handle.Wait()
			return nil
		})
	}
	_ = g.Wait() // the goroutines never return an error
	return results
}

func (o *Orchestrator) enter(s State) {
	o.log.Debug("orchestrator state", zap.Stringer("state", s))
	if o.observe != nil {
		o.observe(s)
	}
}
