package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/codescan/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each one reading and extending the
// attempt left behind by the previous steps.
type Step interface {
	// Do executes the pipeline step.
	// A returned error ends the attempt; the steps after it do not run.
	Do(ctx context.Context, attempt *model.Attempt) error

	// Name returns the step's name for logging purposes.
	Name() string

	// State returns the attempt state that is active while the step runs.
	State() model.State
}

// Skipper is implemented by steps that only run under some conditions.
// A skipped step causes no state transition.
type Skipper interface {
	Skip(attempt *model.Attempt) bool
}

// Observer is called after every state transition made by the pipeline.
// It runs on the goroutine executing the pipeline.
type Observer func(attempt *model.Attempt)

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// observer is notified when a step becomes active.
	observer Observer
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, the default logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithObserver sets the function notified on every state transition.
func WithObserver(observer Observer) Option {
	return func(p *Pipeline) {
		p.observer = observer
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
//
// Before a step runs, the attempt moves to the step's state and the observer
// is notified. Cancellation is checked between steps; a capability call that
// is already running is expected to honour ctx itself.
//
// The first error stops the pipeline, is recorded on the attempt and is
// returned. The caller decides how the error is presented.
func (p *Pipeline) Execute(ctx context.Context, attempt *model.Attempt) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"attempt", attempt.ID,
				"reason", ctx.Err(),
			)
			attempt.Err = ctx.Err()
			return ctx.Err()
		default:
		}

		if s, ok := step.(Skipper); ok && s.Skip(attempt) {
			p.logger.Debug("skipping step",
				"step", step.Name(),
				"attempt", attempt.ID,
			)
			continue
		}

		attempt.State = step.State()
		p.notify(attempt)

		p.logger.Debug("executing step",
			"step", step.Name(),
			"attempt", attempt.ID,
		)

		if err := step.Do(ctx, attempt); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"attempt", attempt.ID,
				"error", err,
			)
			attempt.Err = err
			return err
		}
	}

	return nil
}

func (p *Pipeline) notify(attempt *model.Attempt) {
	if p.observer != nil {
		p.observer(attempt)
	}
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
