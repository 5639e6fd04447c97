package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/codescan/internal/capability"
	"github.com/nao1215/codescan/internal/i18n"
	"github.com/nao1215/codescan/internal/model"
	"github.com/nao1215/codescan/internal/pipeline"
)

// describer is implemented by errors that carry a display message, such as
// *capability.Error.
type describer interface {
	Description() string
}

// Orchestrator runs scan attempts against one scanner.
// RunAttempt may be called concurrently; see the package documentation for
// how overlapping attempts are resolved.
type Orchestrator struct {
	scanner    capability.Scanner
	sink       Sink
	logger     *slog.Logger
	translator *i18n.Translator
	now        func() time.Time
	newID      func() string
	source     string
	timeout    time.Duration

	// seq is the number of the latest attempt.
	seq atomic.Uint64

	// mu serializes sink deliveries and the staleness check.
	mu sync.Mutex
}

// Option is a function that configures an Orchestrator.
type Option func(*Orchestrator)

// WithSink sets the presentation layer. Without a sink snapshots are only
// returned by RunAttempt.
func WithSink(sink Sink) Option {
	return func(o *Orchestrator) {
		o.sink = sink
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithTranslator sets the translator for displayed messages.
// English is used when not set.
func WithTranslator(t *i18n.Translator) Option {
	return func(o *Orchestrator) {
		o.translator = t
	}
}

// WithClock sets the time source used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithIDGenerator sets the function generating attempt IDs.
func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) {
		o.newID = newID
	}
}

// WithSource names the input scanned by this orchestrator. The name is
// copied into every snapshot.
func WithSource(source string) Option {
	return func(o *Orchestrator) {
		o.source = source
	}
}

// WithTimeout bounds every attempt. An attempt that runs out of time fails
// like any other capability failure. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// New creates an Orchestrator for scanner.
func New(scanner capability.Scanner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		scanner: scanner,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.sink == nil {
		o.sink = discardSink{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.translator == nil {
		o.translator = i18n.MustNew(i18n.DefaultLanguage)
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}

	return o
}

// RunAttempt performs one scan attempt and returns its final snapshot.
//
// It never fails: unsupported platforms, refused permissions and capability
// errors all end the attempt in model.StateFailed with a displayed message
// and an "error" trace line. A scan that decodes nothing ends in
// model.StateDone with the no-code message.
func (o *Orchestrator) RunAttempt(ctx context.Context) model.Snapshot {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	seq := o.seq.Add(1)
	platform := o.scanner.Platform()
	attempt := model.NewAttempt(seq, o.newID(), platform, o.now())

	o.logger.Debug("starting scan attempt",
		"attempt", attempt.ID,
		"seq", seq,
		"platform", platform,
	)

	// Clears whatever the previous attempt displayed
	o.emit(attempt)

	attempt.Log("platform: " + platform.String())

	p := pipeline.New(
		pipeline.WithLogger(o.logger),
		pipeline.WithObserver(func(a *model.Attempt) { o.emit(a) }),
	)
	p.AddSteps(pipeline.ScanSteps(o.scanner, pipeline.WithStepLogger(o.logger))...)

	if err := p.Execute(ctx, attempt); err != nil {
		kind, message := o.describe(err)
		attempt.Fail(kind, err, message)
		o.logger.Debug("scan attempt failed",
			"attempt", attempt.ID,
			"kind", kind,
			"error", err,
		)
	} else if first, ok := attempt.Outcome.First(); ok {
		attempt.Complete(first.Text())
	} else {
		attempt.Complete(o.translator.Text(i18n.MsgNoCode))
	}

	return o.emit(attempt)
}

// Latest returns the sequence number of the most recent attempt, or 0 when
// none has started.
func (o *Orchestrator) Latest() uint64 {
	return o.seq.Load()
}

// describe maps an attempt error to its failure kind and displayed message.
func (o *Orchestrator) describe(err error) (model.FailureKind, string) {
	switch {
	case errors.Is(err, pipeline.ErrUnsupportedPlatform):
		return model.FailureUnsupportedPlatform, o.translator.Text(i18n.MsgUnsupported)
	case errors.Is(err, pipeline.ErrPermissionDenied):
		return model.FailurePermissionDenied, o.translator.Text(i18n.MsgPermissionDenied)
	}

	var d describer
	if errors.As(err, &d) {
		if msg := d.Description(); msg != "" {
			return model.FailureCapability, msg
		}
	}
	return model.FailureCapability, err.Error()
}

// emit snapshots the attempt and delivers it unless a newer attempt exists.
func (o *Orchestrator) emit(attempt *model.Attempt) model.Snapshot {
	snapshot := attempt.Snapshot(o.now())
	snapshot.Source = o.source

	o.mu.Lock()
	defer o.mu.Unlock()

	if latest := o.seq.Load(); attempt.Seq != latest {
		o.logger.Debug("discarding stale snapshot",
			"attempt", attempt.ID,
			"seq", attempt.Seq,
			"latest", latest,
			"state", attempt.State,
		)
		return snapshot
	}

	o.sink.Present(snapshot)
	return snapshot
}
