package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/codescan/internal/capability"
	"github.com/nao1215/codescan/internal/model"
)

// DefaultConcurrency is the number of attempts a Batch runs at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// ScannerFactory creates the scanner for one batch input.
type ScannerFactory func(source string) (capability.Scanner, error)

// Batch runs one attempt per input concurrently, for example one attempt per
// image file. Every input gets its own Orchestrator, so attempts of
// different inputs never discard each other's snapshots.
type Batch struct {
	factory     ScannerFactory
	concurrency int
	logger      *slog.Logger
	sink        Sink
	attemptOpts []Option
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithConcurrency sets the maximum number of concurrent attempts.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// WithBatchSink sets the sink that receives the snapshots of every input,
// including the failed snapshot of an input whose scanner cannot be created.
// The sink is called from several goroutines and must be safe for concurrent
// use.
func WithBatchSink(sink Sink) BatchOption {
	return func(b *Batch) {
		b.sink = sink
	}
}

// WithAttemptOptions sets options applied to every per-input Orchestrator.
func WithAttemptOptions(opts ...Option) BatchOption {
	return func(b *Batch) {
		b.attemptOpts = append(b.attemptOpts, opts...)
	}
}

// NewBatch creates a Batch that builds scanners with factory.
func NewBatch(factory ScannerFactory, opts ...BatchOption) *Batch {
	b := &Batch{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Run performs one attempt per source and returns the final snapshots in
// the order of sources. A source whose scanner cannot be created yields a
// failed snapshot; the other sources still run.
//
// The returned error is non-nil only when ctx ended before every source
// started.
func (b *Batch) Run(ctx context.Context, sources []string) ([]model.Snapshot, error) {
	results := make([]model.Snapshot, len(sources))
	err := b.RunWithCallback(ctx, sources, func(snapshot model.Snapshot, index int) {
		// Each index is written by exactly one goroutine
		results[index] = snapshot
	})
	return results, err
}

// RunWithCallback performs one attempt per source and calls callback with
// each final snapshot and the index of its source. The callback is called
// from the goroutine that ran the attempt.
func (b *Batch) RunWithCallback(ctx context.Context, sources []string, callback func(snapshot model.Snapshot, index int)) error {
	b.logger.Info("starting batch",
		"total", len(sources),
		"concurrency", b.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			b.logger.Debug("scanning input",
				"source", source,
				"index", i+1,
				"total", len(sources),
			)

			snapshot := b.runOne(ctx, source)
			callback(snapshot, i)

			b.logger.Debug("input scanned",
				"source", source,
				"state", snapshot.State,
			)
			// Failed attempts are results, not errors
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch complete",
		"total", len(sources),
		"elapsed", time.Since(startTime),
	)
	return err
}

func (b *Batch) runOne(ctx context.Context, source string) model.Snapshot {
	scanner, err := b.factory(source)
	if err != nil {
		b.logger.Warn("cannot create scanner", "source", source, "error", err)
		now := time.Now()
		attempt := model.NewAttempt(1, uuid.NewString(), model.CurrentPlatform(), now)
		attempt.Fail(model.FailureCapability, err, err.Error())
		snapshot := attempt.Snapshot(now)
		snapshot.Source = source
		if b.sink != nil {
			b.sink.Present(snapshot)
		}
		return snapshot
	}

	opts := make([]Option, 0, len(b.attemptOpts)+3)
	opts = append(opts, WithLogger(b.logger.With("source", source)))
	opts = append(opts, b.attemptOpts...)
	if b.sink != nil {
		opts = append(opts, WithSink(b.sink))
	}
	opts = append(opts, WithSource(source))

	return New(scanner, opts...).RunAttempt(ctx)
}
