package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/codescan/internal/capability"
	"github.com/nao1215/codescan/internal/model"
)

// fixtureFactory returns one record whose text is the source name.
func fixtureFactory(source string) (capability.Scanner, error) {
	return capability.NewFixture(model.Scenario{
		Check:    true,
		Barcodes: []model.ScriptedBarcode{{RawValue: model.StringPtr(source)}},
	}), nil
}

// TestNewBatch tests the Batch constructor.
func TestNewBatch(t *testing.T) {
	t.Parallel()

	t.Run("creates batch with defaults", func(t *testing.T) {
		t.Parallel()

		b := NewBatch(fixtureFactory)
		if b.concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, b.concurrency)
		}
		if b.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		b := NewBatch(fixtureFactory, WithConcurrency(0))
		if b.concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency, got %d", b.concurrency)
		}

		b = NewBatch(fixtureFactory, WithConcurrency(2))
		if b.concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", b.concurrency)
		}
	})
}

// TestBatchRun tests running one attempt per source.
func TestBatchRun(t *testing.T) {
	t.Parallel()

	t.Run("returns snapshots in source order", func(t *testing.T) {
		t.Parallel()

		sources := []string{"a.png", "b.png", "c.png", "d.png", "e.png"}
		b := NewBatch(fixtureFactory,
			WithConcurrency(2),
			WithBatchLogger(discardLogger()),
			WithAttemptOptions(WithLogger(discardLogger())),
		)

		results, err := b.Run(context.Background(), sources)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != len(sources) {
			t.Fatalf("expected %d results, got %d", len(sources), len(results))
		}
		for i, s := range results {
			if s.Source != sources[i] || s.Result != sources[i] {
				t.Errorf("result %d: expected %q, got source %q result %q", i, sources[i], s.Source, s.Result)
			}
		}
	})

	t.Run("scanner creation failure yields a failed snapshot", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		factory := func(source string) (capability.Scanner, error) {
			if source == "missing.png" {
				return nil, errors.New("image source requires an image path")
			}
			return fixtureFactory(source)
		}
		b := NewBatch(factory,
			WithBatchLogger(discardLogger()),
			WithAttemptOptions(WithLogger(discardLogger())),
			WithBatchSink(sink),
		)

		results, err := b.Run(context.Background(), []string{"ok.png", "missing.png"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].State != model.StateDone {
			t.Errorf("expected first source to succeed, got %q", results[0].State)
		}
		failed := results[1]
		if failed.State != model.StateFailed || failed.Failure != model.FailureCapability {
			t.Errorf("expected failed snapshot, got %+v", failed)
		}
		if failed.Source != "missing.png" || failed.Result != "image source requires an image path" {
			t.Errorf("unexpected failed snapshot %+v", failed)
		}

		var delivered bool
		for _, s := range sink.all() {
			if s.Source == "missing.png" && s.Failed() {
				delivered = true
			}
		}
		if !delivered {
			t.Error("expected failed snapshot to reach the sink")
		}
	})

	t.Run("batch sink receives snapshots of every input", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		factory := func(source string) (capability.Scanner, error) {
			if source == "broken.png" {
				return nil, errors.New("cannot decode image")
			}
			return fixtureFactory(source)
		}
		b := NewBatch(factory,
			WithBatchLogger(discardLogger()),
			WithAttemptOptions(WithLogger(discardLogger())),
			WithBatchSink(sink),
		)

		if _, err := b.Run(context.Background(), []string{"a.png", "broken.png", "b.png"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		finals := map[string]model.State{}
		for _, s := range sink.all() {
			if s.State.Terminal() {
				finals[s.Source] = s.State
			}
		}
		want := map[string]model.State{
			"a.png":      model.StateDone,
			"broken.png": model.StateFailed,
			"b.png":      model.StateDone,
		}
		for source, state := range want {
			if finals[source] != state {
				t.Errorf("source %s: expected final state %q at the sink, got %q", source, state, finals[source])
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int32
		factory := func(source string) (capability.Scanner, error) {
			return &funcScanner{
				Fixture: capability.NewFixture(model.Scenario{Check: true}),
				scan: func(context.Context) (model.ScanOutcome, error) {
					n := running.Add(1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					time.Sleep(10 * time.Millisecond)
					running.Add(-1)
					return model.ScanOutcome{}, nil
				},
			}, nil
		}

		b := NewBatch(factory,
			WithConcurrency(2),
			WithBatchLogger(discardLogger()),
			WithAttemptOptions(WithLogger(discardLogger())),
		)
		if _, err := b.Run(context.Background(), []string{"1", "2", "3", "4", "5", "6"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("expected at most 2 concurrent scans, got %d", peak.Load())
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		b := NewBatch(fixtureFactory, WithBatchLogger(discardLogger()))
		_, err := b.Run(ctx, []string{"a.png"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("callback receives every index", func(t *testing.T) {
		t.Parallel()

		var seen [3]atomic.Bool
		b := NewBatch(fixtureFactory,
			WithBatchLogger(discardLogger()),
			WithAttemptOptions(WithLogger(discardLogger())),
		)
		err := b.RunWithCallback(context.Background(), []string{"x", "y", "z"}, func(_ model.Snapshot, i int) {
			seen[i].Store(true)
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := range seen {
			if !seen[i].Load() {
				t.Errorf("index %d not reported", i)
			}
		}
	})
}
