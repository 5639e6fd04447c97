package capability

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nao1215/codescan/internal/model"
)

// fixturePlatform is reported when a scenario does not name a platform.
const fixturePlatform model.Platform = "fixture"

// CallCounts records how often each capability call ran.
type CallCounts struct {
	IsSupported        int
	CheckPermissions   int
	RequestPermissions int
	Scan               int
}

// Fixture is a Scanner that answers from a scripted scenario.
// It is safe for concurrent use.
type Fixture struct {
	scenario model.Scenario

	mu       sync.Mutex
	calls    CallCounts
	lastOpts ScanOptions
}

// NewFixture creates a Fixture for the given scenario.
func NewFixture(scenario model.Scenario) *Fixture {
	return &Fixture{scenario: scenario}
}

// Platform implements Scanner.
func (f *Fixture) Platform() model.Platform {
	if f.scenario.Platform == "" {
		return fixturePlatform
	}
	return model.Platform(f.scenario.Platform)
}

// IsSupported implements Scanner.
func (f *Fixture) IsSupported(ctx context.Context) (model.SupportStatus, error) {
	f.record(func(c *CallCounts) { c.IsSupported++ })
	if err := f.answer(ctx, OpIsSupported); err != nil {
		return model.SupportStatus{}, err
	}
	return model.SupportStatus{Supported: f.scenario.IsSupported()}, nil
}

// CheckPermissions implements Scanner.
func (f *Fixture) CheckPermissions(ctx context.Context) (model.PermissionStatus, error) {
	f.record(func(c *CallCounts) { c.CheckPermissions++ })
	if err := f.answer(ctx, OpCheckPermissions); err != nil {
		return model.PermissionStatus{}, err
	}
	return AdaptCameraPermission(f.scenario.Check), nil
}

// RequestPermissions implements Scanner.
func (f *Fixture) RequestPermissions(ctx context.Context) (model.PermissionStatus, error) {
	f.record(func(c *CallCounts) { c.RequestPermissions++ })
	if err := f.answer(ctx, OpRequestPermissions); err != nil {
		return model.PermissionStatus{}, err
	}
	return AdaptCameraPermission(f.scenario.Request), nil
}

// Scan implements Scanner.
func (f *Fixture) Scan(ctx context.Context, opts ScanOptions) (model.ScanOutcome, error) {
	f.record(func(c *CallCounts) { c.Scan++ })
	f.mu.Lock()
	f.lastOpts = opts
	f.mu.Unlock()

	if err := f.answer(ctx, OpScan); err != nil {
		return model.ScanOutcome{}, err
	}

	barcodes := make([]model.Barcode, 0, len(f.scenario.Barcodes))
	for _, bc := range f.scenario.Barcodes {
		b := model.Barcode{
			DisplayValue: bc.DisplayValue,
			Format:       model.ParseBarcodeFormat(bc.Format),
			ValueType:    bc.ValueType,
		}
		if bc.RawValue != nil {
			b.RawValue = model.StringPtr(*bc.RawValue)
			if b.DisplayValue == "" {
				b.DisplayValue = *bc.RawValue
			}
			if b.ValueType == "" {
				b.ValueType = ClassifyValue(*bc.RawValue)
			}
		}
		if len(bc.Metadata) > 0 {
			b.Metadata = make(map[string]string, len(bc.Metadata))
			for k, v := range bc.Metadata {
				b.Metadata[k] = v
			}
		}
		barcodes = append(barcodes, b)
	}
	return model.ScanOutcome{Barcodes: barcodes}, nil
}

// Calls returns how often each call ran.
func (f *Fixture) Calls() CallCounts {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastScanOptions returns the options of the most recent Scan call.
func (f *Fixture) LastScanOptions() ScanOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOpts
}

func (f *Fixture) record(update func(c *CallCounts)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	update(&f.calls)
}

// answer waits for the scripted delay and returns the scripted failure for op.
func (f *Fixture) answer(ctx context.Context, op string) error {
	if f.scenario.Delay > 0 {
		timer := time.NewTimer(f.scenario.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return &Error{Op: op, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	fail := f.scenario.Fail
	if fail == nil || fail.Step != op {
		return nil
	}
	e := &Error{Op: op, Message: fail.Description}
	if fail.Error != "" {
		e.Err = errors.New(fail.Error)
	}
	return e
}
