package capability

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"testing"

	"github.com/nao1215/codescan/internal/model"
)

const qrXML = `<barcodes xmlns='http://zbar.sourceforge.net/2008/barcode'>
<source href='code.png'>
<index num='0'>
<symbol type='QR-Code' quality='1' orientation='UP'><polygon points='+10,10 +10,90 +90,90 +90,10'/><data><![CDATA[https://example.com]]></data></symbol>
<symbol type='EAN-13' quality='83'><data><![CDATA[4006381333931]]></data></symbol>
</index>
</source>
</barcodes>`

const binaryXML = `<barcodes xmlns='http://zbar.sourceforge.net/2008/barcode'>
<source device='/dev/video0'>
<index num='3'>
<symbol type='QR-Code' quality='1'><data format='base64' length='3'><![CDATA[/wAB]]></data></symbol>
</index>
</source>
</barcodes>`

// fakeRunner records the last invocation and returns a canned answer.
type fakeRunner struct {
	stdout []byte
	code   int
	err    error

	name string
	args []string
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, int, error) {
	f.name = name
	f.args = args
	return f.stdout, f.code, f.err
}

func foundTool(file string) (string, error) {
	return "/usr/bin/" + file, nil
}

func missingTool(file string) (string, error) {
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", file)
}

func accessOK(string, bool) error { return nil }

func newTestZbar(t *testing.T, source Source, runner *fakeRunner, opts ...ZbarOption) *Zbar {
	t.Helper()
	base := []ZbarOption{
		WithCommandRunner(runner.run),
		WithLookPath(foundTool),
		WithAccessCheck(accessOK),
	}
	if source == SourceImage {
		base = append(base, WithImage("code.png"))
	}
	z, err := NewZbar(source, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewZbar() error = %v", err)
	}
	return z
}

// TestNewZbar tests constructor validation.
func TestNewZbar(t *testing.T) {
	t.Parallel()

	if _, err := NewZbar(SourceImage); !errors.Is(err, ErrNoImage) {
		t.Errorf("expected ErrNoImage, got %v", err)
	}
	if _, err := NewZbar("scanner"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("expected ErrUnknownSource, got %v", err)
	}

	z, err := NewZbar(SourceCamera, WithDevice("/dev/video2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if z.Target() != "/dev/video2" {
		t.Errorf("expected device target, got %q", z.Target())
	}
	if z.Platform() != model.CurrentPlatform() {
		t.Errorf("expected current platform, got %q", z.Platform())
	}
}

// TestZbarIsSupported tests tool discovery.
func TestZbarIsSupported(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	z := newTestZbar(t, SourceCamera, &fakeRunner{})
	support, err := z.IsSupported(ctx)
	if err != nil || !support.Supported {
		t.Errorf("expected supported, got %+v, %v", support, err)
	}

	z = newTestZbar(t, SourceCamera, &fakeRunner{}, WithLookPath(missingTool))
	support, err = z.IsSupported(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if support.Supported {
		t.Error("expected unsupported when zbarcam is missing")
	}
}

// TestZbarCheckPermissions tests mapping of access errors to permission states.
func TestZbarCheckPermissions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		accessErr error
		expected  model.PermissionState
		wantErr   bool
	}{
		{name: "accessible", expected: model.PermissionGranted},
		{name: "missing device", accessErr: fs.ErrNotExist, expected: model.PermissionUnavailable},
		{name: "no permission", accessErr: &fs.PathError{Op: "access", Path: "/dev/video0", Err: fs.ErrPermission}, expected: model.PermissionDenied},
		{name: "other error", accessErr: errors.New("io error"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotWrite bool
			access := func(_ string, write bool) error {
				gotWrite = write
				return tt.accessErr
			}
			z := newTestZbar(t, SourceCamera, &fakeRunner{}, WithAccessCheck(access))

			status, err := z.CheckPermissions(context.Background())
			if tt.wantErr {
				var capErr *Error
				if !errors.As(err, &capErr) || capErr.Op != OpCheckPermissions {
					t.Fatalf("expected check permissions error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status.Camera != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, status.Camera)
			}
			if !gotWrite {
				t.Error("expected camera source to require write access")
			}
		})
	}

	t.Run("request reports its own operation", func(t *testing.T) {
		t.Parallel()
		access := func(string, bool) error { return errors.New("io error") }
		z := newTestZbar(t, SourceImage, &fakeRunner{}, WithAccessCheck(access))
		_, err := z.RequestPermissions(context.Background())
		var capErr *Error
		if !errors.As(err, &capErr) || capErr.Op != OpRequestPermissions {
			t.Fatalf("expected request permissions error, got %v", err)
		}
	})
}

// TestZbarScan tests running zbar and decoding its output.
func TestZbarScan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("image with two symbols", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{stdout: []byte(qrXML)}
		z := newTestZbar(t, SourceImage, runner)

		outcome, err := z.Scan(ctx, ScanOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if runner.name != "zbarimg" {
			t.Errorf("expected zbarimg, got %q", runner.name)
		}
		if !slices.Equal(runner.args, []string{"--xml", "-q", "code.png"}) {
			t.Errorf("unexpected args %v", runner.args)
		}
		if len(outcome.Barcodes) != 2 {
			t.Fatalf("expected 2 barcodes, got %d", len(outcome.Barcodes))
		}

		qr := outcome.Barcodes[0]
		if qr.Text() != "https://example.com" || qr.Format != model.BarcodeFormatQRCode || qr.ValueType != "url" {
			t.Errorf("unexpected QR barcode %+v", qr)
		}
		if len(qr.CornerPoints) != 4 || qr.CornerPoints[2] != (model.Point{X: 90, Y: 90}) {
			t.Errorf("unexpected corner points %v", qr.CornerPoints)
		}
		if qr.Metadata["zbar.source"] != "code.png" || qr.Metadata["zbar.orientation"] != "UP" {
			t.Errorf("unexpected metadata %v", qr.Metadata)
		}

		ean := outcome.Barcodes[1]
		if ean.Format != model.BarcodeFormatEAN13 || ean.Text() != "4006381333931" {
			t.Errorf("unexpected EAN barcode %+v", ean)
		}
	})

	t.Run("camera arguments and format filter", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{stdout: []byte(binaryXML)}
		z := newTestZbar(t, SourceCamera, runner)

		outcome, err := z.Scan(ctx, ScanOptions{Formats: []model.BarcodeFormat{model.BarcodeFormatQRCode}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := []string{"--xml", "-Sdisable", "-Sqrcode.enable", "--oneshot", "--nodisplay", "/dev/video0"}
		if runner.name != "zbarcam" || !slices.Equal(runner.args, expected) {
			t.Errorf("unexpected invocation %s %v", runner.name, runner.args)
		}
		if len(outcome.Barcodes) != 1 {
			t.Fatalf("expected 1 barcode, got %d", len(outcome.Barcodes))
		}
		b := outcome.Barcodes[0]
		if b.RawValue != nil {
			t.Errorf("expected binary payload to have no raw value, got %q", *b.RawValue)
		}
		if !slices.Equal(b.Bytes, []byte{0xff, 0x00, 0x01}) {
			t.Errorf("unexpected bytes %v", b.Bytes)
		}
		if b.Metadata["zbar.source"] != "/dev/video0" || b.Metadata["zbar.index"] != "3" {
			t.Errorf("unexpected metadata %v", b.Metadata)
		}
	})

	t.Run("no symbols exit status", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{code: zbarNoSymbols, err: errors.New("exit status 4")}
		z := newTestZbar(t, SourceImage, runner)

		outcome, err := z.Scan(ctx, ScanOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.Barcodes == nil || len(outcome.Barcodes) != 0 {
			t.Errorf("expected empty barcode list, got %v", outcome.Barcodes)
		}
	})

	t.Run("tool failure", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("exit status 1")
		runner := &fakeRunner{code: 1, err: cause}
		z := newTestZbar(t, SourceImage, runner)

		_, err := z.Scan(ctx, ScanOptions{})
		var capErr *Error
		if !errors.As(err, &capErr) || capErr.Op != OpScan {
			t.Fatalf("expected scan error, got %v", err)
		}
		if !errors.Is(err, cause) {
			t.Error("expected scan error to wrap the runner error")
		}
	})

	t.Run("garbage output", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{stdout: []byte("not xml at all <")}
		z := newTestZbar(t, SourceImage, runner)

		_, err := z.Scan(ctx, ScanOptions{})
		if !errors.Is(err, ErrUnexpectedOutput) {
			t.Fatalf("expected ErrUnexpectedOutput, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		runner := &fakeRunner{code: -1, err: errors.New("signal: killed")}
		z := newTestZbar(t, SourceCamera, runner)

		_, err := z.Scan(cctx, ScanOptions{})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

// TestParsePolygon tests polygon parsing with malformed pairs.
func TestParsePolygon(t *testing.T) {
	t.Parallel()

	got := parsePolygon("+1,2 bad +3,x +4,5")
	expected := []model.Point{{X: 1, Y: 2}, {X: 4, Y: 5}}
	if !slices.Equal(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

// TestImageMetadataWithoutEXIF tests that images without EXIF yield no metadata.
func TestImageMetadataWithoutEXIF(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/plain.png"
	if err := writeFile(path, []byte("\x89PNG\r\n\x1a\nnot really a png")); err != nil {
		t.Fatal(err)
	}
	meta := imageMetadata(path, discardLogger())
	if len(meta) != 0 {
		t.Errorf("expected no metadata, got %v", meta)
	}

	if meta := imageMetadata(path+".missing", discardLogger()); len(meta) != 0 {
		t.Errorf("expected no metadata for missing file, got %v", meta)
	}
}
