package capability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/nao1215/codescan/internal/model"
)

// Source selects where Zbar reads symbols from.
type Source string

const (
	// SourceCamera reads frames from a video device with zbarcam.
	SourceCamera Source = "camera"
	// SourceImage decodes one image file with zbarimg.
	SourceImage Source = "image"
)

// zbarNoSymbols is the exit status zbarimg uses when it decoded nothing.
const zbarNoSymbols = 4

// CommandRunner runs an external command and returns its standard output,
// its exit status and any error. A non-zero exit status is reported both as
// the status and as an error.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout []byte, exitCode int, err error)

// LookPathFunc resolves an executable name, like exec.LookPath.
type LookPathFunc func(file string) (string, error)

// AccessFunc checks that path can be read (and written when write is true).
type AccessFunc func(path string, write bool) error

// Zbar is a Scanner backed by the zbar command line tools.
//
// The camera source runs "zbarcam --oneshot" against a video device; the
// image source runs "zbarimg" against one file. In both cases zbar prints
// an XML document that is converted into model.Barcode values.
type Zbar struct {
	source      Source
	device      string
	image       string
	zbarimgPath string
	zbarcamPath string
	readEXIF    bool

	run      CommandRunner
	lookPath LookPathFunc
	access   AccessFunc
	logger   *slog.Logger
}

// ZbarOption configures a Zbar.
type ZbarOption func(*Zbar)

// WithDevice sets the video device used by the camera source.
func WithDevice(device string) ZbarOption {
	return func(z *Zbar) {
		z.device = device
	}
}

// WithImage sets the image file used by the image source.
func WithImage(path string) ZbarOption {
	return func(z *Zbar) {
		z.image = path
	}
}

// WithExecutables overrides the zbarimg and zbarcam executables.
// Empty values keep the defaults.
func WithExecutables(zbarimg, zbarcam string) ZbarOption {
	return func(z *Zbar) {
		if zbarimg != "" {
			z.zbarimgPath = zbarimg
		}
		if zbarcam != "" {
			z.zbarcamPath = zbarcam
		}
	}
}

// WithEXIF enables copying EXIF tags of scanned images into record metadata.
func WithEXIF(enabled bool) ZbarOption {
	return func(z *Zbar) {
		z.readEXIF = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ZbarOption {
	return func(z *Zbar) {
		z.logger = logger
	}
}

// WithCommandRunner replaces the function that executes zbar.
func WithCommandRunner(run CommandRunner) ZbarOption {
	return func(z *Zbar) {
		z.run = run
	}
}

// WithLookPath replaces the executable lookup.
func WithLookPath(lookPath LookPathFunc) ZbarOption {
	return func(z *Zbar) {
		z.lookPath = lookPath
	}
}

// WithAccessCheck replaces the file access check.
func WithAccessCheck(access AccessFunc) ZbarOption {
	return func(z *Zbar) {
		z.access = access
	}
}

// NewZbar creates a Zbar for the given source.
func NewZbar(source Source, opts ...ZbarOption) (*Zbar, error) {
	z := &Zbar{
		source:      source,
		device:      "/dev/video0",
		zbarimgPath: "zbarimg",
		zbarcamPath: "zbarcam",
		run:         runCommand,
		lookPath:    exec.LookPath,
		access:      checkAccess,
	}

	for _, opt := range opts {
		opt(z)
	}

	if z.logger == nil {
		z.logger = slog.Default()
	}

	switch z.source {
	case SourceCamera:
	case SourceImage:
		if z.image == "" {
			return nil, ErrNoImage
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	return z, nil
}

// Platform implements Scanner.
func (z *Zbar) Platform() model.Platform {
	return model.CurrentPlatform()
}

// Target returns the device or image this Zbar scans.
func (z *Zbar) Target() string {
	if z.source == SourceImage {
		return z.image
	}
	return z.device
}

// IsSupported implements Scanner. Scanning is supported when the zbar tool
// for the configured source is installed.
func (z *Zbar) IsSupported(_ context.Context) (model.SupportStatus, error) {
	tool := z.tool()
	path, err := z.lookPath(tool)
	if err != nil {
		z.logger.Debug("zbar tool not found", "tool", tool, "error", err)
		return model.SupportStatus{Supported: false}, nil
	}
	z.logger.Debug("zbar tool found", "tool", tool, "path", path)
	return model.SupportStatus{Supported: true}, nil
}

// CheckPermissions implements Scanner.
//
// The camera source needs read/write access to the device node; the image
// source needs read access to the file.
func (z *Zbar) CheckPermissions(_ context.Context) (model.PermissionStatus, error) {
	target := z.Target()
	err := z.access(target, z.source == SourceCamera)
	switch {
	case err == nil:
		return model.PermissionStatus{Camera: model.PermissionGranted}, nil
	case errors.Is(err, fs.ErrNotExist):
		z.logger.Debug("scan target does not exist", "target", target)
		return model.PermissionStatus{Camera: model.PermissionUnavailable}, nil
	case errors.Is(err, fs.ErrPermission):
		z.logger.Debug("scan target not accessible", "target", target, "error", err)
		return model.PermissionStatus{Camera: model.PermissionDenied}, nil
	default:
		return model.PermissionStatus{}, &Error{
			Op:      OpCheckPermissions,
			Message: "cannot check access to " + target,
			Err:     err,
		}
	}
}

// RequestPermissions implements Scanner.
//
// Desktop systems have no interactive camera prompt; access is granted by
// group membership or device ACLs. The request therefore re-checks access,
// which picks up changes made since the first check.
func (z *Zbar) RequestPermissions(ctx context.Context) (model.PermissionStatus, error) {
	z.logger.Debug("permission request re-checks access", "target", z.Target())
	status, err := z.CheckPermissions(ctx)
	if err != nil {
		var capErr *Error
		if errors.As(err, &capErr) {
			capErr.Op = OpRequestPermissions
		}
		return model.PermissionStatus{}, err
	}
	return status, nil
}

// Scan implements Scanner.
func (z *Zbar) Scan(ctx context.Context, opts ScanOptions) (model.ScanOutcome, error) {
	tool := z.tool()
	args := z.args(opts)

	z.logger.Debug("running zbar", "tool", tool, "args", args)
	stdout, code, err := z.run(ctx, tool, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.ScanOutcome{}, &Error{Op: OpScan, Message: "scan cancelled", Err: ctxErr}
		}
		if code != zbarNoSymbols {
			return model.ScanOutcome{}, &Error{Op: OpScan, Message: describeRunError(tool, err), Err: err}
		}
	}

	barcodes, err := parseZbarXML(stdout)
	if err != nil {
		return model.ScanOutcome{}, &Error{Op: OpScan, Message: "cannot read zbar output", Err: err}
	}

	if z.source == SourceImage && z.readEXIF && len(barcodes) > 0 {
		meta := imageMetadata(z.image, z.logger)
		for i := range barcodes {
			for k, v := range meta {
				barcodes[i].Metadata[k] = v
			}
		}
	}

	return model.ScanOutcome{Barcodes: barcodes}, nil
}

func (z *Zbar) tool() string {
	if z.source == SourceImage {
		return z.zbarimgPath
	}
	return z.zbarcamPath
}

func (z *Zbar) args(opts ScanOptions) []string {
	args := []string{"--xml"}
	if len(opts.Formats) > 0 {
		// Turn every symbology off, then enable the requested ones
		args = append(args, "-Sdisable")
		for _, f := range opts.Formats {
			if name, ok := zbarSymbologies[f]; ok {
				args = append(args, "-S"+name+".enable")
			}
		}
	}
	if z.source == SourceImage {
		return append(args, "-q", z.image)
	}
	return append(args, "--oneshot", "--nodisplay", z.device)
}

// zbarSymbologies maps formats to zbar configuration symbol names.
var zbarSymbologies = map[model.BarcodeFormat]string{
	model.BarcodeFormatQRCode:  "qrcode",
	model.BarcodeFormatCodabar: "codabar",
	model.BarcodeFormatCode39:  "code39",
	model.BarcodeFormatCode93:  "code93",
	model.BarcodeFormatCode128: "code128",
	model.BarcodeFormatEAN8:    "ean8",
	model.BarcodeFormatEAN13:   "ean13",
	model.BarcodeFormatITF:     "i25",
	model.BarcodeFormatPDF417:  "pdf417",
	model.BarcodeFormatUPCA:    "upca",
	model.BarcodeFormatUPCE:    "upce",
	model.BarcodeFormatDataBar: "databar",
}

// describeRunError turns a zbar execution failure into a display message,
// preferring what zbar printed on stderr.
func describeRunError(tool string, err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
			return msg
		}
		return fmt.Sprintf("%s exited with status %d", tool, exitErr.ExitCode())
	}
	return ""
}

// runCommand is the default CommandRunner.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // zbar executable is user configured
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitErr.Stderr = stderr.Bytes()
			return out, exitErr.ExitCode(), err
		}
		return out, -1, err
	}
	return out, 0, nil
}
