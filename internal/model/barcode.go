package model

import "strings"

// BarcodeFormat is the symbology of a decoded record.
type BarcodeFormat string

// Barcode format constants.
const (
	// BarcodeFormatUnknown represents a symbology the capability did not name.
	BarcodeFormatUnknown BarcodeFormat = ""
	// BarcodeFormatQRCode represents QR Code.
	BarcodeFormatQRCode BarcodeFormat = "QR_CODE"
	// BarcodeFormatAztec represents Aztec.
	BarcodeFormatAztec BarcodeFormat = "AZTEC"
	// BarcodeFormatCodabar represents Codabar.
	BarcodeFormatCodabar BarcodeFormat = "CODABAR"
	// BarcodeFormatCode39 represents Code 39.
	BarcodeFormatCode39 BarcodeFormat = "CODE_39"
	// BarcodeFormatCode93 represents Code 93.
	BarcodeFormatCode93 BarcodeFormat = "CODE_93"
	// BarcodeFormatCode128 represents Code 128.
	BarcodeFormatCode128 BarcodeFormat = "CODE_128"
	// BarcodeFormatDataMatrix represents Data Matrix.
	BarcodeFormatDataMatrix BarcodeFormat = "DATA_MATRIX"
	// BarcodeFormatEAN8 represents EAN-8.
	BarcodeFormatEAN8 BarcodeFormat = "EAN_8"
	// BarcodeFormatEAN13 represents EAN-13.
	BarcodeFormatEAN13 BarcodeFormat = "EAN_13"
	// BarcodeFormatITF represents Interleaved 2 of 5.
	BarcodeFormatITF BarcodeFormat = "ITF"
	// BarcodeFormatPDF417 represents PDF417.
	BarcodeFormatPDF417 BarcodeFormat = "PDF_417"
	// BarcodeFormatUPCA represents UPC-A.
	BarcodeFormatUPCA BarcodeFormat = "UPC_A"
	// BarcodeFormatUPCE represents UPC-E.
	BarcodeFormatUPCE BarcodeFormat = "UPC_E"
	// BarcodeFormatDataBar represents GS1 DataBar.
	BarcodeFormatDataBar BarcodeFormat = "DATABAR"
)

// String returns the string representation of the BarcodeFormat.
func (f BarcodeFormat) String() string {
	if f == BarcodeFormatUnknown {
		return "UNKNOWN"
	}
	return string(f)
}

// ParseBarcodeFormat converts a symbology name to BarcodeFormat.
// It understands both the canonical names and the names printed by zbar
// ("QR-Code", "EAN-13", "I2/5", ...).
func ParseBarcodeFormat(s string) BarcodeFormat {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "QR_CODE", "QR-CODE", "QRCODE", "QR":
		return BarcodeFormatQRCode
	case "AZTEC":
		return BarcodeFormatAztec
	case "CODABAR":
		return BarcodeFormatCodabar
	case "CODE_39", "CODE-39", "CODE39":
		return BarcodeFormatCode39
	case "CODE_93", "CODE-93", "CODE93":
		return BarcodeFormatCode93
	case "CODE_128", "CODE-128", "CODE128":
		return BarcodeFormatCode128
	case "DATA_MATRIX", "DATAMATRIX":
		return BarcodeFormatDataMatrix
	case "EAN_8", "EAN-8", "EAN8":
		return BarcodeFormatEAN8
	case "EAN_13", "EAN-13", "EAN13":
		return BarcodeFormatEAN13
	case "ITF", "I2/5", "I25":
		return BarcodeFormatITF
	case "PDF_417", "PDF417":
		return BarcodeFormatPDF417
	case "UPC_A", "UPC-A", "UPCA":
		return BarcodeFormatUPCA
	case "UPC_E", "UPC-E", "UPCE":
		return BarcodeFormatUPCE
	case "DATABAR", "DATABAR-EXP":
		return BarcodeFormatDataBar
	default:
		return BarcodeFormatUnknown
	}
}

// Point is a corner of a decoded symbol in image coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Barcode is one decoded record.
type Barcode struct {
	// RawValue is the decoded text. It is nil when the capability returned no
	// text for the symbol (binary payloads on some platforms).
	RawValue *string `json:"rawValue,omitempty"`

	// DisplayValue is a human friendly rendering of the content.
	DisplayValue string `json:"displayValue,omitempty"`

	// Format is the symbology.
	Format BarcodeFormat `json:"format,omitempty"`

	// ValueType classifies the payload (url, wifi, text, ...) when known.
	ValueType string `json:"valueType,omitempty"`

	// Bytes holds the raw payload when the capability exposes it.
	Bytes []byte `json:"bytes,omitempty"`

	// CornerPoints locates the symbol in the source frame.
	CornerPoints []Point `json:"cornerPoints,omitempty"`

	// Metadata carries capability specific details (quality, orientation,
	// source image EXIF tags).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Text returns the raw text content, or "" when the field is absent.
func (b Barcode) Text() string {
	if b.RawValue == nil {
		return ""
	}
	return *b.RawValue
}

// StringPtr returns a pointer to s. It is a convenience for building
// Barcode values with a RawValue.
func StringPtr(s string) *string {
	return &s
}

// ScanOutcome is the result of one scan call.
type ScanOutcome struct {
	Barcodes []Barcode `json:"barcodes"`
}

// First returns the first decoded record and true, or false when the scan
// produced nothing.
func (o ScanOutcome) First() (Barcode, bool) {
	if len(o.Barcodes) == 0 {
		return Barcode{}, false
	}
	return o.Barcodes[0], true
}
