// Package i18n provides the user-facing texts of a scan attempt in every
// supported language, backed by a golang.org/x/text message catalog.
//
// Message keys are the English texts themselves, so English output never
// depends on catalog lookups succeeding.
package i18n

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. They double as the English texts.
const (
	// MsgUnsupported is shown when the capability is not supported.
	MsgUnsupported = "scanning capability not supported on this platform (commonly the case on non-native targets)"
	// MsgPermissionDenied is shown when camera permission was not granted.
	MsgPermissionDenied = "camera permission not granted"
	// MsgNoCode is shown when a scan decoded nothing.
	MsgNoCode = "no code detected"
	// LabelTitle heads the report.
	LabelTitle = "QR Scanner"
	// LabelContent heads the result section.
	LabelContent = "Content"
	// LabelDebug heads the trace section.
	LabelDebug = "Debug"
	// LabelState labels the attempt state.
	LabelState = "State"
	// LabelPlatform labels the attempt platform.
	LabelPlatform = "Platform"
	// LabelSource labels the scanned input.
	LabelSource = "Source"
	// LabelAttempt labels the attempt identifier.
	LabelAttempt = "Attempt"
	// LabelFormat labels the symbology of the first record.
	LabelFormat = "Format"
	// LabelSummary heads the batch summary.
	LabelSummary = "Summary"
	// LabelDecoded counts attempts that decoded a record.
	LabelDecoded = "Decoded"
	// LabelNoCode counts attempts that decoded nothing.
	LabelNoCode = "No code"
	// LabelFailed counts failed attempts.
	LabelFailed = "Failed"
	// LabelTotal counts all attempts.
	LabelTotal = "Total"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "en"

// ErrUnsupportedLanguage is returned for languages without a translation.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// spanish holds the Spanish texts.
var spanish = map[string]string{
	MsgUnsupported:      "Plugin no soportado en esta plataforma (probablemente web).",
	MsgPermissionDenied: "Permiso de cámara NO concedido.",
	MsgNoCode:           "No se detectó ningún código.",
	LabelTitle:          "Escáner QR",
	LabelContent:        "Contenido",
	LabelDebug:          "Depuración",
	LabelState:          "Estado",
	LabelPlatform:       "Plataforma",
	LabelSource:         "Origen",
	LabelAttempt:        "Intento",
	LabelFormat:         "Formato",
	LabelSummary:        "Resumen",
	LabelDecoded:        "Decodificados",
	LabelNoCode:         "Sin código",
	LabelFailed:         "Fallidos",
	LabelTotal:          "Total",
}

var supported = []language.Tag{language.English, language.Spanish}

var (
	matcher = language.NewMatcher(supported)
	texts   = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, es := range spanish {
		// SetString only fails for malformed messages; every entry here is a
		// plain string.
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.Spanish, key, es)
	}
	return b
}

// Translator renders message keys in one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Translator for lang ("en", "es", "es-MX", ...).
// An empty lang selects DefaultLanguage.
func New(lang string) (*Translator, error) {
	tag, err := match(lang)
	if err != nil {
		return nil, err
	}
	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(texts)),
	}, nil
}

// MustNew is like New but falls back to English on error.
func MustNew(lang string) *Translator {
	t, err := New(lang)
	if err != nil {
		t, _ = New(DefaultLanguage)
	}
	return t
}

// IsSupported reports whether lang has a translation.
func IsSupported(lang string) bool {
	_, err := match(lang)
	return err == nil
}

// Languages returns the supported base languages.
func Languages() []string {
	langs := make([]string, len(supported))
	for i, tag := range supported {
		langs[i] = tag.String()
	}
	return langs
}

func match(lang string) (language.Tag, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = DefaultLanguage
	}
	requested, err := language.Parse(lang)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	_, index, confidence := matcher.Match(requested)
	if confidence == language.No {
		return language.Und, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return supported[index], nil
}

// Tag returns the matched language.
func (t *Translator) Tag() language.Tag {
	return t.tag
}

// Text returns the translation of key, or key itself when the catalog has
// no entry.
func (t *Translator) Text(key string) string {
	return t.printer.Sprintf(message.Reference(key))
}
