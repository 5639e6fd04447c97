package i18n

import (
	"errors"
	"testing"

	"golang.org/x/text/language"
)

// TestNew tests language matching.
func TestNew(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		lang     string
		expected language.Tag
	}{
		{"", language.English},
		{"en", language.English},
		{"en-GB", language.English},
		{"es", language.Spanish},
		{"es-MX", language.Spanish},
	}

	for _, tc := range testCases {
		t.Run("lang "+tc.lang, func(t *testing.T) {
			t.Parallel()
			tr, err := New(tc.lang)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tr.Tag() != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, tr.Tag())
			}
		})
	}

	t.Run("unsupported language", func(t *testing.T) {
		t.Parallel()
		_, err := New("ja")
		if !errors.Is(err, ErrUnsupportedLanguage) {
			t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
		}
	})

	t.Run("malformed language", func(t *testing.T) {
		t.Parallel()
		_, err := New("not a language!")
		if !errors.Is(err, ErrUnsupportedLanguage) {
			t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
		}
	})
}

// TestTranslatorText tests message rendering in both languages.
func TestTranslatorText(t *testing.T) {
	t.Parallel()

	t.Run("english uses the keys", func(t *testing.T) {
		t.Parallel()
		tr := MustNew("en")
		for _, key := range []string{MsgUnsupported, MsgPermissionDenied, MsgNoCode} {
			if got := tr.Text(key); got != key {
				t.Errorf("expected %q, got %q", key, got)
			}
		}
	})

	t.Run("spanish texts", func(t *testing.T) {
		t.Parallel()
		tr := MustNew("es")
		if got := tr.Text(MsgPermissionDenied); got != "Permiso de cámara NO concedido." {
			t.Errorf("unexpected translation %q", got)
		}
		if got := tr.Text(MsgNoCode); got != "No se detectó ningún código." {
			t.Errorf("unexpected translation %q", got)
		}
	})

	t.Run("unknown key falls back to itself", func(t *testing.T) {
		t.Parallel()
		tr := MustNew("es")
		if got := tr.Text("not in catalog"); got != "not in catalog" {
			t.Errorf("expected key back, got %q", got)
		}
	})

	t.Run("MustNew falls back to english", func(t *testing.T) {
		t.Parallel()
		tr := MustNew("ja")
		if tr.Tag() != language.English {
			t.Errorf("expected English fallback, got %v", tr.Tag())
		}
	})
}

// TestIsSupported tests IsSupported and Languages.
func TestIsSupported(t *testing.T) {
	t.Parallel()

	if !IsSupported("es") || !IsSupported("en") {
		t.Error("expected en and es to be supported")
	}
	if IsSupported("fr") {
		t.Error("expected fr to be unsupported")
	}
	if len(Languages()) != 2 {
		t.Errorf("expected 2 languages, got %v", Languages())
	}
}
