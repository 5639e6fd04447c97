package capability

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nao1215/codescan/internal/model"
)

// AdaptPermission converts a raw permission value into a PermissionState.
//
// Platforms report camera permission either as a tri-state string or as a
// boolean. Affirmative shapes (true, "granted", "authorized", "allowed")
// become PermissionGranted; "limited" stays limited; false and refusals
// become PermissionDenied; a missing value means the user was never asked.
// Anything unrecognised is PermissionUnavailable, which is never accepted.
func AdaptPermission(raw any) model.PermissionState {
	switch v := raw.(type) {
	case nil:
		return model.PermissionPrompt
	case bool:
		if v {
			return model.PermissionGranted
		}
		return model.PermissionDenied
	case model.PermissionState:
		if v.IsValid() {
			return v
		}
		return model.PermissionUnavailable
	case string:
		return adaptPermissionString(v)
	default:
		return model.PermissionUnavailable
	}
}

func adaptPermissionString(s string) model.PermissionState {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	switch normalized {
	case "granted", "authorized", "allowed", "true", "yes", "always", "when-in-use":
		return model.PermissionGranted
	case "limited", "provisional":
		return model.PermissionLimited
	case "denied", "false", "no", "never", "blocked":
		return model.PermissionDenied
	case "", "prompt", "not-determined", "notdetermined", "undetermined":
		return model.PermissionPrompt
	case "prompt-with-rationale":
		return model.PermissionPromptWithRationale
	case "restricted":
		return model.PermissionRestricted
	default:
		return model.PermissionUnavailable
	}
}

// AdaptPermissionStatus reads the "camera" entry of a raw permission map.
// The map itself is kept as the reported answer.
func AdaptPermissionStatus(raw map[string]any) model.PermissionStatus {
	status := model.PermissionStatus{Camera: AdaptPermission(raw["camera"])}
	return status.WithReported(serializeReported(raw))
}

// AdaptCameraPermission adapts a raw camera permission value and keeps it as
// the reported answer {"camera": raw}.
func AdaptCameraPermission(raw any) model.PermissionStatus {
	return AdaptPermissionStatus(map[string]any{"camera": raw})
}

// serializeReported renders a raw platform answer as compact JSON. Values
// that JSON cannot hold (YAML maps with non-string keys) fall back to their
// Go form.
func serializeReported(raw map[string]any) string {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprintf("%v", raw)
	}
	return string(data)
}

// ClassifyValue guesses the payload type of decoded text the way native
// scanners label it (url, wifi, email, ...). Unrecognised text is "text".
func ClassifyValue(text string) string {
	upper := strings.ToUpper(strings.TrimSpace(text))
	switch {
	case upper == "":
		return ""
	case strings.HasPrefix(upper, "HTTP://"), strings.HasPrefix(upper, "HTTPS://"):
		return "url"
	case strings.HasPrefix(upper, "WIFI:"):
		return "wifi"
	case strings.HasPrefix(upper, "MAILTO:"), strings.HasPrefix(upper, "MATMSG:"):
		return "email"
	case strings.HasPrefix(upper, "TEL:"):
		return "phone"
	case strings.HasPrefix(upper, "SMSTO:"), strings.HasPrefix(upper, "SMS:"):
		return "sms"
	case strings.HasPrefix(upper, "GEO:"):
		return "geo"
	case strings.HasPrefix(upper, "BEGIN:VCARD"), strings.HasPrefix(upper, "MECARD:"):
		return "contact"
	case strings.HasPrefix(upper, "BEGIN:VEVENT"):
		return "calendar"
	case strings.HasPrefix(upper, "OTPAUTH://"):
		return "otp"
	default:
		return "text"
	}
}
