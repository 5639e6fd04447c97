package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// fixtureConfig scripts the scenarios used by the command tests.
const fixtureConfig = `defaults:
  driver: fixture
  scenario: default
scenarios:
  default:
    platform: android
    check: granted
    barcodes:
      - rawValue: "HELLO"
        format: QR_CODE
  prompt:
    platform: ios
    check: prompt
    request: true
    barcodes:
      - rawValue: "https://example.com"
        format: QR_CODE
  denied:
    platform: android
    check: denied
    request: denied
  unsupported:
    platform: web
    supported: false
  no-code:
    check: granted
`

// writeConfig writes content to a config file in a temporary directory and
// returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codescan.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
