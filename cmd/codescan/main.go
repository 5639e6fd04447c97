// Package main provides the entry point for the codescan CLI.
//
// codescan runs QR code and barcode scan attempts: it checks that scanning
// is supported, checks and if needed requests camera permission, scans once
// and prints the decoded content together with a trace of every step.
//
// Usage:
//
//	codescan scan
//	codescan scan --source image --image code.png
//	codescan scan --driver fixture --scenario denied
//
// See --help for all available options.
package main

// main is the entry point for codescan.
func main() {
	Execute()
}
