// Package model defines the data structures shared by the scan workflow.
//
// This package contains the following main types:
//   - SupportStatus, PermissionStatus: answers from the scanning capability
//   - Barcode, ScanOutcome: decoded records returned by a scan
//   - Attempt: the mutable working state of one scan attempt
//   - Snapshot: an immutable copy of an attempt handed to the presentation layer
//
// All types serialize to JSON for trace lines and report output.
package model
