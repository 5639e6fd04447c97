// Package pipeline runs the steps of one scan attempt in sequence.
//
// An attempt passes through four steps: the support query, the permission
// check, an optional permission request and the scan itself. Each step is a
// Step that moves the attempt into its own state, calls the capability once
// and appends its trace line to the attempt log. The first failing step ends
// the attempt; the caller turns the returned error into a displayed message.
package pipeline
