// Package config provides configuration structures and utilities for codescan.
// It defines which scanning capability to drive, how to reach it, and how the
// attempt result is reported.
package config
