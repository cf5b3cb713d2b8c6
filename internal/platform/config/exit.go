// Package config holds shared CLI plumbing for command entry points.
package config

import (
	"fmt"
	"os"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
// Entry points call it so every fatal path reports the same way.
func Exitf(format string, args ...any) {
	exitf(1, format, args...)
}

// Usagef is Exitf at exit code 2, the status the flag package uses for
// bad flags, so scripts can tell misconfiguration from a failed voyage.
func Usagef(format string, args ...any) {
	exitf(2, format, args...)
}

func exitf(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
