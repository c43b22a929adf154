// Package errutils defines the error kinds surfaced by cratecache and small
// helpers for wrapping them with context. User-input errors are fatal and are
// returned before any mutation; removal errors are advisory per work item.
package errutils

import (
	"fmt"
)

// Common error types used throughout the application.
var (
	// ErrCargoHomeNotDirectory is returned when the resolved cargo home does
	// not exist or is not a directory.
	ErrCargoHomeNotDirectory = fmt.Errorf("cargo home is not a directory")

	// ErrMalformedPackageName is returned when a file or directory name does
	// not follow the <name>-<version> convention.
	ErrMalformedPackageName = fmt.Errorf("malformed package name")

	// ErrInvalidDeletableDir is returned when a --remove-dir token is not in
	// the closed category set.
	ErrInvalidDeletableDir = fmt.Errorf("invalid deletable dir")

	// ErrDateParse is returned when a date literal is neither yyyy.mm.dd nor
	// hh:mm:ss.
	ErrDateParse = fmt.Errorf("failed to parse date")

	// ErrTrimLimitParse is returned when a trim size limit has an unknown
	// unit suffix or a malformed mantissa.
	ErrTrimLimitParse = fmt.Errorf("failed to parse trim limit")

	// ErrNoManifestFound is returned when the upward search from the working
	// directory found no Cargo.toml.
	ErrNoManifestFound = fmt.Errorf("no Cargo.toml manifest found")

	// ErrUnparsableManifest is returned when the manifest resolver failed.
	ErrUnparsableManifest = fmt.Errorf("unparsable manifest")

	// ErrInvalidQueryRegex is returned when a user-supplied query regex does
	// not compile.
	ErrInvalidQueryRegex = fmt.Errorf("invalid query regex")

	// ErrNoRustupHome is returned by the toolchain subcommand when the rustup
	// home directory is absent.
	ErrNoRustupHome = fmt.Errorf("no rustup home found")

	// ErrRemoveFailed is returned when the remover could not finish a
	// subtree; the message names the first unremovable entry.
	ErrRemoveFailed = fmt.Errorf("failed to remove")

	// ErrGitGCFailed is returned when git garbage collection of a bare
	// mirror failed.
	ErrGitGCFailed = fmt.Errorf("git gc failed")

	// ErrConfigParse is returned when the settings file cannot be read or
	// holds invalid values.
	ErrConfigParse = fmt.Errorf("failed to parse config")
)

// Wrap wraps an error with additional context.
// If the error is nil, Wrap returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
// If the error is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
