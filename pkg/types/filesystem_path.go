// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath is an absolute or relative filesystem path. The zero
	// value ("") is invalid: a path must always point somewhere, and
	// "use the default" is expressed by the caller, not by an empty path.
	FilesystemPath string

	// InvalidFilesystemPathError is returned for an empty or
	// whitespace-only FilesystemPath.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
	}
)

// String returns the path as a plain string.
func (p FilesystemPath) String() string { return string(p) }

// IsValid reports whether the path is non-empty after trimming whitespace.
func (p FilesystemPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) != "" {
		return true, nil
	}
	return false, []error{&InvalidFilesystemPathError{Value: p}}
}

// Error implements the error interface.
func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is() compatibility.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
