// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// ValidationError is one schema violation with enough position context to
// point a user at the offending value.
type ValidationError struct {
	// FilePath is the file being validated.
	FilePath string

	// CUEPath locates the invalid value in JSON-path notation
	// (e.g. "options[0].text").
	CUEPath string

	// Message is the validation message.
	Message string

	// Line is the 1-based line of the offending value within the validated
	// document, or 0 when no position is available.
	Line int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.CUEPath == "" {
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.FilePath, e.CUEPath, e.Message)
}

// Unwrap returns nil; ValidationError is a leaf.
func (e *ValidationError) Unwrap() error {
	return nil
}

// FormatError rewrites a CUE error into "<file>: <json-path>: <message>"
// form, one line per violation:
//
//	course.yml: nav[2]: expected string, got int
//	config.cue: serve.addr: value exceeds maximum length
//
// Non-CUE errors pass through with the file prefix only.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(cueErrors))
	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := trimPathPrefix(e.Error(), pathStr)
		if pathStr == "" {
			lines = append(lines, msg)
		} else {
			lines = append(lines, pathStr+": "+msg)
		}
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// trimPathPrefix drops the path CUE sometimes repeats at the front of its
// own message, so the formatted line does not state it twice.
func trimPathPrefix(msg, pathStr string) string {
	if pathStr == "" || !strings.HasPrefix(msg, pathStr) {
		return msg
	}
	msg = strings.TrimPrefix(msg, pathStr)
	msg = strings.TrimPrefix(msg, ":")
	return strings.TrimSpace(msg)
}

// formatPath renders a CUE error path ("options", "0", "text") in JSON-path
// notation ("options[0].text"). Purely numeric elements after the first are
// treated as list indices.
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		switch {
		case i > 0 && isAllDigits(part):
			b.WriteString("[" + part + "]")
		case i > 0:
			b.WriteString("." + part)
		default:
			b.WriteString(part)
		}
	}
	return b.String()
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize rejects input larger than maxSize bytes before it reaches
// the CUE evaluator.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
