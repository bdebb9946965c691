// SPDX-License-Identifier: MPL-2.0

package fence

import (
	"fmt"
	"strings"
)

const (
	// SeverityError indicates a violation that makes the fence unusable.
	SeverityError Severity = iota
	// SeverityWarning indicates a potential issue that does not prevent
	// rendering.
	SeverityWarning
)

type (
	// Severity indicates how serious a validation finding is.
	Severity int

	// ValidationError is a single finding from fence validation.
	ValidationError struct {
		// Code is the stable machine-readable identifier of the rule that
		// produced the finding (e.g. CodeQuizCorrectCount).
		Code string
		// Field is the path to the offending value within the body
		// (e.g. "options[2].text"). Empty when the finding concerns the
		// body as a whole.
		Field string
		// Message is the human-readable description.
		Message string
		// Severity is the finding level.
		Severity Severity
		// Line is the 1-based line within the fence body, or 0 when no
		// position is known. Callers offset this by the body's position in
		// the enclosing lesson.
		Line int
	}

	// ValidationErrors is a collection of validation findings that
	// implements the error interface, so a validation pass can report every
	// problem at once.
	ValidationErrors []ValidationError
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Severity, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Severity, e.Message)
}

// IsError reports whether the finding is error-severity.
func (e ValidationError) IsError() bool { return e.Severity == SeverityError }

// Error implements the error interface for ValidationErrors.
func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "no validation errors"
	}
	if len(errs) == 1 {
		return errs[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation findings:", len(errs))
	for _, e := range errs {
		sb.WriteString("\n  ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// HasErrors reports whether any finding is error-severity.
func (errs ValidationErrors) HasErrors() bool {
	for _, e := range errs {
		if e.IsError() {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-severity findings.
func (errs ValidationErrors) ErrorCount() int {
	n := 0
	for _, e := range errs {
		if e.IsError() {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity findings.
func (errs ValidationErrors) WarningCount() int {
	return len(errs) - errs.ErrorCount()
}
