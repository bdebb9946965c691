// SPDX-License-Identifier: MPL-2.0

package course

import "fmt"

const (
	// SeverityWarning indicates a recoverable problem worth fixing.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a problem that makes part of the course
	// unusable.
	SeverityError Severity = "error"
)

// Diagnostic codes produced during discovery. The lint layer reports these
// verbatim, so they are part of the tool's contract.
const (
	// CodeFrontmatterInvalid marks lesson frontmatter that does not decode
	// or carries invalid values.
	CodeFrontmatterInvalid = "frontmatter_invalid"
	// CodeLessonIDDuplicate marks a lesson id already claimed by an earlier
	// lesson.
	CodeLessonIDDuplicate = "lesson_id_duplicate"
	// CodeLessonUnreadable marks a lesson file that could not be read.
	CodeLessonUnreadable = "lesson_unreadable"
	// CodeNavEntryMissing marks a nav entry with no matching lesson file.
	CodeNavEntryMissing = "nav_entry_missing"
	// CodeNavDraftLesson marks a draft lesson referenced from nav.
	CodeNavDraftLesson = "nav_draft_lesson"
	// CodeLessonNotInNav marks a lesson absent from nav in strict mode.
	CodeLessonNotInNav = "lesson_not_in_nav"
	// CodePrereqUnknown marks a requires entry naming no known lesson.
	CodePrereqUnknown = "prereq_unknown"
	// CodePrereqCycle marks a cycle in the prerequisite graph.
	CodePrereqCycle = "prereq_cycle"
)

type (
	// Severity is a diagnostic level.
	Severity string

	// Diagnostic is a structured, non-fatal problem found while loading a
	// course. Diagnostics are returned to callers rather than logged, so
	// the rendering policy stays in one place (the lint report).
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity `json:"severity"`
		// Code is the stable machine-readable identifier.
		Code string `json:"code"`
		// Path is the course-root-relative file the diagnostic concerns.
		Path string `json:"path,omitempty"`
		// Line is the 1-based line within Path, or 0 when not applicable.
		Line int `json:"line,omitempty"`
		// Message is the human-readable description.
		Message string `json:"message"`
	}
)

// String formats the diagnostic in file:line: severity: message form.
func (d Diagnostic) String() string {
	switch {
	case d.Path == "":
		return fmt.Sprintf("%s: %s (%s)", d.Severity, d.Message, d.Code)
	case d.Line == 0:
		return fmt.Sprintf("%s: %s: %s (%s)", d.Path, d.Severity, d.Message, d.Code)
	default:
		return fmt.Sprintf("%s:%d: %s: %s (%s)", d.Path, d.Line, d.Severity, d.Message, d.Code)
	}
}
