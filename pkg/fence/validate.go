// SPDX-License-Identifier: MPL-2.0

package fence

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Validate applies the quiz correctness rules: a single-choice quiz has
// exactly one correct option, a multiple-choice quiz at least one, and
// option texts are unique.
func (q *Quiz) Validate() ValidationErrors {
	var errs ValidationErrors

	correct := q.CorrectCount()
	switch {
	case q.Multiple && correct == 0:
		errs = append(errs, ValidationError{
			Code:     CodeQuizCorrectCount,
			Field:    "options",
			Message:  "multiple-choice quiz must mark at least one option correct",
			Severity: SeverityError,
		})
	case !q.Multiple && correct != 1:
		errs = append(errs, ValidationError{
			Code:     CodeQuizCorrectCount,
			Field:    "options",
			Message:  fmt.Sprintf("single-choice quiz must have exactly one correct option, found %d", correct),
			Severity: SeverityError,
		})
	}

	seen := make(map[string]int, len(q.Options))
	for i, opt := range q.Options {
		text := strings.TrimSpace(opt.Text)
		if first, dup := seen[text]; dup {
			errs = append(errs, ValidationError{
				Code:     CodeQuizDuplicateOption,
				Field:    fmt.Sprintf("options[%d].text", i),
				Message:  fmt.Sprintf("option text %q repeats option %d", opt.Text, first+1),
				Severity: SeverityError,
			})
			continue
		}
		seen[text] = i
	}

	return errs
}

// Validate applies the terminal session rules: every step command must be
// non-blank and should parse as POSIX shell. Parse failures are warnings —
// courses deliberately show broken input when teaching error messages — and
// a step can opt out entirely with allow_invalid.
func (t *Terminal) Validate() ValidationErrors {
	var errs ValidationErrors

	for i, step := range t.Steps {
		field := fmt.Sprintf("steps[%d].cmd", i)
		if strings.TrimSpace(step.Cmd) == "" {
			errs = append(errs, ValidationError{
				Code:     CodeShellSyntax,
				Field:    field,
				Message:  "command is blank",
				Severity: SeverityError,
			})
			continue
		}
		if step.AllowInvalid {
			continue
		}
		if err := checkShellSyntax(step.Cmd); err != nil {
			errs = append(errs, ValidationError{
				Code:     CodeShellSyntax,
				Field:    field,
				Message:  fmt.Sprintf("command does not parse as POSIX shell: %v (set allow_invalid: true if intentional)", err),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// Validate applies the command-builder rules: the base command must parse as
// shell, flags must be unique, and the example (when present) must start
// with the base command.
func (c *CommandBuilder) Validate() ValidationErrors {
	var errs ValidationErrors

	if base := strings.TrimSpace(c.Base); base != "" {
		if err := checkShellSyntax(c.Base); err != nil {
			errs = append(errs, ValidationError{
				Code:     CodeShellSyntax,
				Field:    "base",
				Message:  fmt.Sprintf("base command does not parse as POSIX shell: %v", err),
				Severity: SeverityWarning,
			})
		}
	}

	seen := make(map[string]int, len(c.Parts))
	for i, part := range c.Parts {
		flag := strings.TrimSpace(part.Flag)
		if first, dup := seen[flag]; dup {
			errs = append(errs, ValidationError{
				Code:     CodeCommandBuilderFlagDuplicate,
				Field:    fmt.Sprintf("parts[%d].flag", i),
				Message:  fmt.Sprintf("flag %q repeats part %d", part.Flag, first+1),
				Severity: SeverityError,
			})
			continue
		}
		seen[flag] = i
	}

	if c.Example != "" && !strings.HasPrefix(strings.TrimSpace(c.Example), strings.TrimSpace(c.Base)) {
		errs = append(errs, ValidationError{
			Code:     CodeCommandBuilderExample,
			Field:    "example",
			Message:  fmt.Sprintf("example does not start with base command %q", c.Base),
			Severity: SeverityWarning,
		})
	}

	return errs
}

// Validate applies the exercise rules: a solution is required unless the
// exercise is declared solution_optional, and hints must be non-blank.
func (e *Exercise) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(e.Solution) == "" && !e.SolutionOptional {
		errs = append(errs, ValidationError{
			Code:     CodeExerciseSolutionMissing,
			Field:    "solution",
			Message:  "exercise has no solution (set solution_optional: true for open-ended exercises)",
			Severity: SeverityError,
		})
	}

	for i, hint := range e.Hints {
		if strings.TrimSpace(hint) == "" {
			errs = append(errs, ValidationError{
				Code:     CodeExerciseHintEmpty,
				Field:    fmt.Sprintf("hints[%d]", i),
				Message:  "hint is blank",
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// Validate applies the walkthrough rules: every annotation must reference
// lines that exist in the code listing, ranges must not be inverted, and
// annotations should be sorted with no repeated start line.
func (w *Walkthrough) Validate() ValidationErrors {
	var errs ValidationErrors

	lineCount := w.CodeLineCount()
	prevLine := 0
	seen := make(map[int]int, len(w.Annotations))

	for i, ann := range w.Annotations {
		first, last := ann.Span()
		field := fmt.Sprintf("annotations[%d]", i)

		if ann.EndLine != 0 && ann.EndLine < ann.Line {
			errs = append(errs, ValidationError{
				Code:     CodeWalkthroughLineBounds,
				Field:    field + ".end_line",
				Message:  fmt.Sprintf("end_line %d is before line %d", ann.EndLine, ann.Line),
				Severity: SeverityError,
			})
		}
		if first > lineCount || last > lineCount {
			errs = append(errs, ValidationError{
				Code:     CodeWalkthroughLineBounds,
				Field:    field,
				Message:  fmt.Sprintf("annotation covers lines %d-%d but the code has %d line(s)", first, last, lineCount),
				Severity: SeverityError,
			})
		}

		if prior, dup := seen[ann.Line]; dup {
			errs = append(errs, ValidationError{
				Code:     CodeWalkthroughAnnotationOrder,
				Field:    field + ".line",
				Message:  fmt.Sprintf("line %d already annotated by annotation %d", ann.Line, prior+1),
				Severity: SeverityWarning,
			})
		} else {
			seen[ann.Line] = i
		}

		if ann.Line < prevLine {
			errs = append(errs, ValidationError{
				Code:     CodeWalkthroughAnnotationOrder,
				Field:    field + ".line",
				Message:  fmt.Sprintf("annotations are not sorted: line %d follows line %d", ann.Line, prevLine),
				Severity: SeverityWarning,
			})
		}
		prevLine = ann.Line
	}

	return errs
}

// checkShellSyntax parses a command with the POSIX shell grammar and
// returns the parse error, if any.
func checkShellSyntax(cmd string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	_, err := parser.Parse(strings.NewReader(cmd), "")
	return err
}
