// SPDX-License-Identifier: MPL-2.0

// Package fence implements the interactive fence micro-languages embedded in
// lesson Markdown: quiz, terminal, command-builder, exercise, and
// code-walkthrough. A fence opens with three or more backticks immediately
// followed by the type name; its body is a YAML document.
//
// The package covers the full lifecycle of a fence body: YAML decoding into
// typed configs, CUE schema validation, semantic validation (cross-field
// rules the schema cannot express), JSON encoding for the HTML data-config
// attribute, and plaintext renditions for terminal output.
package fence

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// TypeQuiz is a multiple-choice question block.
	TypeQuiz Type = "quiz"
	// TypeTerminal is a simulated terminal session block.
	TypeTerminal Type = "terminal"
	// TypeCommandBuilder is an interactive command assembly block.
	TypeCommandBuilder Type = "command-builder"
	// TypeExercise is a coding exercise block with hints and a solution.
	TypeExercise Type = "exercise"
	// TypeWalkthrough is an annotated code listing block.
	TypeWalkthrough Type = "code-walkthrough"
)

// ErrInvalidType is the sentinel error wrapped by InvalidTypeError.
var ErrInvalidType = errors.New("invalid fence type")

type (
	// Type identifies an interactive fence micro-language. It appears as the
	// info string of the fenced code block ("```quiz"). The zero value ("")
	// is invalid.
	Type string

	// InvalidTypeError is returned when a Type value is not one of the five
	// supported fence types.
	InvalidTypeError struct {
		Value Type
	}

	// Block is one interactive fence extracted from a lesson document.
	// The body is kept raw: downstream consumers decode it on demand so the
	// original key order survives for JSON encoding.
	Block struct {
		// Type is the fence micro-language.
		Type Type
		// Body is the raw YAML between the fence markers, without the
		// trailing newline before the closing fence.
		Body []byte
		// Path is the lesson file the fence was extracted from.
		Path string
		// Line is the 1-based line of the opening fence within the lesson.
		Line int
		// BodyLine is the 1-based line of the first body line. Diagnostics
		// about positions inside the body are offset from here.
		BodyLine int
		// Index is the 0-based position among the interactive fences of the
		// lesson, in document order.
		Index int
	}
)

// AllTypes returns the supported fence types in canonical order.
func AllTypes() []Type {
	return []Type{TypeQuiz, TypeTerminal, TypeCommandBuilder, TypeExercise, TypeWalkthrough}
}

// IsType reports whether the given info string names a fence type. The info
// string must match exactly after trimming surrounding whitespace; a longer
// info string ("quiz extra") is an ordinary code block.
func IsType(info string) bool {
	_, ok := ParseType(info)
	return ok
}

// ParseType parses an info string into a Type. It returns false when the
// trimmed info string is not one of the supported types.
func ParseType(info string) (Type, bool) {
	t := Type(strings.TrimSpace(info))
	if valid, _ := t.IsValid(); !valid {
		return "", false
	}
	return t, true
}

// String returns the string representation of the Type.
func (t Type) String() string { return string(t) }

// IsValid returns whether the Type is one of the supported fence types,
// and a list of validation errors if it is not.
func (t Type) IsValid() (bool, []error) {
	switch t {
	case TypeQuiz, TypeTerminal, TypeCommandBuilder, TypeExercise, TypeWalkthrough:
		return true, nil
	default:
		return false, []error{&InvalidTypeError{Value: t}}
	}
}

// Humanize returns the display name of the Type: hyphens become spaces and
// each word is title-cased ("code-walkthrough" -> "Code Walkthrough"). This
// is the final fallback in the title chain used for rendered output.
func (t Type) Humanize() string {
	words := strings.Split(string(t), "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Error implements the error interface for InvalidTypeError.
func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid fence type %q (valid: quiz, terminal, command-builder, exercise, code-walkthrough)", e.Value)
}

// Unwrap returns ErrInvalidType for errors.Is() compatibility.
func (e *InvalidTypeError) Unwrap() error { return ErrInvalidType }
