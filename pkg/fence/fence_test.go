// SPDX-License-Identifier: MPL-2.0

package fence

import (
	"errors"
	"testing"
)

func TestParseType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		info   string
		want   Type
		wantOK bool
	}{
		{"quiz", "quiz", TypeQuiz, true},
		{"terminal", "terminal", TypeTerminal, true},
		{"command-builder", "command-builder", TypeCommandBuilder, true},
		{"exercise", "exercise", TypeExercise, true},
		{"code-walkthrough", "code-walkthrough", TypeWalkthrough, true},
		{"surrounding whitespace", "  quiz  ", TypeQuiz, true},
		{"empty info", "", "", false},
		{"unknown type", "spoiler", "", false},
		{"info with extra words", "quiz extra", "", false},
		{"plain language", "perl", "", false},
		{"case sensitive", "Quiz", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseType(tt.info)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseType(%q) = (%q, %v), want (%q, %v)", tt.info, got, ok, tt.want, tt.wantOK)
			}
			if IsType(tt.info) != tt.wantOK {
				t.Errorf("IsType(%q) = %v, want %v", tt.info, !tt.wantOK, tt.wantOK)
			}
		})
	}
}

func TestTypeIsValid(t *testing.T) {
	t.Parallel()

	for _, typ := range AllTypes() {
		if valid, errs := typ.IsValid(); !valid || len(errs) != 0 {
			t.Errorf("IsValid(%s) = (%v, %v), want (true, nil)", typ, valid, errs)
		}
	}

	valid, errs := Type("bogus").IsValid()
	if valid {
		t.Error("IsValid(bogus) = true, want false")
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidType) {
		t.Errorf("IsValid(bogus) errors = %v, want one wrapping ErrInvalidType", errs)
	}
}

func TestTypeHumanize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  Type
		want string
	}{
		{TypeQuiz, "Quiz"},
		{TypeTerminal, "Terminal"},
		{TypeCommandBuilder, "Command Builder"},
		{TypeExercise, "Exercise"},
		{TypeWalkthrough, "Code Walkthrough"},
	}

	for _, tt := range tests {
		if got := tt.typ.Humanize(); got != tt.want {
			t.Errorf("Humanize(%s) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestAllTypes(t *testing.T) {
	t.Parallel()

	types := AllTypes()
	if len(types) != 5 {
		t.Fatalf("AllTypes() returned %d types, want 5", len(types))
	}
	seen := make(map[Type]bool, len(types))
	for _, typ := range types {
		if seen[typ] {
			t.Errorf("AllTypes() repeats %s", typ)
		}
		seen[typ] = true
	}
}
