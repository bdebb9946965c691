// SPDX-License-Identifier: MPL-2.0

package fence

import (
	"testing"
)

// findingWith reports whether any finding carries the given code and
// severity.
func findingWith(errs ValidationErrors, code string, sev Severity) bool {
	for _, e := range errs {
		if e.Code == code && e.Severity == sev {
			return true
		}
	}
	return false
}

func TestQuizValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		quiz      Quiz
		wantCode  string
		wantLevel Severity
		wantClean bool
	}{
		{
			name: "single choice with one correct",
			quiz: Quiz{
				Question: "Which sigil?",
				Options:  []QuizOption{{Text: "$", Correct: true}, {Text: "@"}},
			},
			wantClean: true,
		},
		{
			name: "single choice with no correct",
			quiz: Quiz{
				Question: "Which sigil?",
				Options:  []QuizOption{{Text: "$"}, {Text: "@"}},
			},
			wantCode:  CodeQuizCorrectCount,
			wantLevel: SeverityError,
		},
		{
			name: "single choice with two correct",
			quiz: Quiz{
				Question: "Which sigil?",
				Options:  []QuizOption{{Text: "$", Correct: true}, {Text: "@", Correct: true}},
			},
			wantCode:  CodeQuizCorrectCount,
			wantLevel: SeverityError,
		},
		{
			name: "multiple choice with no correct",
			quiz: Quiz{
				Question: "Which are sigils?",
				Multiple: true,
				Options:  []QuizOption{{Text: "$"}, {Text: "@"}},
			},
			wantCode:  CodeQuizCorrectCount,
			wantLevel: SeverityError,
		},
		{
			name: "multiple choice with several correct",
			quiz: Quiz{
				Question: "Which are sigils?",
				Multiple: true,
				Options:  []QuizOption{{Text: "$", Correct: true}, {Text: "@", Correct: true}, {Text: "x"}},
			},
			wantClean: true,
		},
		{
			name: "duplicate option text",
			quiz: Quiz{
				Question: "Which sigil?",
				Options:  []QuizOption{{Text: "$", Correct: true}, {Text: " $ "}},
			},
			wantCode:  CodeQuizDuplicateOption,
			wantLevel: SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errs := tt.quiz.Validate()
			if tt.wantClean {
				if len(errs) != 0 {
					t.Errorf("Validate() = %v, want no findings", errs)
				}
				return
			}
			if !findingWith(errs, tt.wantCode, tt.wantLevel) {
				t.Errorf("Validate() = %v, want a %s finding with code %s", errs, tt.wantLevel, tt.wantCode)
			}
		})
	}
}

func TestTerminalValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid session", func(t *testing.T) {
		t.Parallel()

		term := Terminal{Steps: []TerminalStep{
			{Cmd: "perl -v", Output: "This is perl 5"},
			{Cmd: `perl -e 'print "hi\n"'`},
		}}
		if errs := term.Validate(); len(errs) != 0 {
			t.Errorf("Validate() = %v, want no findings", errs)
		}
	})

	t.Run("blank command is an error", func(t *testing.T) {
		t.Parallel()

		term := Terminal{Steps: []TerminalStep{{Cmd: "   "}}}
		errs := term.Validate()
		if !findingWith(errs, CodeShellSyntax, SeverityError) {
			t.Errorf("Validate() = %v, want shell_syntax error", errs)
		}
	})

	t.Run("unparseable command is a warning", func(t *testing.T) {
		t.Parallel()

		term := Terminal{Steps: []TerminalStep{{Cmd: "echo ("}}}
		errs := term.Validate()
		if !findingWith(errs, CodeShellSyntax, SeverityWarning) {
			t.Errorf("Validate() = %v, want shell_syntax warning", errs)
		}
	})

	t.Run("allow_invalid suppresses the syntax check", func(t *testing.T) {
		t.Parallel()

		term := Terminal{Steps: []TerminalStep{{Cmd: "echo (", AllowInvalid: true}}}
		if errs := term.Validate(); len(errs) != 0 {
			t.Errorf("Validate() = %v, want no findings with allow_invalid", errs)
		}
	})
}

func TestCommandBuilderValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid builder", func(t *testing.T) {
		t.Parallel()

		cb := CommandBuilder{
			Base:    "perl",
			Parts:   []CommandPart{{Flag: "-e"}, {Flag: "-n"}},
			Example: "perl -e 'print 42'",
		}
		if errs := cb.Validate(); len(errs) != 0 {
			t.Errorf("Validate() = %v, want no findings", errs)
		}
	})

	t.Run("duplicate flag is an error", func(t *testing.T) {
		t.Parallel()

		cb := CommandBuilder{Base: "perl", Parts: []CommandPart{{Flag: "-e"}, {Flag: " -e "}}}
		errs := cb.Validate()
		if !findingWith(errs, CodeCommandBuilderFlagDuplicate, SeverityError) {
			t.Errorf("Validate() = %v, want flag duplicate error", errs)
		}
	})

	t.Run("example must start with base", func(t *testing.T) {
		t.Parallel()

		cb := CommandBuilder{Base: "perl", Parts: []CommandPart{{Flag: "-e"}}, Example: "python -c pass"}
		errs := cb.Validate()
		if !findingWith(errs, CodeCommandBuilderExample, SeverityWarning) {
			t.Errorf("Validate() = %v, want example warning", errs)
		}
	})

	t.Run("unparseable base is a warning", func(t *testing.T) {
		t.Parallel()

		cb := CommandBuilder{Base: "perl ((", Parts: []CommandPart{{Flag: "-e"}}}
		errs := cb.Validate()
		if !findingWith(errs, CodeShellSyntax, SeverityWarning) {
			t.Errorf("Validate() = %v, want shell_syntax warning", errs)
		}
	})
}

func TestExerciseValidate(t *testing.T) {
	t.Parallel()

	t.Run("solution required by default", func(t *testing.T) {
		t.Parallel()

		ex := Exercise{ExplicitTitle: "FizzBuzz", Task: "Print."}
		errs := ex.Validate()
		if !findingWith(errs, CodeExerciseSolutionMissing, SeverityError) {
			t.Errorf("Validate() = %v, want solution_missing error", errs)
		}
	})

	t.Run("solution_optional waives the requirement", func(t *testing.T) {
		t.Parallel()

		ex := Exercise{ExplicitTitle: "Open ended", Task: "Explore.", SolutionOptional: true}
		if errs := ex.Validate(); len(errs) != 0 {
			t.Errorf("Validate() = %v, want no findings", errs)
		}
	})

	t.Run("blank hint is an error", func(t *testing.T) {
		t.Parallel()

		ex := Exercise{ExplicitTitle: "H", Task: "T", Solution: "print;", Hints: []string{"use modulo", "  "}}
		errs := ex.Validate()
		if !findingWith(errs, CodeExerciseHintEmpty, SeverityError) {
			t.Errorf("Validate() = %v, want hint_empty error", errs)
		}
	})
}

func TestWalkthroughValidate(t *testing.T) {
	t.Parallel()

	code := "my $x = 1;\nprint $x;\nexit;\n"

	tests := []struct {
		name        string
		annotations []Annotation
		wantCode    string
		wantLevel   Severity
		wantClean   bool
	}{
		{
			name:        "valid annotations",
			annotations: []Annotation{{Line: 1, Text: "declare"}, {Line: 2, EndLine: 3, Text: "use and exit"}},
			wantClean:   true,
		},
		{
			name:        "line beyond code",
			annotations: []Annotation{{Line: 4, Text: "nope"}},
			wantCode:    CodeWalkthroughLineBounds,
			wantLevel:   SeverityError,
		},
		{
			name:        "end_line beyond code",
			annotations: []Annotation{{Line: 2, EndLine: 9, Text: "nope"}},
			wantCode:    CodeWalkthroughLineBounds,
			wantLevel:   SeverityError,
		},
		{
			name:        "inverted range",
			annotations: []Annotation{{Line: 3, EndLine: 1, Text: "nope"}},
			wantCode:    CodeWalkthroughLineBounds,
			wantLevel:   SeverityError,
		},
		{
			name:        "repeated start line",
			annotations: []Annotation{{Line: 2, Text: "one"}, {Line: 2, Text: "two"}},
			wantCode:    CodeWalkthroughAnnotationOrder,
			wantLevel:   SeverityWarning,
		},
		{
			name:        "unsorted annotations",
			annotations: []Annotation{{Line: 3, Text: "later"}, {Line: 1, Text: "earlier"}},
			wantCode:    CodeWalkthroughAnnotationOrder,
			wantLevel:   SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := Walkthrough{Code: code, Annotations: tt.annotations}
			errs := w.Validate()
			if tt.wantClean {
				if len(errs) != 0 {
					t.Errorf("Validate() = %v, want no findings", errs)
				}
				return
			}
			if !findingWith(errs, tt.wantCode, tt.wantLevel) {
				t.Errorf("Validate() = %v, want a %s finding with code %s", errs, tt.wantLevel, tt.wantCode)
			}
		})
	}
}

func TestCodeLineCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		want int
	}{
		{"empty", "", 0},
		{"single line no newline", "print;", 1},
		{"single line with newline", "print;\n", 1},
		{"three lines", "a\nb\nc\n", 3},
		{"blank middle line", "a\n\nc", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := Walkthrough{Code: tt.code}
			if got := w.CodeLineCount(); got != tt.want {
				t.Errorf("CodeLineCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidationErrorsCounts(t *testing.T) {
	t.Parallel()

	errs := ValidationErrors{
		{Code: CodeQuizCorrectCount, Message: "a", Severity: SeverityError},
		{Code: CodeShellSyntax, Message: "b", Severity: SeverityWarning},
		{Code: CodeShellSyntax, Message: "c", Severity: SeverityWarning},
	}

	if !errs.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
	if got := errs.ErrorCount(); got != 1 {
		t.Errorf("ErrorCount() = %d, want 1", got)
	}
	if got := errs.WarningCount(); got != 2 {
		t.Errorf("WarningCount() = %d, want 2", got)
	}

	var none ValidationErrors
	if none.HasErrors() {
		t.Error("HasErrors() on empty = true, want false")
	}
}
