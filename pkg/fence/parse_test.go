// SPDX-License-Identifier: MPL-2.0

package fence

import (
	"testing"
)

func TestParse_ValidQuiz(t *testing.T) {
	t.Parallel()

	body := `question: Which sigil denotes a scalar?
options:
  - text: $scalar
    correct: true
  - text: '@array'
  - text: '%hash'
    explanation: Hashes use the percent sigil.
`
	cfg, errs := Parse(Block{Type: TypeQuiz, Body: []byte(body)})
	if len(errs) != 0 {
		t.Fatalf("Parse() findings = %v, want none", errs)
	}

	quiz, ok := cfg.(*Quiz)
	if !ok {
		t.Fatalf("Parse() config type = %T, want *Quiz", cfg)
	}
	if quiz.Question != "Which sigil denotes a scalar?" {
		t.Errorf("Question = %q", quiz.Question)
	}
	if len(quiz.Options) != 3 {
		t.Fatalf("len(Options) = %d, want 3", len(quiz.Options))
	}
	if !quiz.Options[0].Correct || quiz.Options[1].Correct {
		t.Errorf("Correct flags = %v/%v, want true/false", quiz.Options[0].Correct, quiz.Options[1].Correct)
	}
	if quiz.Multiple {
		t.Error("Multiple = true, want default false")
	}
}

func TestParse_ValidTerminal(t *testing.T) {
	t.Parallel()

	body := `prompt: '%'
steps:
  - cmd: perl -v
    output: This is perl 5
    delay_ms: 500
  - cmd: perl -e 'print 42'
`
	cfg, errs := Parse(Block{Type: TypeTerminal, Body: []byte(body)})
	if len(errs) != 0 {
		t.Fatalf("Parse() findings = %v, want none", errs)
	}

	term := cfg.(*Terminal)
	if term.EffectivePrompt() != "%" {
		t.Errorf("EffectivePrompt() = %q, want %%", term.EffectivePrompt())
	}
	if len(term.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(term.Steps))
	}
	if term.Steps[0].DelayMs != 500 {
		t.Errorf("DelayMs = %d, want 500", term.Steps[0].DelayMs)
	}
}

func TestParse_ValidWalkthrough(t *testing.T) {
	t.Parallel()

	body := `code: |
  my $x = 1;
  print $x;
annotations:
  - line: 1
    text: my declares a lexical variable
  - line: 2
    text: print writes to STDOUT
`
	cfg, errs := Parse(Block{Type: TypeWalkthrough, Body: []byte(body)})
	if len(errs) != 0 {
		t.Fatalf("Parse() findings = %v, want none", errs)
	}

	w := cfg.(*Walkthrough)
	if w.EffectiveLanguage() != "perl" {
		t.Errorf("EffectiveLanguage() = %q, want perl", w.EffectiveLanguage())
	}
	if w.CodeLineCount() != 2 {
		t.Errorf("CodeLineCount() = %d, want 2", w.CodeLineCount())
	}
	if len(w.Annotations) != 2 {
		t.Fatalf("len(Annotations) = %d, want 2", len(w.Annotations))
	}
}

func TestParse_SemanticFindingsKeepConfig(t *testing.T) {
	t.Parallel()

	// Shape is fine, semantics are not: the config must still come back so
	// warning-level findings can render.
	body := `question: Pick one
options:
  - text: a
    correct: true
  - text: b
    correct: true
`
	cfg, errs := Parse(Block{Type: TypeQuiz, Body: []byte(body)})
	if cfg == nil {
		t.Fatal("Parse() config = nil, want *Quiz alongside findings")
	}
	if !findingWith(errs, CodeQuizCorrectCount, SeverityError) {
		t.Errorf("Parse() findings = %v, want quiz_correct_count error", errs)
	}
}

func TestParse_ExerciseSolutionRule(t *testing.T) {
	t.Parallel()

	cfg, errs := Parse(Block{Type: TypeExercise, Body: []byte("title: T\ntask: Do it.\n")})
	if cfg == nil {
		t.Fatal("Parse() config = nil, want *Exercise alongside findings")
	}
	if !findingWith(errs, CodeExerciseSolutionMissing, SeverityError) {
		t.Errorf("Parse() findings = %v, want exercise_solution_missing error", errs)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, errs := Parse(Block{Type: TypeQuiz, Body: []byte("question: [unclosed\n")})
	if cfg != nil {
		t.Errorf("Parse() config = %v, want nil for invalid YAML", cfg)
	}
	if len(errs) != 1 {
		t.Fatalf("Parse() findings = %v, want exactly one", errs)
	}
	if errs[0].Code != CodeYAMLInvalid || errs[0].Severity != SeverityError {
		t.Errorf("finding = %+v, want %s error", errs[0], CodeYAMLInvalid)
	}
}

func TestParse_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  Type
		body string
	}{
		{"missing required fields", TypeQuiz, "question: Q?\n"},
		{"too few options", TypeQuiz, "question: Q?\noptions:\n  - text: only\n    correct: true\n"},
		{"unknown field", TypeQuiz, "question: Q?\nbogus: 1\noptions:\n  - text: a\n    correct: true\n  - text: b\n"},
		{"non-mapping body", TypeQuiz, "- a\n- b\n"},
		{"wrong field type", TypeTerminal, "steps:\n  - cmd: 42\n"},
		{"empty body", TypeTerminal, ""},
		{"annotation line zero", TypeWalkthrough, "code: x\nannotations:\n  - line: 0\n    text: t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, errs := Parse(Block{Type: tt.typ, Body: []byte(tt.body)})
			if cfg != nil {
				t.Errorf("Parse() config = %v, want nil on schema violation", cfg)
			}
			if len(errs) == 0 {
				t.Fatal("Parse() findings empty, want schema findings")
			}
			for _, e := range errs {
				if e.Code != CodeSchema {
					t.Errorf("finding code = %s, want %s", e.Code, CodeSchema)
				}
				if e.Severity != SeverityError {
					t.Errorf("finding severity = %s, want error", e.Severity)
				}
			}
		})
	}
}

func TestParse_InvalidFenceType(t *testing.T) {
	t.Parallel()

	cfg, errs := Parse(Block{Type: "spoiler", Body: []byte("x: 1\n")})
	if cfg != nil {
		t.Errorf("Parse() config = %v, want nil", cfg)
	}
	if len(errs) != 1 || errs[0].Code != CodeSchema {
		t.Errorf("Parse() findings = %v, want one %s finding", errs, CodeSchema)
	}
}
