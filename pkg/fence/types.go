// SPDX-License-Identifier: MPL-2.0

package fence

const (
	// DefaultPrompt is the prompt string a terminal fence shows when the
	// body does not set one.
	DefaultPrompt = "$"
	// DefaultLanguage is the highlight language for exercise and
	// code-walkthrough fences that do not set one. The course corpus this
	// tooling grew out of teaches Perl.
	DefaultLanguage = "perl"

	// MaxQuizOptions bounds the number of options a quiz may define.
	MaxQuizOptions = 10
	// MinQuizOptions is the minimum number of options a quiz must define.
	MinQuizOptions = 2
)

type (
	// Config is the decoded, typed body of an interactive fence. Each fence
	// type has its own concrete config struct.
	Config interface {
		// FenceType returns the fence micro-language this config belongs to.
		FenceType() Type
		// Validate applies the semantic rules the schema cannot express and
		// returns every violation found. An empty result means the config is
		// semantically sound.
		Validate() ValidationErrors
		// Title returns the display title following the fallback chain:
		// explicit title, then question (quiz only), then the humanized
		// type name.
		Title() string
	}

	// Quiz is a multiple-choice question. Single-choice quizzes must have
	// exactly one correct option; multiple-choice quizzes at least one.
	Quiz struct {
		// Question is the prompt shown to the learner.
		Question string `yaml:"question"`
		// Options are the candidate answers, in display order.
		Options []QuizOption `yaml:"options"`
		// Multiple allows selecting more than one option.
		Multiple bool `yaml:"multiple"`
		// Shuffle randomizes option order at render time.
		Shuffle bool `yaml:"shuffle"`
		// Explanation is shown after answering, regardless of outcome.
		Explanation string `yaml:"explanation"`
	}

	// QuizOption is one candidate answer of a Quiz.
	QuizOption struct {
		// Text is the option label.
		Text string `yaml:"text"`
		// Correct marks the option as (one of) the right answer(s).
		Correct bool `yaml:"correct"`
		// Explanation is shown when this specific option was chosen.
		Explanation string `yaml:"explanation"`
	}

	// Terminal is a simulated terminal session: an ordered list of commands
	// and their captured output, replayed step by step.
	Terminal struct {
		// Prompt is the prompt string prefixed to each command. Empty means
		// DefaultPrompt.
		Prompt string `yaml:"prompt"`
		// Steps are the commands of the session, in order.
		Steps []TerminalStep `yaml:"steps"`
	}

	// TerminalStep is one command of a Terminal session.
	TerminalStep struct {
		// Cmd is the command line as typed at the prompt.
		Cmd string `yaml:"cmd"`
		// Output is the text printed by the command, if any.
		Output string `yaml:"output"`
		// DelayMs is the pacing delay before the step plays, in
		// milliseconds.
		DelayMs int `yaml:"delay_ms"`
		// AllowInvalid suppresses the shell syntax check for this step.
		// Courses deliberately show broken input when teaching error
		// messages.
		AllowInvalid bool `yaml:"allow_invalid"`
	}

	// CommandBuilder teaches a command incrementally: a base command plus
	// the flags the learner can toggle on.
	CommandBuilder struct {
		// ExplicitTitle is the display title. Empty falls back to the
		// humanized type name.
		ExplicitTitle string `yaml:"title"`
		// Base is the command every assembled variant starts with.
		Base string `yaml:"base"`
		// Parts are the flags that can be added to Base.
		Parts []CommandPart `yaml:"parts"`
		// Example is a fully assembled command shown as reference. When
		// present it must start with Base.
		Example string `yaml:"example"`
	}

	// CommandPart is one flag of a CommandBuilder.
	CommandPart struct {
		// Flag is the literal flag text (e.g. "--verbose").
		Flag string `yaml:"flag"`
		// Description explains what the flag does.
		Description string `yaml:"description"`
		// Arg names the value the flag takes, if any (e.g. "FILE").
		Arg string `yaml:"arg"`
		// Required marks the flag as mandatory in every assembled command.
		Required bool `yaml:"required"`
	}

	// Exercise is a coding task with optional starter code, hints, and a
	// solution.
	Exercise struct {
		// ExplicitTitle is the display title.
		ExplicitTitle string `yaml:"title"`
		// Task describes what the learner should implement.
		Task string `yaml:"task"`
		// StarterCode is pre-filled code the learner extends.
		StarterCode string `yaml:"starter_code"`
		// Language is the highlight language. Empty means DefaultLanguage.
		Language string `yaml:"language"`
		// Hints are revealed one at a time on request.
		Hints []string `yaml:"hints"`
		// Solution is the reference implementation. Required unless
		// SolutionOptional is set.
		Solution string `yaml:"solution"`
		// SolutionOptional marks the exercise as open-ended.
		SolutionOptional bool `yaml:"solution_optional"`
	}

	// Walkthrough is an annotated code listing: a code block plus notes
	// anchored to line ranges.
	Walkthrough struct {
		// ExplicitTitle is the display title.
		ExplicitTitle string `yaml:"title"`
		// Language is the highlight language. Empty means DefaultLanguage.
		Language string `yaml:"language"`
		// Code is the listing being walked through.
		Code string `yaml:"code"`
		// Annotations are the notes, each anchored to a line (or range).
		Annotations []Annotation `yaml:"annotations"`
	}

	// Annotation is one note of a Walkthrough, anchored to a 1-based line
	// of the code listing.
	Annotation struct {
		// Line is the first annotated line, 1-based.
		Line int `yaml:"line"`
		// EndLine extends the annotation to a range. Zero means the single
		// line at Line.
		EndLine int `yaml:"end_line"`
		// Text is the note content.
		Text string `yaml:"text"`
	}
)

// FenceType returns TypeQuiz.
func (q *Quiz) FenceType() Type { return TypeQuiz }

// Title returns the question (quizzes have no separate title field).
// An empty question falls back to the humanized type name.
func (q *Quiz) Title() string {
	if q.Question != "" {
		return q.Question
	}
	return TypeQuiz.Humanize()
}

// CorrectCount returns how many options are marked correct.
func (q *Quiz) CorrectCount() int {
	n := 0
	for _, opt := range q.Options {
		if opt.Correct {
			n++
		}
	}
	return n
}

// FenceType returns TypeTerminal.
func (t *Terminal) FenceType() Type { return TypeTerminal }

// Title returns the humanized type name (terminal fences have no title).
func (t *Terminal) Title() string { return TypeTerminal.Humanize() }

// EffectivePrompt returns the prompt to display, applying DefaultPrompt
// when the body did not set one.
func (t *Terminal) EffectivePrompt() string {
	if t.Prompt == "" {
		return DefaultPrompt
	}
	return t.Prompt
}

// FenceType returns TypeCommandBuilder.
func (c *CommandBuilder) FenceType() Type { return TypeCommandBuilder }

// Title returns the explicit title or the humanized type name.
func (c *CommandBuilder) Title() string {
	if c.ExplicitTitle != "" {
		return c.ExplicitTitle
	}
	return TypeCommandBuilder.Humanize()
}

// FenceType returns TypeExercise.
func (e *Exercise) FenceType() Type { return TypeExercise }

// Title returns the explicit title or the humanized type name.
func (e *Exercise) Title() string {
	if e.ExplicitTitle != "" {
		return e.ExplicitTitle
	}
	return TypeExercise.Humanize()
}

// EffectiveLanguage returns the highlight language, applying
// DefaultLanguage when the body did not set one.
func (e *Exercise) EffectiveLanguage() string {
	if e.Language == "" {
		return DefaultLanguage
	}
	return e.Language
}

// FenceType returns TypeWalkthrough.
func (w *Walkthrough) FenceType() Type { return TypeWalkthrough }

// Title returns the explicit title or the humanized type name.
func (w *Walkthrough) Title() string {
	if w.ExplicitTitle != "" {
		return w.ExplicitTitle
	}
	return TypeWalkthrough.Humanize()
}

// EffectiveLanguage returns the highlight language, applying
// DefaultLanguage when the body did not set one.
func (w *Walkthrough) EffectiveLanguage() string {
	if w.Language == "" {
		return DefaultLanguage
	}
	return w.Language
}

// CodeLineCount returns the number of lines in the walkthrough code
// listing. A trailing newline does not count as an extra line.
func (w *Walkthrough) CodeLineCount() int {
	if w.Code == "" {
		return 0
	}
	code := w.Code
	if code[len(code)-1] == '\n' {
		code = code[:len(code)-1]
	}
	n := 1
	for i := 0; i < len(code); i++ {
		if code[i] == '\n' {
			n++
		}
	}
	return n
}

// Span returns the inclusive line range the annotation covers.
func (a Annotation) Span() (first, last int) {
	first = a.Line
	last = a.EndLine
	if last == 0 {
		last = first
	}
	return first, last
}
