// SPDX-License-Identifier: MPL-2.0

package fence

import (
	"fmt"
	"strings"
)

// Plaintext renders a validated fence config as terminal-readable text.
// It is the non-interactive stand-in used wherever a browser widget cannot
// run: the preview pager and transcript summaries.
func Plaintext(c Config) string {
	switch cfg := c.(type) {
	case *Quiz:
		return quizPlaintext(cfg)
	case *Terminal:
		return terminalPlaintext(cfg)
	case *CommandBuilder:
		return commandBuilderPlaintext(cfg)
	case *Exercise:
		return exercisePlaintext(cfg)
	case *Walkthrough:
		return walkthroughPlaintext(cfg)
	default:
		return ""
	}
}

func quizPlaintext(q *Quiz) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Quiz: %s\n", q.Question)
	if q.Multiple {
		sb.WriteString("(select all that apply)\n")
	}
	for i, opt := range q.Options {
		marker := " "
		if opt.Correct {
			marker = "x"
		}
		fmt.Fprintf(&sb, "  %d. [%s] %s\n", i+1, marker, opt.Text)
		if opt.Explanation != "" {
			fmt.Fprintf(&sb, "         %s\n", opt.Explanation)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func terminalPlaintext(t *Terminal) string {
	var sb strings.Builder
	sb.WriteString(t.Title())
	sb.WriteByte('\n')
	prompt := t.EffectivePrompt()
	for _, step := range t.Steps {
		fmt.Fprintf(&sb, "  %s %s\n", prompt, step.Cmd)
		for _, line := range splitOutputLines(step.Output) {
			fmt.Fprintf(&sb, "  %s\n", line)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func commandBuilderPlaintext(cb *CommandBuilder) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", cb.Title())
	fmt.Fprintf(&sb, "  base: %s\n", cb.Base)
	if len(cb.Parts) > 0 {
		sb.WriteString("  flags:\n")
		width := 0
		for _, p := range cb.Parts {
			if len(p.Flag) > width {
				width = len(p.Flag)
			}
		}
		for _, p := range cb.Parts {
			fmt.Fprintf(&sb, "    %-*s  %s\n", width, p.Flag, p.Description)
		}
	}
	if cb.Example != "" {
		fmt.Fprintf(&sb, "  example: %s\n", cb.Example)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func exercisePlaintext(e *Exercise) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Exercise: %s\n", e.Title())
	for _, line := range splitOutputLines(e.Task) {
		fmt.Fprintf(&sb, "  %s\n", line)
	}
	if e.StarterCode != "" {
		sb.WriteString("  starter code:\n")
		for _, line := range splitOutputLines(e.StarterCode) {
			fmt.Fprintf(&sb, "    %s\n", line)
		}
	}
	if n := len(e.Hints); n == 1 {
		sb.WriteString("  1 hint available\n")
	} else if n > 1 {
		fmt.Fprintf(&sb, "  %d hints available\n", n)
	}
	if e.Solution != "" {
		fmt.Fprintf(&sb, "  solution provided (%s)\n", e.EffectiveLanguage())
	}
	return strings.TrimRight(sb.String(), "\n")
}

func walkthroughPlaintext(w *Walkthrough) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", w.Title(), w.EffectiveLanguage())

	byLine := make(map[int][]string)
	for _, a := range w.Annotations {
		first, last := a.Span()
		note := a.Text
		if last > first {
			note = fmt.Sprintf("(through line %d) %s", last, note)
		}
		byLine[first] = append(byLine[first], note)
	}

	lines := splitOutputLines(w.Code)
	width := len(fmt.Sprint(len(lines)))
	for i, line := range lines {
		n := i + 1
		fmt.Fprintf(&sb, "  %*d | %s\n", width, n, line)
		for _, note := range byLine[n] {
			fmt.Fprintf(&sb, "  %*s * %s\n", width, "", note)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// splitOutputLines splits multi-line YAML text into lines, treating empty
// text as no lines rather than one empty line.
func splitOutputLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
