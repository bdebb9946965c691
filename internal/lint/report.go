// SPDX-License-Identifier: MPL-2.0

package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"kurso/internal/course"
)

// Report styles. Colors match the CLI palette for dark terminals; lipgloss
// degrades them to plain text when the output is not a terminal.
var (
	pathStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Summary is the aggregate section of a lint report.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Lessons  int `json:"lessons"`
}

// Summarize returns the aggregate counts of the run.
func (r *Result) Summarize() Summary {
	return Summary{
		Errors:   r.ErrorCount(),
		Warnings: r.WarningCount(),
		Lessons:  r.Lessons,
	}
}

// WriteText renders the human report: findings grouped by file in result
// order, then a one-line summary.
func WriteText(w io.Writer, r *Result) error {
	var sb strings.Builder

	currentPath := ""
	started := false
	for _, d := range r.Diagnostics {
		if !started || d.Path != currentPath {
			if started {
				sb.WriteByte('\n')
			}
			header := d.Path
			if header == "" {
				header = "course"
			}
			sb.WriteString(pathStyle.Render(header))
			sb.WriteByte('\n')
			currentPath = d.Path
			started = true
		}

		loc := "-"
		if d.Line > 0 {
			loc = strconv.Itoa(d.Line)
		}
		// Pad before styling: styled strings carry escape codes that
		// would defeat width formatting.
		sev := fmt.Sprintf("%-7s", d.Severity)
		if d.Severity == course.SeverityError {
			sev = errorStyle.Render(sev)
		} else {
			sev = warningStyle.Render(sev)
		}
		sb.WriteString(fmt.Sprintf("  %5s  %s  %s %s\n",
			loc, sev, d.Message, codeStyle.Render("("+d.Rule+"/"+d.Code+")")))
	}

	if started {
		sb.WriteByte('\n')
	}
	sb.WriteString(summaryLine(r))
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}

// summaryLine renders the aggregate line that closes the human report.
func summaryLine(r *Result) string {
	s := r.Summarize()
	elapsed := r.Duration.Round(time.Millisecond)

	if s.Errors == 0 && s.Warnings == 0 {
		return fmt.Sprintf("%s in %s (%s)",
			successStyle.Render("✓ no problems"), pluralize(s.Lessons, "lesson"), elapsed)
	}

	var counts []string
	if s.Errors > 0 {
		counts = append(counts, errorStyle.Render(pluralize(s.Errors, "error")))
	}
	if s.Warnings > 0 {
		counts = append(counts, warningStyle.Render(pluralize(s.Warnings, "warning")))
	}
	marker := "✗"
	if s.Errors > 0 {
		marker = errorStyle.Render(marker)
	} else {
		marker = warningStyle.Render(marker)
	}
	return fmt.Sprintf("%s %s in %s (%s)",
		marker, strings.Join(counts, ", "), pluralize(s.Lessons, "lesson"), elapsed)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// WriteJSON renders the machine report: the full diagnostic list plus the
// summary. The schema is part of the tool's contract; CI pipelines parse it.
func WriteJSON(w io.Writer, r *Result) error {
	out := struct {
		Diagnostics []Diagnostic `json:"diagnostics"`
		Summary     Summary      `json:"summary"`
	}{
		Diagnostics: r.Diagnostics,
		Summary:     r.Summarize(),
	}
	if out.Diagnostics == nil {
		out.Diagnostics = []Diagnostic{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
