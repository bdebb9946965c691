// SPDX-License-Identifier: MPL-2.0

package lint

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"kurso/internal/course"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	r := runLint(t, map[string]string{
		"course.yml":    "title: X\n",
		"docs/intro.md": "# Intro\n\n[x](zzz.md)\n",
	})

	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var out struct {
		Diagnostics []struct {
			Severity string `json:"severity"`
			Code     string `json:"code"`
			Path     string `json:"path"`
			Line     int    `json:"line"`
			Message  string `json:"message"`
			Rule     string `json:"rule"`
		} `json:"diagnostics"`
		Summary Summary `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("report does not decode: %v\n%s", err, buf.String())
	}

	if len(out.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want 1", out.Diagnostics)
	}
	d := out.Diagnostics[0]
	if d.Severity != "error" || d.Code != CodeLinkTargetMissing || d.Rule != RuleLinks {
		t.Errorf("diagnostic = %+v, want link_target_missing error under links", d)
	}
	if d.Path != "docs/intro.md" || d.Line != 3 {
		t.Errorf("position = %s:%d, want docs/intro.md:3", d.Path, d.Line)
	}
	if out.Summary.Errors != 1 || out.Summary.Warnings != 0 || out.Summary.Lessons != 1 {
		t.Errorf("summary = %+v, want 1 error, 0 warnings, 1 lesson", out.Summary)
	}
}

func TestWriteJSON_EmptyDiagnosticsIsArray(t *testing.T) {
	t.Parallel()

	r := &Result{Lessons: 3}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"diagnostics": []`) {
		t.Errorf("report renders nil diagnostics as %s, want an empty array", buf.String())
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	r := runLint(t, map[string]string{
		"course.yml":    "title: X\n",
		"docs/intro.md": "# Intro\n\n[x](zzz.md)\n\n### Jump\n",
	})

	var buf bytes.Buffer
	if err := WriteText(&buf, r); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"docs/intro.md",
		"(" + RuleLinks + "/" + CodeLinkTargetMissing + ")",
		"(" + RuleHeadings + "/" + CodeHeadingJump + ")",
		"1 error",
		"1 warning",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report does not contain %q:\n%s", want, out)
		}
	}
}

func TestWriteText_Clean(t *testing.T) {
	t.Parallel()

	r := &Result{Lessons: 2, Duration: 42 * time.Millisecond}
	var buf bytes.Buffer
	if err := WriteText(&buf, r); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "no problems") {
		t.Errorf("clean report = %q, want a no-problems line", out)
	}
	if !strings.Contains(out, "2 lessons") {
		t.Errorf("clean report = %q, want the lesson count", out)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	r := &Result{
		Diagnostics: []Diagnostic{
			{Diagnostic: course.Diagnostic{Severity: course.SeverityError}},
			{Diagnostic: course.Diagnostic{Severity: course.SeverityWarning}},
			{Diagnostic: course.Diagnostic{Severity: course.SeverityWarning}},
		},
		Lessons: 5,
	}
	got := r.Summarize()
	if got.Errors != 1 || got.Warnings != 2 || got.Lessons != 5 {
		t.Errorf("Summarize() = %+v, want 1/2/5", got)
	}
}
