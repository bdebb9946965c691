// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

// allIds lists every catalog id; tests iterate it so a new issue cannot be
// added without joining the coverage.
var allIds = []Id{
	CourseNotFoundId,
	ManifestParseErrorId,
	LessonNotFoundId,
	FenceInvalidId,
	PrereqCycleId,
	ConfigLoadFailedId,
	BuildFailedId,
	ProgressStoreFailedId,
	AddressInUseId,
	TranscriptPtyUnavailableId,
}

// stubRender replaces the glamour render step with identity for the
// duration of the test, so assertions see the raw Markdown.
func stubRender(t *testing.T) {
	t.Helper()
	original := render
	t.Cleanup(func() { render = original })
	render = func(in, stylePath string) (string, error) { return in, nil }
}

func TestIds(t *testing.T) {
	seen := make(map[Id]bool, len(allIds))
	for _, id := range allIds {
		if seen[id] {
			t.Errorf("duplicate id: %d", id)
		}
		seen[id] = true

		if Get(id) == nil {
			t.Errorf("Get(%d) = nil, every id must be in the catalog", id)
		}
	}

	// iota + 1: zero stays reserved as "no issue".
	if CourseNotFoundId != 1 {
		t.Errorf("CourseNotFoundId = %d, want 1", CourseNotFoundId)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		contains string
	}{
		{CourseNotFoundId, "No course found"},
		{ManifestParseErrorId, "Failed to parse course.yml"},
		{LessonNotFoundId, "Lesson not found"},
		{FenceInvalidId, "Invalid interactive block"},
		{PrereqCycleId, "Prerequisite cycle"},
		{ConfigLoadFailedId, "Failed to load configuration"},
		{BuildFailedId, "Site build failed"},
		{ProgressStoreFailedId, "progress database"},
		{AddressInUseId, "Address already in use"},
		{TranscriptPtyUnavailableId, "PTY"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)
			if issue == nil {
				t.Fatalf("Get(%d) = nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Id() = %d, want %d", issue.Id(), tt.id)
			}
			if msg := string(issue.MarkdownMsg()); !strings.Contains(msg, tt.contains) {
				t.Errorf("MarkdownMsg() missing %q:\n%s", tt.contains, msg)
			}
		})
	}

	if got := Get(Id(9999)); got != nil {
		t.Errorf("Get(9999) = %v, want nil for an unknown id", got)
	}
}

func TestValues(t *testing.T) {
	issues := Values()

	if len(issues) != len(allIds) {
		t.Fatalf("Values() returned %d issues, want %d", len(issues), len(allIds))
	}
	for _, issue := range issues {
		if issue.Id() == 0 {
			t.Error("Values() contains an issue with id 0")
		}
		if issue.MarkdownMsg() == "" {
			t.Errorf("issue %d has an empty message", issue.Id())
		}
	}
}

func TestIssue_LinkClones(t *testing.T) {
	issue := Get(TranscriptPtyUnavailableId)
	if issue == nil {
		t.Fatal("Get(TranscriptPtyUnavailableId) = nil")
	}

	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("TranscriptPtyUnavailableId should carry ext links")
	}
	original := links[0]
	links[0] = "modified"
	if got := issue.ExtLinks()[0]; got != original {
		t.Errorf("ExtLinks() returned shared backing storage: %q", got)
	}

	if docs := issue.DocLinks(); len(docs) > 0 {
		orig := docs[0]
		docs[0] = "modified"
		if got := issue.DocLinks()[0]; got != orig {
			t.Errorf("DocLinks() returned shared backing storage: %q", got)
		}
	}
}

func TestIssue_Render(t *testing.T) {
	stubRender(t)

	issue := Get(ManifestParseErrorId)
	if issue == nil {
		t.Fatal("Get(ManifestParseErrorId) = nil")
	}

	rendered, err := issue.Render("")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(rendered, "course.yml") {
		t.Errorf("Render() output missing 'course.yml':\n%s", rendered)
	}
}

func TestIssue_RenderLinks(t *testing.T) {
	stubRender(t)

	withLinks := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test Issue\n\nThis is a test.",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}
	rendered, err := withLinks.Render("")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(rendered, "See also") {
		t.Error("Render() with links should append a 'See also' section")
	}

	withoutLinks := &Issue{id: Id(9998), mdMsg: "# Test Issue\n\nNo links here."}
	rendered, err = withoutLinks.Render("")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("Render() without links should not append a 'See also' section")
	}
}

func TestAllIssuesRenderable(t *testing.T) {
	stubRender(t)

	for _, issue := range Values() {
		rendered, err := issue.Render("")
		if err != nil {
			t.Errorf("issue %d failed to render: %v", issue.Id(), err)
		}
		if rendered == "" {
			t.Errorf("issue %d rendered to an empty string", issue.Id())
		}
	}
}
