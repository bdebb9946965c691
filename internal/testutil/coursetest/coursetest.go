// SPDX-License-Identifier: MPL-2.0

// Package coursetest builds on-disk course fixtures for tests: a manifest
// renderer, a lesson renderer, and a helper that materializes a whole
// course tree under t.TempDir().
package coursetest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type (
	// ManifestOption configures a test manifest beyond the minimal default
	// (a title and nothing else).
	ManifestOption func(*manifest)

	// LessonOption configures a test lesson's frontmatter.
	LessonOption func(*lesson)

	manifest struct {
		title       string
		description string
		docsDir     string
		siteDir     string
		baseURL     string
		language    string
		theme       string
		strict      bool
		nav         []navEntry
	}

	lesson struct {
		title    string
		id       string
		requires []string
		draft    bool
		tags     []string
	}

	navEntry struct {
		title string
		path  string
	}
)

// WriteCourse materializes a course fixture in a fresh temp directory and
// returns its root. Keys are slash-separated paths relative to the root,
// values are file contents.
//
//	root := coursetest.WriteCourse(t, map[string]string{
//	    "course.yml":    coursetest.Manifest("Perl Cookery"),
//	    "docs/index.md": coursetest.Lesson("Welcome", "# Welcome\n"),
//	})
func WriteCourse(t testing.TB, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	return root
}

// Manifest renders a course.yml body with the given title and options.
func Manifest(title string, opts ...ManifestOption) string {
	m := manifest{title: title}
	for _, opt := range opts {
		opt(&m)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "title: %s\n", m.title)
	if m.description != "" {
		fmt.Fprintf(&sb, "description: %s\n", m.description)
	}
	if m.docsDir != "" {
		fmt.Fprintf(&sb, "docs_dir: %s\n", m.docsDir)
	}
	if m.siteDir != "" {
		fmt.Fprintf(&sb, "site_dir: %s\n", m.siteDir)
	}
	if m.baseURL != "" {
		fmt.Fprintf(&sb, "base_url: %s\n", m.baseURL)
	}
	if m.language != "" {
		fmt.Fprintf(&sb, "language: %s\n", m.language)
	}
	if m.theme != "" {
		fmt.Fprintf(&sb, "theme: %s\n", m.theme)
	}
	if m.strict {
		sb.WriteString("strict: true\n")
	}
	if len(m.nav) > 0 {
		sb.WriteString("nav:\n")
		for _, e := range m.nav {
			if e.title == "" {
				fmt.Fprintf(&sb, "  - %s\n", e.path)
			} else {
				fmt.Fprintf(&sb, "  - %q: %s\n", e.title, e.path)
			}
		}
	}
	return sb.String()
}

// WithDescription sets the manifest description.
func WithDescription(desc string) ManifestOption {
	return func(m *manifest) { m.description = desc }
}

// WithDocsDir sets docs_dir.
func WithDocsDir(dir string) ManifestOption {
	return func(m *manifest) { m.docsDir = dir }
}

// WithSiteDir sets site_dir.
func WithSiteDir(dir string) ManifestOption {
	return func(m *manifest) { m.siteDir = dir }
}

// WithBaseURL sets base_url.
func WithBaseURL(u string) ManifestOption {
	return func(m *manifest) { m.baseURL = u }
}

// WithLanguage sets the content language tag.
func WithLanguage(lang string) ManifestOption {
	return func(m *manifest) { m.language = lang }
}

// WithTheme sets the color theme.
func WithTheme(theme string) ManifestOption {
	return func(m *manifest) { m.theme = theme }
}

// WithStrict enables strict mode.
func WithStrict() ManifestOption {
	return func(m *manifest) { m.strict = true }
}

// WithNav appends bare nav entries (paths relative to docs_dir).
func WithNav(paths ...string) ManifestOption {
	return func(m *manifest) {
		for _, p := range paths {
			m.nav = append(m.nav, navEntry{path: p})
		}
	}
}

// WithNavTitled appends a "Title: path" nav entry.
func WithNavTitled(title, path string) ManifestOption {
	return func(m *manifest) {
		m.nav = append(m.nav, navEntry{title: title, path: path})
	}
}

// Lesson renders a lesson file: YAML frontmatter built from the options
// followed by body. An empty title leaves the title key out so the lesson
// falls back to its first heading.
func Lesson(title, body string, opts ...LessonOption) string {
	l := lesson{title: title}
	for _, opt := range opts {
		opt(&l)
	}

	var sb strings.Builder
	if l.hasFrontmatter() {
		sb.WriteString("---\n")
		if l.title != "" {
			fmt.Fprintf(&sb, "title: %s\n", l.title)
		}
		if l.id != "" {
			fmt.Fprintf(&sb, "id: %s\n", l.id)
		}
		if len(l.requires) > 0 {
			fmt.Fprintf(&sb, "requires: [%s]\n", strings.Join(l.requires, ", "))
		}
		if l.draft {
			sb.WriteString("draft: true\n")
		}
		if len(l.tags) > 0 {
			fmt.Fprintf(&sb, "tags: [%s]\n", strings.Join(l.tags, ", "))
		}
		sb.WriteString("---\n\n")
	}
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	return sb.String()
}

func (l *lesson) hasFrontmatter() bool {
	return l.title != "" || l.id != "" || len(l.requires) > 0 || l.draft || len(l.tags) > 0
}

// WithID sets an explicit lesson id.
func WithID(id string) LessonOption {
	return func(l *lesson) { l.id = id }
}

// WithRequires sets the lesson's prerequisites.
func WithRequires(ids ...string) LessonOption {
	return func(l *lesson) { l.requires = ids }
}

// WithDraft marks the lesson as a draft.
func WithDraft() LessonOption {
	return func(l *lesson) { l.draft = true }
}

// WithTags sets the lesson's tags.
func WithTags(tags ...string) LessonOption {
	return func(l *lesson) { l.tags = tags }
}

// Fence wraps body in a fenced block of the given type, the way lessons
// embed interactive fences.
func Fence(fenceType, body string) string {
	var sb strings.Builder
	sb.WriteString("```")
	sb.WriteString(fenceType)
	sb.WriteString("\n")
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	return sb.String()
}
