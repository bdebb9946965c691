// SPDX-License-Identifier: MPL-2.0

// Package course loads interactive Markdown courses: the course.yml
// manifest, the lesson tree under docs_dir, lesson frontmatter, the nav
// order, and the prerequisite graph. Recoverable problems surface as
// structured diagnostics on the Course; only a missing or unparseable
// manifest is fatal.
package course

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"kurso/internal/mdscan"
	"kurso/pkg/types"
)

type (
	// Course is a fully discovered course.
	Course struct {
		// Root is the absolute directory containing the manifest.
		Root string
		// ManifestPath is the absolute manifest file path.
		ManifestPath string
		// Manifest is the parsed manifest.
		Manifest *Manifest
		// ManifestRaw is the manifest file content; the course identity
		// hashes it.
		ManifestRaw []byte
		// DocsDir is the absolute lesson tree directory.
		DocsDir string
		// Lessons holds every discovered lesson, drafts included, in
		// course order: nav sequence first, then the rest in lexical path
		// order.
		Lessons []*Lesson
		// Diagnostics are the recoverable problems found during discovery.
		Diagnostics []Diagnostic

		byID map[types.Slug]*Lesson
		topo []types.Slug
	}

	// Lesson is one discovered lesson file.
	Lesson struct {
		// Path is the absolute file path.
		Path string
		// Rel is the docs_dir-relative path with forward slashes; nav
		// entries and internal links resolve against it.
		Rel string
		// ID identifies the lesson in prerequisites, progress, and URLs.
		ID types.Slug
		// Title is the display title: frontmatter title, else the first
		// H1, else the file name.
		Title string
		// Requires lists prerequisite lesson ids.
		Requires []types.Slug
		// Draft excludes the lesson from build output and nav.
		Draft bool
		// Tags are free-form frontmatter labels.
		Tags []string
		// NavTitle is the title override from the manifest nav entry.
		NavTitle string
		// InNav reports whether a nav entry references this lesson.
		InNav bool
		// Doc is the scanned document structure.
		Doc *mdscan.Document
	}
)

// Lesson returns the lesson with the given id, or nil.
func (c *Course) Lesson(id types.Slug) *Lesson {
	return c.byID[id]
}

// LessonByRel returns the lesson at the given docs-relative path, or nil.
func (c *Course) LessonByRel(rel string) *Lesson {
	for _, l := range c.Lessons {
		if l.Rel == rel {
			return l
		}
	}
	return nil
}

// Visible returns the lessons that belong in build output and navigation,
// in course order. Drafts are excluded unless includeDrafts is set.
func (c *Course) Visible(includeDrafts bool) []*Lesson {
	out := make([]*Lesson, 0, len(c.Lessons))
	for _, l := range c.Lessons {
		if l.Draft && !includeDrafts {
			continue
		}
		out = append(out, l)
	}
	return out
}

// StudyOrder returns the visible lessons in prerequisite order: every
// lesson after all of its prerequisites, ties broken by course order. When
// the prerequisite graph has a cycle (already diagnosed during discovery)
// the plain course order is returned.
func (c *Course) StudyOrder() []*Lesson {
	if len(c.topo) == 0 {
		return c.Visible(false)
	}
	out := make([]*Lesson, 0, len(c.topo))
	for _, id := range c.topo {
		l := c.byID[id]
		if l == nil || l.Draft {
			continue
		}
		out = append(out, l)
	}
	return out
}

// ID returns the course identity used by the progress store: the title
// slug plus a short hash of the manifest content. Renaming the course
// directory keeps the identity; retitling the course changes it.
func (c *Course) ID() string {
	sum := sha256.Sum256(c.ManifestRaw)
	return fmt.Sprintf("%s-%s", types.Slugify(c.Manifest.Title), hex.EncodeToString(sum[:])[:8])
}

// HasErrors reports whether any discovery diagnostic is error-severity.
func (c *Course) HasErrors() bool {
	for _, d := range c.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// DisplayTitle returns the title shown in navigation for the lesson: the
// nav override when present, else the lesson title.
func (l *Lesson) DisplayTitle() string {
	if l.NavTitle != "" {
		return l.NavTitle
	}
	return l.Title
}

// DefaultID derives a lesson id from a docs-relative path:
// "ch1/scalar-vars.md" becomes "ch1/scalar-vars".
func DefaultID(rel string) types.Slug {
	return types.Slugify(strings.TrimSuffix(rel, ".md"))
}
