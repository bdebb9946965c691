// SPDX-License-Identifier: MPL-2.0

package course

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"kurso/internal/mdscan"
	"kurso/pkg/types"
)

// lessonGlob matches lesson files under docs_dir.
const lessonGlob = "**/*.md"

// lessonFrontmatter is the typed frontmatter of a lesson file. Unknown
// keys are tolerated; authors keep arbitrary metadata there.
type lessonFrontmatter struct {
	Title    string   `yaml:"title"`
	ID       string   `yaml:"id"`
	Requires []string `yaml:"requires"`
	Draft    bool     `yaml:"draft"`
	Tags     []string `yaml:"tags"`
}

// Discover locates the course manifest (walking up from root like other
// project-file discovery), enumerates and scans every lesson under
// docs_dir, resolves nav and prerequisites, and returns the assembled
// Course. Recoverable problems become Course.Diagnostics; only a missing
// manifest, an unparseable manifest, or a missing docs tree is fatal.
func Discover(ctx context.Context, root string) (*Course, error) {
	manifestPath, err := FindManifest(root)
	if err != nil {
		return nil, err
	}
	m, raw, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	courseRoot := filepath.Dir(manifestPath)
	docsDir := filepath.Join(courseRoot, filepath.FromSlash(m.DocsDir))
	info, err := os.Stat(docsDir)
	if err != nil {
		return nil, fmt.Errorf("docs directory %q: %w", m.DocsDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docs directory %q is not a directory", m.DocsDir)
	}

	c := &Course{
		Root:         courseRoot,
		ManifestPath: manifestPath,
		Manifest:     m,
		ManifestRaw:  raw,
		DocsDir:      docsDir,
		byID:         make(map[types.Slug]*Lesson),
	}

	rels, err := doublestar.Glob(os.DirFS(docsDir), lessonGlob)
	if err != nil {
		return nil, fmt.Errorf("enumerate lessons: %w", err)
	}
	sort.Strings(rels)

	byRel := make(map[string]*Lesson, len(rels))
	var all []*Lesson
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if hiddenPath(rel) {
			continue
		}

		lesson, diags := c.loadLesson(rel)
		c.Diagnostics = append(c.Diagnostics, diags...)
		if lesson == nil {
			continue
		}

		if prev := c.byID[lesson.ID]; prev != nil {
			c.Diagnostics = append(c.Diagnostics, Diagnostic{
				Severity: SeverityError,
				Code:     CodeLessonIDDuplicate,
				Path:     c.docsRel(rel),
				Message:  fmt.Sprintf("lesson id %q already used by %s", lesson.ID, prev.Rel),
			})
		} else {
			c.byID[lesson.ID] = lesson
		}
		byRel[rel] = lesson
		all = append(all, lesson)
	}

	c.orderLessons(all, byRel)
	c.buildPrereqs()
	return c, nil
}

// loadLesson scans one lesson file and decodes its frontmatter.
func (c *Course) loadLesson(rel string) (*Lesson, []Diagnostic) {
	full := filepath.Join(c.DocsDir, filepath.FromSlash(rel))
	doc, err := mdscan.Scan(full)
	if err != nil {
		return nil, []Diagnostic{{
			Severity: SeverityError,
			Code:     CodeLessonUnreadable,
			Path:     c.docsRel(rel),
			Message:  err.Error(),
		}}
	}

	lesson := &Lesson{Path: full, Rel: rel, Doc: doc}
	var diags []Diagnostic

	var fm lessonFrontmatter
	if doc.Frontmatter != nil {
		if err := yaml.Unmarshal(doc.Frontmatter, &fm); err != nil {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeFrontmatterInvalid,
				Path:     c.docsRel(rel),
				Line:     1,
				Message:  fmt.Sprintf("frontmatter does not decode: %v", err),
			})
		}
	}

	lesson.Draft = fm.Draft
	lesson.Tags = fm.Tags

	lesson.ID = DefaultID(rel)
	if fm.ID != "" {
		id := types.Slug(fm.ID)
		if err := id.Validate(); err != nil {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeFrontmatterInvalid,
				Path:     c.docsRel(rel),
				Line:     1,
				Message:  err.Error(),
			})
		} else {
			lesson.ID = id
		}
	}

	for _, req := range fm.Requires {
		lesson.Requires = append(lesson.Requires, types.Slug(req))
	}

	switch {
	case fm.Title != "":
		lesson.Title = fm.Title
	case doc.FirstH1() != nil:
		lesson.Title = doc.FirstH1().Text
	default:
		lesson.Title = strings.TrimSuffix(path.Base(rel), ".md")
	}

	return lesson, diags
}

// orderLessons assembles Course.Lessons: nav sequence first, then every
// remaining lesson in lexical path order. Nav entries that match nothing
// on disk and drafts referenced from nav are diagnosed here.
func (c *Course) orderLessons(all []*Lesson, byRel map[string]*Lesson) {
	used := make(map[*Lesson]bool, len(all))
	ordered := make([]*Lesson, 0, len(all))

	for _, entry := range c.Manifest.Nav {
		lesson := byRel[path.Clean(entry.Path)]
		if lesson == nil {
			c.Diagnostics = append(c.Diagnostics, Diagnostic{
				Severity: SeverityError,
				Code:     CodeNavEntryMissing,
				Path:     filepath.Base(c.ManifestPath),
				Message:  fmt.Sprintf("nav entry %q has no matching lesson under %s", entry.Path, c.Manifest.DocsDir),
			})
			continue
		}

		lesson.InNav = true
		if entry.Title != "" {
			lesson.NavTitle = entry.Title
		}
		if lesson.Draft {
			c.Diagnostics = append(c.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeNavDraftLesson,
				Path:     c.docsRel(lesson.Rel),
				Message:  fmt.Sprintf("draft lesson %q is referenced from nav", lesson.ID),
			})
		}
		if !used[lesson] {
			used[lesson] = true
			ordered = append(ordered, lesson)
		}
	}

	for _, lesson := range all {
		if !used[lesson] {
			ordered = append(ordered, lesson)
		}
	}
	c.Lessons = ordered

	if c.Manifest.Strict && len(c.Manifest.Nav) > 0 {
		for _, lesson := range all {
			if !lesson.InNav && !lesson.Draft {
				c.Diagnostics = append(c.Diagnostics, Diagnostic{
					Severity: SeverityWarning,
					Code:     CodeLessonNotInNav,
					Path:     c.docsRel(lesson.Rel),
					Message:  fmt.Sprintf("lesson %q is not referenced from nav", lesson.ID),
				})
			}
		}
	}
}

// buildPrereqs wires the requires edges, diagnoses unknown prerequisites
// and cycles, and stores the topological study order.
func (c *Course) buildPrereqs() {
	g := newPrereqGraph()
	for _, lesson := range c.Lessons {
		g.addNode(lesson.ID)
	}
	for _, lesson := range c.Lessons {
		for _, req := range lesson.Requires {
			if c.byID[req] == nil {
				c.Diagnostics = append(c.Diagnostics, Diagnostic{
					Severity: SeverityError,
					Code:     CodePrereqUnknown,
					Path:     c.docsRel(lesson.Rel),
					Message:  fmt.Sprintf("prerequisite %q names no known lesson", req),
				})
				continue
			}
			g.addEdge(req, lesson.ID)
		}
	}

	topo, err := g.topologicalSort()
	if err != nil {
		var cycleErr *CycleError
		if errors.As(err, &cycleErr) {
			c.Diagnostics = append(c.Diagnostics, Diagnostic{
				Severity: SeverityError,
				Code:     CodePrereqCycle,
				Message:  cycleErr.Error(),
			})
		}
		return
	}
	c.topo = topo
}

// docsRel converts a docs-relative lesson path into a course-root-relative
// one for diagnostics.
func (c *Course) docsRel(rel string) string {
	return path.Join(c.Manifest.DocsDir, rel)
}

// hiddenPath reports whether any path segment is dot-prefixed; such files
// are ignored during discovery.
func hiddenPath(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
