// SPDX-License-Identifier: MPL-2.0

package site

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"kurso/internal/course"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

type (
	// page is the template model for one rendered lesson.
	page struct {
		CourseTitle string
		Description string
		Title       string
		Language    string
		Theme       string
		// Root prefixes every generated href: the manifest base URL when
		// set, a ../ chain back to the site root otherwise.
		Root       string
		Content    template.HTML
		Nav        []navItem
		Prev       *navItem
		Next       *navItem
		LiveReload bool
	}

	// navItem is one sidebar or pager entry.
	navItem struct {
		Title  string
		Href   string
		Active bool
	}
)

// outputRel maps a lesson source path to its generated page path.
func outputRel(rel string) string {
	return strings.TrimSuffix(rel, ".md") + ".html"
}

// sequence returns the lessons the sidebar and pager walk: the nav lessons
// when the manifest defines a nav, every visible lesson otherwise. Drafts
// appear only when the build asked for them.
func sequence(c *course.Course, drafts bool) []*course.Lesson {
	visible := c.Visible(drafts)
	if len(c.Manifest.Nav) == 0 {
		return visible
	}
	seq := make([]*course.Lesson, 0, len(visible))
	for _, l := range visible {
		if l.InNav {
			seq = append(seq, l)
		}
	}
	return seq
}

// rootPrefix computes the href prefix for a page written at outRel.
func rootPrefix(c *course.Course, outRel string) string {
	if base := c.Manifest.BaseURL; base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		return base
	}
	return strings.Repeat("../", strings.Count(outRel, "/"))
}

// buildPage assembles the template model for lesson l rendered at outRel.
// The same lesson can render at more than one location (a course without
// an index.md repeats its first lesson there), so outRel is explicit.
func buildPage(c *course.Course, l *course.Lesson, seq []*course.Lesson, content []byte, outRel string, liveReload bool) *page {
	root := rootPrefix(c, outRel)

	p := &page{
		CourseTitle: c.Manifest.Title,
		Description: c.Manifest.Description,
		Title:       l.DisplayTitle(),
		Language:    c.Manifest.Language,
		Theme:       string(c.Manifest.Theme),
		Root:        root,
		Content:     template.HTML(content),
		LiveReload:  liveReload,
	}

	active := -1
	for i, s := range seq {
		if s == l {
			active = i
		}
		p.Nav = append(p.Nav, navItem{
			Title:  s.DisplayTitle(),
			Href:   root + outputRel(s.Rel),
			Active: s == l,
		})
	}
	if active > 0 {
		prev := p.Nav[active-1]
		p.Prev = &prev
	}
	if active >= 0 && active < len(seq)-1 {
		next := p.Nav[active+1]
		p.Next = &next
	}
	return p
}

func renderPage(p *page) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
