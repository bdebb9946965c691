// SPDX-License-Identifier: MPL-2.0

package lint

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"kurso/internal/course"
	"kurso/internal/mdscan"
	"kurso/pkg/fence"
	"kurso/pkg/platform"
)

// checkLesson runs the per-lesson rule sets in their fixed order.
func checkLesson(c *course.Course, l *course.Lesson) []Diagnostic {
	var diags []Diagnostic
	diags = append(diags, checkFences(c, l)...)
	diags = append(diags, checkLinks(c, l)...)
	diags = append(diags, checkHeadings(c, l)...)
	diags = append(diags, checkFilename(c, l)...)
	return diags
}

// lessonPath returns the course-root-relative path used in diagnostics,
// matching the paths discovery reports.
func lessonPath(c *course.Course, l *course.Lesson) string {
	return path.Join(c.Manifest.DocsDir, l.Rel)
}

// checkFences parses and validates every interactive fence. Finding lines
// are body-relative; they are offset to lesson lines here. Findings about
// the body as a whole point at the opening fence.
func checkFences(c *course.Course, l *course.Lesson) []Diagnostic {
	var diags []Diagnostic
	for _, block := range l.Doc.Fences {
		_, findings := fence.Parse(block)
		for _, f := range findings {
			line := block.Line
			if f.Line > 0 {
				line = block.BodyLine + f.Line - 1
			}
			msg := f.Message
			if f.Field != "" {
				msg = f.Field + ": " + msg
			}
			diags = append(diags, Diagnostic{
				Diagnostic: course.Diagnostic{
					Severity: findingSeverity(f),
					Code:     f.Code,
					Path:     lessonPath(c, l),
					Line:     line,
					Message:  fmt.Sprintf("%s fence: %s", block.Type, msg),
				},
				Rule: RuleFences,
			})
		}
	}
	return diags
}

func findingSeverity(f fence.ValidationError) course.Severity {
	if f.IsError() {
		return course.SeverityError
	}
	return course.SeverityWarning
}

// checkLinks resolves every internal link and anchor. External and mail
// links are not touched; checking the internet is not lint's job.
func checkLinks(c *course.Course, l *course.Lesson) []Diagnostic {
	var diags []Diagnostic
	report := func(sev course.Severity, code string, line int, format string, args ...any) {
		diags = append(diags, Diagnostic{
			Diagnostic: course.Diagnostic{
				Severity: sev,
				Code:     code,
				Path:     lessonPath(c, l),
				Line:     line,
				Message:  fmt.Sprintf(format, args...),
			},
			Rule: RuleLinks,
		})
	}

	for _, link := range l.Doc.Links {
		switch link.Kind {
		case mdscan.LinkExternal, mdscan.LinkMail:
			continue

		case mdscan.LinkAnchor:
			anchor := strings.TrimPrefix(link.Destination, "#")
			if !l.Doc.HasAnchor(anchor) {
				report(course.SeverityWarning, CodeLinkAnchorMissing, link.Line,
					"no heading matches anchor %q", "#"+anchor)
			}

		case mdscan.LinkInternal:
			target, fragment := link.SplitFragment()
			if target == "" {
				report(course.SeverityError, CodeLinkTargetMissing, link.Line,
					"link destination is empty")
				continue
			}

			resolved := path.Join(path.Dir(l.Rel), target)
			if resolved == ".." || strings.HasPrefix(resolved, "../") {
				report(course.SeverityError, CodeLinkTargetMissing, link.Line,
					"link %q leaves the course docs tree", target)
				continue
			}

			if strings.HasSuffix(resolved, ".md") {
				dest := c.LessonByRel(resolved)
				if dest == nil {
					report(course.SeverityError, CodeLinkTargetMissing, link.Line,
						"link %q matches no lesson", target)
					continue
				}
				if fragment != "" && !dest.Doc.HasAnchor(fragment) {
					report(course.SeverityWarning, CodeLinkAnchorMissing, link.Line,
						"%s has no heading matching anchor %q", dest.Rel, "#"+fragment)
				}
				continue
			}

			// Non-Markdown targets (images, downloads) just need to exist.
			if _, err := os.Stat(filepath.Join(c.DocsDir, filepath.FromSlash(resolved))); err != nil {
				report(course.SeverityError, CodeLinkTargetMissing, link.Line,
					"link %q matches no file under %s", target, c.Manifest.DocsDir)
			}
		}
	}
	return diags
}

// checkHeadings verifies the heading outline: a single top-level heading
// and no level jumps (an h3 directly under an h1 reads as a gap).
func checkHeadings(c *course.Course, l *course.Lesson) []Diagnostic {
	var diags []Diagnostic
	report := func(code string, line int, format string, args ...any) {
		diags = append(diags, Diagnostic{
			Diagnostic: course.Diagnostic{
				Severity: course.SeverityWarning,
				Code:     code,
				Path:     lessonPath(c, l),
				Line:     line,
				Message:  fmt.Sprintf(format, args...),
			},
			Rule: RuleHeadings,
		})
	}

	firstH1 := 0
	prevLevel := 0
	for _, h := range l.Doc.Headings {
		if h.Level == 1 {
			if firstH1 == 0 {
				firstH1 = h.Line
			} else {
				report(CodeHeadingMultipleH1, h.Line,
					"more than one top-level heading (first at line %d)", firstH1)
			}
		}
		if prevLevel > 0 && h.Level > prevLevel+1 {
			report(CodeHeadingJump, h.Line,
				"heading level jumps from h%d to h%d", prevLevel, h.Level)
		}
		prevLevel = h.Level
	}
	return diags
}

// checkFilename flags path segments that Windows reserves; a built site
// containing aux.html cannot be checked out there.
func checkFilename(c *course.Course, l *course.Lesson) []Diagnostic {
	var diags []Diagnostic
	for _, seg := range strings.Split(l.Rel, "/") {
		if platform.IsWindowsReservedName(seg) {
			diags = append(diags, Diagnostic{
				Diagnostic: course.Diagnostic{
					Severity: course.SeverityWarning,
					Code:     CodeFileReservedName,
					Path:     lessonPath(c, l),
					Message:  fmt.Sprintf("path segment %q is a reserved name on Windows", seg),
				},
				Rule: RuleFilenames,
			})
		}
	}
	return diags
}
