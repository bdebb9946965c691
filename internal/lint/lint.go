// SPDX-License-Identifier: MPL-2.0

// Package lint applies the course rule set: interactive fence validation,
// internal link resolution, heading hierarchy, file naming, and the
// structural diagnostics discovery already collected. Every finding is a
// Diagnostic with a stable code, and the result order is deterministic so
// repeated runs over the same course compare equal.
package lint

import (
	"context"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"kurso/internal/course"
)

// Rule set names, reported on every Diagnostic.
const (
	// RuleStructure covers diagnostics produced during course discovery:
	// manifest nav problems, frontmatter, ids, prerequisites.
	RuleStructure = "structure"
	// RuleFences covers interactive fence validation.
	RuleFences = "fences"
	// RuleLinks covers internal link and anchor resolution.
	RuleLinks = "links"
	// RuleHeadings covers heading hierarchy checks.
	RuleHeadings = "headings"
	// RuleFilenames covers lesson file naming checks.
	RuleFilenames = "filenames"
)

// Diagnostic codes produced by the lint-only rules. Fence and discovery
// codes are defined next to their producers.
const (
	// CodeLinkTargetMissing marks an internal link whose target does not
	// exist in the course.
	CodeLinkTargetMissing = "link_target_missing"
	// CodeLinkAnchorMissing marks a link fragment naming no heading in the
	// target document.
	CodeLinkAnchorMissing = "link_anchor_missing"
	// CodeHeadingJump marks a heading nested more than one level below its
	// predecessor.
	CodeHeadingJump = "heading_jump"
	// CodeHeadingMultipleH1 marks a top-level heading after the first.
	CodeHeadingMultipleH1 = "heading_multiple_h1"
	// CodeFileReservedName marks a lesson path segment that Windows
	// reserves.
	CodeFileReservedName = "file_reserved_name"
)

type (
	// Diagnostic is one lint finding: a course diagnostic plus the rule
	// set that produced it.
	Diagnostic struct {
		course.Diagnostic
		// Rule names the rule set that produced the finding.
		Rule string `json:"rule"`
	}

	// Options adjust a lint run.
	Options struct {
		// Workers bounds the number of lessons checked concurrently.
		// Zero means GOMAXPROCS.
		Workers int
	}

	// Result is a completed lint run.
	Result struct {
		// Diagnostics holds every finding, ordered by path, then line,
		// then code.
		Diagnostics []Diagnostic
		// Lessons is the number of lessons checked.
		Lessons int
		// Duration is the wall-clock time of the run.
		Duration time.Duration
	}
)

// Run applies the full rule set to a discovered course. Lessons are checked
// concurrently; the result order does not depend on scheduling. Drafts are
// checked too, so problems surface before a lesson is published.
func Run(ctx context.Context, c *course.Course, opts Options) (*Result, error) {
	start := time.Now()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	perLesson := make([][]Diagnostic, len(c.Lessons))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, lesson := range c.Lessons {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perLesson[i] = checkLesson(c, lesson)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	diags := make([]Diagnostic, 0, len(c.Diagnostics))
	for _, d := range c.Diagnostics {
		diags = append(diags, Diagnostic{Diagnostic: d, Rule: RuleStructure})
	}
	for _, ds := range perLesson {
		diags = append(diags, ds...)
	}
	sortDiagnostics(diags)

	return &Result{
		Diagnostics: diags,
		Lessons:     len(c.Lessons),
		Duration:    time.Since(start),
	}, nil
}

// sortDiagnostics orders findings by path, then line, then code. The sort
// is stable, so findings equal on all three keys keep production order and
// the overall order stays deterministic.
func sortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Code < b.Code
	})
}

// ErrorCount returns the number of error-severity findings.
func (r *Result) ErrorCount() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == course.SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity findings.
func (r *Result) WarningCount() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == course.SeverityWarning {
			n++
		}
	}
	return n
}
