// SPDX-License-Identifier: MPL-2.0

// Package site renders a discovered course into a static HTML site:
// goldmark for prose, chroma for code blocks, and the interactive fence
// components embedded as data-config divs for the client runtime.
package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"kurso/internal/course"
)

// CodeFenceFallback marks an interactive fence that rendered as a warning
// admonition because its body does not decode to a component config.
const CodeFenceFallback = "fence_render_fallback"

type (
	// Options control a site build.
	Options struct {
		// Clean empties the output directory before writing. Cleaning
		// refuses to touch a directory that does not look like a
		// previous build.
		Clean bool
		// Drafts includes draft lessons in the output and navigation.
		Drafts bool
		// LiveReload injects the reload client into every page.
		LiveReload bool
		// SiteDir overrides the manifest output directory. Relative
		// paths resolve against the course root.
		SiteDir string
	}

	// Result summarizes a completed build.
	Result struct {
		// Pages is the number of HTML pages written.
		Pages int
		// Assets is the number of static files written (copied course
		// files plus the embedded bundle).
		Assets int
		// Dir is the absolute output directory.
		Dir string
		// Duration is the wall-clock build time.
		Duration time.Duration
		// Diagnostics are non-fatal render findings, currently fences
		// that fell back to a warning admonition.
		Diagnostics []course.Diagnostic
	}
)

// Build renders every non-draft lesson of c into the site directory. The
// returned error is fatal (unwritable output, broken markdown pipeline);
// per-fence problems degrade to admonitions and surface as Diagnostics.
func Build(ctx context.Context, c *course.Course, opts Options) (*Result, error) {
	start := time.Now()

	dir := opts.SiteDir
	if dir == "" {
		dir = c.Manifest.SiteDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.Root, dir)
	}

	if opts.Clean {
		if err := cleanSiteDir(dir); err != nil {
			return nil, err
		}
	}

	md := newMarkdown()
	seq := sequence(c, opts.Drafts)
	res := &Result{Dir: dir}

	writePage := func(l *course.Lesson, outRel string) error {
		html, err := renderBody(md, l.Doc.Body())
		if err != nil {
			return fmt.Errorf("render %s: %w", l.Rel, err)
		}
		out, err := renderPage(buildPage(c, l, seq, html, outRel, opts.LiveReload))
		if err != nil {
			return fmt.Errorf("page template for %s: %w", l.Rel, err)
		}
		if err := writeFileAtomic(filepath.Join(dir, filepath.FromSlash(outRel)), out); err != nil {
			return err
		}
		res.Pages++
		return nil
	}

	hasIndex := false
	for _, l := range c.Visible(opts.Drafts) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writePage(l, outputRel(l.Rel)); err != nil {
			return nil, err
		}
		if l.Rel == "index.md" {
			hasIndex = true
		}
		res.Diagnostics = append(res.Diagnostics, fenceDiagnostics(c, l)...)
	}

	// A course without an index.md still gets a front door: its first
	// sidebar lesson doubles as index.html.
	if !hasIndex && len(seq) > 0 {
		if err := writePage(seq[0], "index.html"); err != nil {
			return nil, err
		}
	}

	n, err := copyStatics(c, dir)
	res.Assets += n
	if err != nil {
		return nil, err
	}

	n, err = writeEmbeddedAssets(func(rel string, data []byte) error {
		return writeFileAtomic(filepath.Join(dir, filepath.FromSlash(rel)), data)
	})
	res.Assets += n
	if err != nil {
		return nil, err
	}

	css, err := chromaCSS(c.Manifest.Theme)
	if err != nil {
		return nil, fmt.Errorf("highlight stylesheet: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, "assets", "chroma.css"), css); err != nil {
		return nil, err
	}
	res.Assets++

	res.Duration = time.Since(start)
	return res, nil
}

// fenceDiagnostics reports the interactive fences of l that the renderer
// degraded to admonitions.
func fenceDiagnostics(c *course.Course, l *course.Lesson) []course.Diagnostic {
	var out []course.Diagnostic
	for _, b := range l.Doc.Fences {
		if _, ok := interactiveConfig(b.Body); ok {
			continue
		}
		out = append(out, course.Diagnostic{
			Severity: course.SeverityWarning,
			Code:     CodeFenceFallback,
			Path:     path.Join(c.Manifest.DocsDir, l.Rel),
			Line:     b.Line,
			Message:  fmt.Sprintf("%s fence rendered as a warning admonition: body does not decode to a component config", b.Type),
		})
	}
	return out
}

// cleanSiteDir empties dir, keeping the directory itself. A missing or
// empty directory is fine; anything else must carry the marks of a
// previous build before it is touched.
func cleanSiteDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if _, err := os.Stat(filepath.Join(dir, "assets", "app.css")); err != nil {
		return fmt.Errorf("refusing to clean %s: it does not look like a generated site (missing assets/app.css)", dir)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// copyStatics copies the non-Markdown, non-hidden files of the docs tree
// into the site directory, preserving relative paths. Images and other
// assets referenced by lessons ship this way.
func copyStatics(c *course.Course, dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(c.DocsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == c.DocsDir {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(c.DocsDir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if err := writeFileAtomic(filepath.Join(dir, rel), data); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

// writeFileAtomic writes data to path via a temp file and rename, creating
// parent directories as needed. A crashed build never leaves a truncated
// page behind.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	defer func() { _ = pending.Cleanup() }()
	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}
