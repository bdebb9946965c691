// SPDX-License-Identifier: MPL-2.0

package study

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"kurso/internal/mdscan"
	"kurso/pkg/fence"
)

// RenderOptions configure terminal rendering of a lesson.
type RenderOptions struct {
	// Width is the word-wrap width. Zero means glamour's default.
	Width int
	// Theme is a glamour style name ("dark", "light", "dracula", ...).
	// Empty means auto-detection from the terminal background.
	Theme string
}

// RenderLesson renders a scanned lesson for the terminal: interactive
// fences are replaced with their plaintext renditions, then the whole
// document goes through glamour.
func RenderLesson(doc *mdscan.Document, opts RenderOptions) (string, error) {
	src := SubstituteFences(doc)

	rendererOpts := []glamour.TermRendererOption{}
	if opts.Theme != "" {
		rendererOpts = append(rendererOpts, glamour.WithStandardStyle(opts.Theme))
	} else {
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	}
	if opts.Width > 0 {
		rendererOpts = append(rendererOpts, glamour.WithWordWrap(opts.Width))
	}

	renderer, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(string(src))
	if err != nil {
		return "", fmt.Errorf("render lesson: %w", err)
	}
	return out, nil
}

// SubstituteFences returns the lesson body with every interactive fence
// replaced by a plain text code block a terminal renderer can show. A
// fence whose body does not decode keeps only a short placeholder; lint
// is the place that explains what is wrong with it.
func SubstituteFences(doc *mdscan.Document) []byte {
	if len(doc.Fences) == 0 {
		return doc.Body()
	}

	lines := strings.Split(string(doc.Source), "\n")
	var sb strings.Builder
	// Lines are 1-based over the full source, frontmatter included; the
	// frontmatter itself is skipped on output.
	next := doc.FrontmatterLines
	for _, b := range doc.Fences {
		open := b.Line - 1
		if open < next || open >= len(lines) {
			continue
		}
		for i := next; i < open; i++ {
			sb.WriteString(lines[i])
			sb.WriteByte('\n')
		}
		sb.WriteString(fencePlaintextBlock(b))
		next = closingFenceLine(lines, open) + 1
	}
	for i := next; i < len(lines); i++ {
		sb.WriteString(lines[i])
		if i != len(lines)-1 {
			sb.WriteByte('\n')
		}
	}
	return []byte(sb.String())
}

// fencePlaintextBlock renders one fence as a text code block, so glamour
// preserves its layout verbatim.
func fencePlaintextBlock(b fence.Block) string {
	cfg, _ := fence.Parse(b)
	if cfg == nil {
		return fmt.Sprintf("```text\n(%s block with invalid configuration)\n```\n", b.Type)
	}
	return fmt.Sprintf("```text\n%s\n```\n", fence.Plaintext(cfg))
}

// closingFenceLine returns the 0-based index of the line closing the fence
// opened at open, or the last line when the fence never closes.
func closingFenceLine(lines []string, open int) int {
	marker := strings.TrimLeft(lines[open], " ")
	n := 0
	for n < len(marker) && marker[n] == '`' {
		n++
	}
	for i := open + 1; i < len(lines); i++ {
		t := strings.TrimRight(strings.TrimLeft(lines[i], " "), " \t")
		if len(t) >= n && strings.Count(t, "`") == len(t) && len(t) > 0 {
			return i
		}
	}
	return len(lines) - 1
}
