// SPDX-License-Identifier: MPL-2.0

// Package mdscan turns a lesson Markdown file into a structural summary:
// heading outline with anchor slugs, classified links, code blocks, and the
// interactive fences embedded in the document. Everything downstream — lint
// rules, site rendering, course statistics — works from the Document this
// package produces rather than re-parsing the Markdown.
//
// Line numbers are 1-based and relative to the file on disk, including the
// frontmatter block. Diagnostics point at lines, so accuracy here matters.
package mdscan

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"kurso/pkg/fence"
)

const (
	// LinkInternal is a relative path into the course tree.
	LinkInternal LinkKind = iota
	// LinkAnchor is a same-document fragment ("#section").
	LinkAnchor
	// LinkExternal is an absolute URL with a scheme.
	LinkExternal
	// LinkMail is a mailto link or bare email autolink.
	LinkMail
)

type (
	// LinkKind classifies a link destination.
	LinkKind int

	// Document is the scanned structure of one lesson file.
	Document struct {
		// Path is the file the document was read from.
		Path string
		// Source is the raw file content.
		Source []byte
		// Frontmatter is the YAML between the leading "---" lines, or nil
		// when the file has none. Decoding it is the caller's concern.
		Frontmatter []byte
		// FrontmatterLines is the number of lines the frontmatter block
		// occupies, delimiters included. Zero when there is none.
		FrontmatterLines int
		// Headings is the outline in document order.
		Headings []Heading
		// Links are all links and images in document order.
		Links []Link
		// CodeBlocks are the fenced code blocks that are not interactive
		// fences.
		CodeBlocks []CodeBlock
		// Fences are the interactive fences in document order.
		Fences []fence.Block
	}

	// Heading is one entry of the document outline.
	Heading struct {
		// Level is 1 for H1 through 6 for H6.
		Level int
		// Text is the flattened heading text.
		Text string
		// Slug is the derived anchor id, deduplicated within the document.
		Slug string
		// Line is the 1-based line of the heading.
		Line int
	}

	// Link is a link or image reference.
	Link struct {
		// Destination is the raw link target.
		Destination string
		// Kind classifies the destination.
		Kind LinkKind
		// Line is the 1-based line the link starts on.
		Line int
		// Image marks image links.
		Image bool
	}

	// CodeBlock is a fenced code block that is not an interactive fence.
	CodeBlock struct {
		// Info is the trimmed info string ("perl", "text", "").
		Info string
		// Body is the block content.
		Body []byte
		// Line is the 1-based line of the opening fence.
		Line int
		// EndLine is the 1-based line of the last content line, or Line for
		// an empty block.
		EndLine int
	}
)

// markdown is the shared parser. It carries the GFM extensions the course
// prose uses; goldmark parsers are safe for concurrent use.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// schemeRe matches a URI scheme prefix per RFC 3986.
var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// Scan reads and scans a lesson file.
func Scan(path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lesson: %w", err)
	}
	return ScanBytes(path, src), nil
}

// ScanBytes scans in-memory lesson content. It always produces a Document:
// Markdown has no parse failures, and frontmatter YAML is decoded later by
// the caller.
func ScanBytes(path string, src []byte) *Document {
	doc := &Document{Path: path, Source: src}

	fm, body, fmLines := SplitFrontmatter(src)
	doc.Frontmatter = fm
	doc.FrontmatterLines = fmLines

	idx := newLineIndex(body)
	lineOf := func(offset int) int { return idx.lineAt(offset) + fmLines }

	slugger := NewSlugger()
	root := markdown.Parser().Parse(text.NewReader(body))

	fenceIndex := 0
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			line := 0
			if node.Lines().Len() > 0 {
				line = lineOf(node.Lines().At(0).Start)
			}
			txt := nodeText(node, body)
			doc.Headings = append(doc.Headings, Heading{
				Level: node.Level,
				Text:  txt,
				Slug:  slugger.Slug(txt),
				Line:  line,
			})
		case *ast.Link:
			doc.Links = append(doc.Links, Link{
				Destination: string(node.Destination),
				Kind:        ClassifyDestination(string(node.Destination)),
				Line:        inlineLine(node, body, idx, fmLines),
			})
		case *ast.Image:
			doc.Links = append(doc.Links, Link{
				Destination: string(node.Destination),
				Kind:        ClassifyDestination(string(node.Destination)),
				Line:        inlineLine(node, body, idx, fmLines),
				Image:       true,
			})
		case *ast.AutoLink:
			kind := LinkExternal
			if node.AutoLinkType == ast.AutoLinkEmail {
				kind = LinkMail
			}
			doc.Links = append(doc.Links, Link{
				Destination: string(node.URL(body)),
				Kind:        kind,
				Line:        inlineLine(node, body, idx, fmLines),
			})
		case *ast.FencedCodeBlock:
			scanFencedBlock(doc, node, body, idx, fmLines, &fenceIndex)
		}
		return ast.WalkContinue, nil
	})

	return doc
}

// scanFencedBlock routes a fenced code block either into the interactive
// fence list or the plain code block list.
func scanFencedBlock(doc *Document, node *ast.FencedCodeBlock, body []byte, idx lineIndex, fmLines int, fenceIndex *int) {
	info := ""
	line := 0
	if node.Info != nil {
		info = strings.TrimSpace(string(node.Info.Segment.Value(body)))
		line = idx.lineAt(node.Info.Segment.Start) + fmLines
	}

	var content bytes.Buffer
	first, last := 0, 0
	for i := 0; i < node.Lines().Len(); i++ {
		seg := node.Lines().At(i)
		content.Write(seg.Value(body))
		if i == 0 {
			first = idx.lineAt(seg.Start) + fmLines
		}
		last = idx.lineAt(seg.Start) + fmLines
	}
	if line == 0 && first > 0 {
		line = first - 1
	}
	if last == 0 {
		last = line
	}

	if t, ok := fence.ParseType(info); ok {
		doc.Fences = append(doc.Fences, fence.Block{
			Type:     t,
			Body:     bytes.TrimSuffix(content.Bytes(), []byte("\n")),
			Path:     doc.Path,
			Line:     line,
			BodyLine: line + 1,
			Index:    *fenceIndex,
		})
		*fenceIndex++
		return
	}

	doc.CodeBlocks = append(doc.CodeBlocks, CodeBlock{
		Info:    info,
		Body:    content.Bytes(),
		Line:    line,
		EndLine: last,
	})
}

// inlineLine finds the line an inline node starts on: the first text
// segment of the node, falling back to the enclosing block's first line.
func inlineLine(n ast.Node, body []byte, idx lineIndex, fmLines int) int {
	offset := -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || offset >= 0 {
			return ast.WalkSkipChildren, nil
		}
		if t, ok := c.(*ast.Text); ok && t.Segment.Len() > 0 {
			offset = t.Segment.Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	if offset < 0 {
		for p := n.Parent(); p != nil; p = p.Parent() {
			if p.Type() == ast.TypeBlock && p.Lines().Len() > 0 {
				offset = p.Lines().At(0).Start
				break
			}
		}
	}
	if offset < 0 {
		return 0
	}
	return idx.lineAt(offset) + fmLines
}

// ClassifyDestination classifies a raw link destination.
func ClassifyDestination(dest string) LinkKind {
	switch {
	case strings.HasPrefix(dest, "#"):
		return LinkAnchor
	case strings.HasPrefix(dest, "mailto:"):
		return LinkMail
	case schemeRe.MatchString(dest):
		return LinkExternal
	default:
		return LinkInternal
	}
}

// SplitFragment splits an internal destination into its path and fragment
// parts ("intro.md#setup" -> "intro.md", "setup").
func (l Link) SplitFragment() (path, fragment string) {
	path, fragment, _ = strings.Cut(l.Destination, "#")
	return path, fragment
}

// String returns the kind name used in messages.
func (k LinkKind) String() string {
	switch k {
	case LinkInternal:
		return "internal"
	case LinkAnchor:
		return "anchor"
	case LinkExternal:
		return "external"
	case LinkMail:
		return "mail"
	default:
		return "unknown"
	}
}

// Body returns the document content without the frontmatter block.
func (d *Document) Body() []byte {
	_, body, _ := SplitFrontmatter(d.Source)
	return body
}

// FirstH1 returns the first level-1 heading, or nil.
func (d *Document) FirstH1() *Heading {
	for i := range d.Headings {
		if d.Headings[i].Level == 1 {
			return &d.Headings[i]
		}
	}
	return nil
}

// HasAnchor reports whether a heading in the document produces the given
// anchor slug.
func (d *Document) HasAnchor(slug string) bool {
	for _, h := range d.Headings {
		if h.Slug == slug {
			return true
		}
	}
	return false
}

// SplitFrontmatter splits a leading YAML frontmatter block from the
// document. The block must start at byte 0 with a "---" line and end with a
// "---" or "..." line; anything else (including an unclosed block) means no
// frontmatter. The returned line count covers both delimiter lines.
func SplitFrontmatter(src []byte) (frontmatter, body []byte, lines int) {
	rest, ok := delimiterLine(src, 0)
	if !ok {
		return nil, src, 0
	}

	fmStart := len(src) - len(rest)
	offset := fmStart
	count := 1
	for len(rest) > 0 {
		count++
		nl := bytes.IndexByte(rest, '\n')
		var lineEnd int
		if nl < 0 {
			lineEnd = len(src)
			rest = nil
		} else {
			lineEnd = offset + nl
			rest = rest[nl+1:]
		}
		lineText := bytes.TrimRight(src[offset:lineEnd], " \t\r")
		if string(lineText) == "---" || string(lineText) == "..." {
			bodyStart := len(src) - len(rest)
			return src[fmStart:offset], src[bodyStart:], count
		}
		offset = lineEnd + 1
	}
	return nil, src, 0
}

// delimiterLine checks that src starts with a "---" line at the given
// offset and returns the remaining bytes after it.
func delimiterLine(src []byte, at int) (rest []byte, ok bool) {
	if at >= len(src) {
		return nil, false
	}
	nl := bytes.IndexByte(src[at:], '\n')
	var line []byte
	if nl < 0 {
		line = src[at:]
		rest = nil
	} else {
		line = src[at : at+nl]
		rest = src[at+nl+1:]
	}
	if string(bytes.TrimRight(line, " \t\r")) != "---" {
		return nil, false
	}
	return rest, true
}

// nodeText flattens the text content of a node, code spans included.
func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(src []byte) lineIndex {
	idx := lineIndex{0}
	for i, b := range src {
		if b == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (li lineIndex) lineAt(offset int) int {
	return sort.Search(len(li), func(i int) bool { return li[i] > offset })
}
