// SPDX-License-Identifier: MPL-2.0

package mdscan

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

// GitHubSlug derives an anchor slug from heading text the way GitHub does:
// lowercase, spaces to hyphens, everything but letters, digits, hyphens and
// underscores removed. Unicode letters survive.
func GitHubSlug(text string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// Slugger produces document-unique anchor slugs: repeated headings get a
// "-1", "-2" suffix in order of appearance. One Slugger serves one document.
type Slugger struct {
	counts map[string]int
}

// NewSlugger returns an empty Slugger.
func NewSlugger() *Slugger {
	return &Slugger{counts: make(map[string]int)}
}

// Slug returns the deduplicated slug for the given heading text.
func (s *Slugger) Slug(text string) string {
	base := GitHubSlug(text)
	if base == "" {
		base = "section"
	}
	n := s.counts[base]
	s.counts[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// IDs adapts a Slugger to goldmark's parser.IDs so the rendered site gets
// the same heading ids the outline reports. Install per document with
// parser.NewContext(parser.WithIDs(mdscan.NewIDs())).
type IDs struct {
	slugger *Slugger
}

// NewIDs returns a fresh goldmark id generator backed by a Slugger.
func NewIDs() *IDs {
	return &IDs{slugger: NewSlugger()}
}

var _ parser.IDs = (*IDs)(nil)

// Generate implements parser.IDs.
func (ids *IDs) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(ids.slugger.Slug(string(value)))
}

// Put implements parser.IDs. Explicit ids claim their slug so a generated
// one cannot collide with them afterwards.
func (ids *IDs) Put(value []byte) {
	ids.slugger.counts[string(value)]++
}
