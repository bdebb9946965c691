// SPDX-License-Identifier: MPL-2.0

package site

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"kurso/internal/course"
	"kurso/internal/mdscan"
	"kurso/pkg/fence"
)

// attrEscaper escapes a JSON config for embedding in an HTML attribute.
// The replacement set and order follow the established data-config
// contract: & then ' then ".
var attrEscaper = strings.NewReplacer("&", "&amp;", "'", "&#39;", `"`, "&quot;")

// htmlFormatter emits class-based markup; the palette ships separately in
// chroma.css so one build can carry both light and dark schemes.
var htmlFormatter = chromahtml.New(chromahtml.WithClasses(true))

// newMarkdown builds the lesson renderer: GFM prose, emoji shortcodes,
// raw HTML passthrough (lessons embed their own markup), and a node
// renderer that takes over fenced code blocks and links.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, emoji.Emoji),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			ghtml.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(newLessonNodes(ghtml.WithUnsafe()), 100),
			),
		),
	)
}

// renderBody converts one lesson body to HTML. Each document gets a fresh
// id generator so heading anchors match the scanned outline.
func renderBody(md goldmark.Markdown, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	ctx := parser.NewContext(parser.WithIDs(mdscan.NewIDs()))
	if err := md.Convert(body, &buf, parser.WithContext(ctx)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// lessonNodes overrides the default rendering of fenced code blocks
// (interactive fences become component divs, everything else gets chroma
// highlighting) and of links (.md destinations become .html).
type lessonNodes struct {
	ghtml.Config
}

func newLessonNodes(opts ...ghtml.Option) renderer.NodeRenderer {
	r := &lessonNodes{Config: ghtml.NewConfig()}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *lessonNodes) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindLink, r.renderLink)
}

func (r *lessonNodes) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	info := ""
	if n.Info != nil {
		info = strings.TrimSpace(string(n.Info.Segment.Value(source)))
	}
	body := fencedBody(n, source)

	if t, ok := fence.ParseType(info); ok {
		writeInteractive(w, t, bytes.TrimSuffix(body, []byte("\n")))
		return ast.WalkContinue, nil
	}

	lang, _, _ := strings.Cut(info, " ")
	if err := writeHighlighted(w, lang, body); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkContinue, nil
}

// interactiveConfig returns the data-config JSON for an interactive fence
// body, or ok=false when the body must degrade to a warning admonition.
// The build's fence diagnostics use the same predicate, so every degraded
// fence is also reported.
func interactiveConfig(body []byte) (string, bool) {
	if !fence.IsMappingBody(body) {
		return "", false
	}
	js, err := fence.ConfigJSON(body)
	if err != nil || js == "" {
		return "", false
	}
	return js, true
}

// fencedBody concatenates the content lines of a fenced block.
func fencedBody(n *ast.FencedCodeBlock, source []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}

// writeInteractive emits the component div for an interactive fence:
//
//	<div class="interactive-<type>" data-config="<escaped json>">
//	<noscript>...</noscript></div>
//
// A body that does not decode to a component config renders as a warning
// admonition instead, so a broken fence degrades visibly rather than
// producing a component with no config.
func writeInteractive(w util.BufWriter, t fence.Type, body []byte) {
	cfgJSON, ok := interactiveConfig(body)
	if !ok {
		fmt.Fprintf(w, `<div class="admonition warning"><p>Invalid interactive component configuration (%s)</p></div>`+"\n", t)
		return
	}

	title := fence.TitleFor(t, body)
	_, _ = w.WriteString(`<div class="interactive-` + string(t) + `" data-config="` + attrEscaper.Replace(cfgJSON) + `">`)
	_, _ = w.WriteString(`<noscript><p><strong>` + title + `</strong> (requires JavaScript)</p></noscript>`)
	_, _ = w.WriteString("</div>\n")
}

// writeHighlighted renders a plain code block through chroma. Unknown
// languages fall back to the plaintext lexer so every block gets the same
// chrome.
func writeHighlighted(w util.BufWriter, lang string, src []byte) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, string(src))
	if err != nil {
		return fmt.Errorf("tokenise %s block: %w", lang, err)
	}
	if err := htmlFormatter.Format(w, styles.Fallback, iterator); err != nil {
		return fmt.Errorf("format %s block: %w", lang, err)
	}
	_ = w.WriteByte('\n')
	return nil
}

func (r *lessonNodes) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if entering {
		_, _ = w.WriteString(`<a href="`)
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(rewriteDestination(n.Destination), true)))
		_ = w.WriteByte('"')
		if n.Title != nil {
			_, _ = w.WriteString(` title="`)
			r.Writer.Write(w, n.Title)
			_ = w.WriteByte('"')
		}
		_ = w.WriteByte('>')
	} else {
		_, _ = w.WriteString("</a>")
	}
	return ast.WalkContinue, nil
}

// rewriteDestination maps internal .md destinations to the .html files the
// build writes, keeping any fragment.
func rewriteDestination(dest []byte) []byte {
	d := string(dest)
	if mdscan.ClassifyDestination(d) != mdscan.LinkInternal {
		return dest
	}
	p, frag := d, ""
	if i := strings.IndexByte(d, '#'); i >= 0 {
		p, frag = d[:i], d[i:]
	}
	if !strings.HasSuffix(p, ".md") {
		return dest
	}
	return []byte(strings.TrimSuffix(p, ".md") + ".html" + frag)
}

// chromaCSS renders the highlight palette for the course theme: a fixed
// palette for dark or light, both palettes behind a prefers-color-scheme
// query for auto.
func chromaCSS(theme course.Theme) ([]byte, error) {
	light := styles.Get("github")
	dark := styles.Get("github-dark")

	var buf bytes.Buffer
	switch theme {
	case course.ThemeDark:
		if err := htmlFormatter.WriteCSS(&buf, dark); err != nil {
			return nil, err
		}
	case course.ThemeLight:
		if err := htmlFormatter.WriteCSS(&buf, light); err != nil {
			return nil, err
		}
	default:
		if err := htmlFormatter.WriteCSS(&buf, light); err != nil {
			return nil, err
		}
		buf.WriteString("@media (prefers-color-scheme: dark) {\n")
		if err := htmlFormatter.WriteCSS(&buf, dark); err != nil {
			return nil, err
		}
		buf.WriteString("}\n")
	}
	return buf.Bytes(), nil
}
