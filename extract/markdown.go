package extract

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderMarkdown reduces root to the block-structured markdown dialect in
// section 4.5: headings, paragraphs, lists, code/pre, blockquotes, and links
// with absolutized hrefs. Unknown tags are unwrapped to their text.
func RenderMarkdown(root *html.Node, base *url.URL) string {
	var sb strings.Builder
	renderBlock(&sb, root, base, 0)
	return strings.TrimSpace(collapseBlankLines(sb.String()))
}

func renderBlock(sb *strings.Builder, n *html.Node, base *url.URL, listDepth int) {
	if n.Type == html.ElementNode && isSkippedElement(n.DataAtom) {
		return
	}

	if n.Type == html.TextNode {
		if text := normalizeWhitespace(n.Data); text != "" {
			writeBlockSep(sb)
			sb.WriteString(text)
		}
		return
	}

	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			level := int(n.Data[1] - '0')
			writeBlockSep(sb)
			sb.WriteString(strings.Repeat("#", level) + " " + inlineText(n, base))
			return
		case atom.P:
			writeBlockSep(sb)
			sb.WriteString(inlineText(n, base))
			return
		case atom.Blockquote:
			writeBlockSep(sb)
			for _, line := range strings.Split(inlineText(n, base), "\n") {
				sb.WriteString("> " + line + "\n")
			}
			return
		case atom.Ul, atom.Ol:
			writeBlockSep(sb)
			renderList(sb, n, base, n.DataAtom == atom.Ol, listDepth)
			return
		case atom.Pre:
			writeBlockSep(sb)
			sb.WriteString("```\n" + textContent(n) + "\n```")
			return
		case atom.Code:
			writeBlockSep(sb)
			sb.WriteString("`" + textContent(n) + "`")
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderBlock(sb, c, base, listDepth)
	}
}

func writeBlockSep(sb *strings.Builder) {
	if sb.Len() > 0 {
		sb.WriteString("\n\n")
	}
}

func renderList(sb *strings.Builder, n *html.Node, base *url.URL, ordered bool, depth int) {
	i := 1
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		indent := strings.Repeat("  ", depth)
		bullet := "- "
		if ordered {
			bullet = fmt.Sprintf("%d. ", i)
		}
		if i > 1 {
			sb.WriteString("\n")
		}
		sb.WriteString(indent + bullet + inlineText(c, base))
		i++
	}
}

// inlineText renders inline-level content: links as [text](url), images as
// ![alt](url), everything else unwrapped to its text.
func inlineText(n *html.Node, base *url.URL) string {
	var sb strings.Builder
	// space writes one separating space unless the output is empty or already
	// ends in whitespace, so whitespace spanning adjacent nodes collapses to a
	// single space.
	space := func() {
		if s := sb.String(); s != "" && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
			sb.WriteString(" ")
		}
	}
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := normalizeWhitespace(n.Data)
			if text == "" {
				if n.Data != "" {
					space()
				}
				return
			}
			if n.Data[0] != text[0] {
				space()
			}
			sb.WriteString(text)
			if n.Data[len(n.Data)-1] != text[len(text)-1] {
				space()
			}
			return
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.A:
				href := absolutize(base, attr(n, "href"))
				sb.WriteString(fmt.Sprintf("[%s](%s)", strings.TrimSpace(textContent(n)), href))
				return
			case atom.Img:
				src := absolutize(base, attr(n, "src"))
				sb.WriteString(fmt.Sprintf("![%s](%s)", attr(n, "alt"), src))
				return
			case atom.Code:
				sb.WriteString("`" + textContent(n) + "`")
				return
			case atom.Br:
				sb.WriteString("\n")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visit(c)
	}
	return strings.TrimSpace(sb.String())
}

func absolutize(base *url.URL, href string) string {
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
