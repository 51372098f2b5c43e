// Package extract implements the extraction pipeline (C5): turning a
// rendered page's HTML into main content (text/markdown/html), a link
// catalog, and a metadata bundle, all via a golang.org/x/net/html DOM walk
// rather than regex, so the structural heuristics in the spec can inspect
// real element trees.
package extract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MainContent is the result of detecting and rendering the primary content
// subtree of a page (section 3).
type MainContent struct {
	Text                 string `json:"text"`
	HTML                 string `json:"html,omitempty"`
	Markdown             string `json:"markdown,omitempty"`
	WordCount            int    `json:"word_count"`
	DetectedRootSelector string `json:"detected_root_selector"`
}

var adsNavFooterClasses = []string{
	"ad", "ads", "advert", "advertisement", "nav", "navigation", "navbar",
	"footer", "sidebar", "menu", "banner", "promo", "social", "share",
	"comment", "comments", "cookie", "popup", "modal",
}

// DetectRoot chooses the highest-scoring subtree per the precedence order in
// section 4.5: main/article/role=main first, then a scored scan over block
// elements, falling back to body. selector, if non-empty and matching an
// element, short-circuits detection (the caller already knows the root); a
// selector that matches nothing falls through to the detection below.
func DetectRoot(doc *html.Node, selector string) (*html.Node, string) {
	if selector != "" {
		if node := querySelector(doc, selector); node != nil {
			return node, selector
		}
	}

	if node := findFirst(doc, atom.Main); node != nil {
		return node, "main"
	}
	if node := findFirst(doc, atom.Article); node != nil {
		return node, "article"
	}
	if node := findByAttr(doc, "role", "main"); node != nil {
		return node, "[role=main]"
	}

	best, bestScore, bestSelector := (*html.Node)(nil), 0, ""
	walk(doc, func(n *html.Node) {
		if !isBlockElement(n) {
			return
		}
		score := scoreNode(n)
		if score > bestScore || best == nil {
			best, bestScore, bestSelector = n, score, describeNode(n)
		}
	})

	if best != nil && bestScore > 0 {
		return best, bestSelector
	}

	if body := findFirst(doc, atom.Body); body != nil {
		return body, "body"
	}
	return doc, "html"
}

// scoreNode implements score = text_length - 5*link_text_length -
// 10*(ads/nav/footer classes matched), the representative weighting from
// section 4.5 (an implementation may recalibrate provided the precedence
// above is preserved).
func scoreNode(n *html.Node) int {
	textLen := len(strings.TrimSpace(textContent(n)))
	linkLen := 0
	walk(n, func(c *html.Node) {
		if c.Type == html.ElementNode && c.DataAtom == atom.A {
			linkLen += len(strings.TrimSpace(textContent(c)))
		}
	})

	penalty := 0
	class := attr(n, "class") + " " + attr(n, "id")
	class = strings.ToLower(class)
	for _, bad := range adsNavFooterClasses {
		if strings.Contains(class, bad) {
			penalty++
		}
	}

	return textLen - 5*linkLen - 10*penalty
}

func isBlockElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Div, atom.Section, atom.Main, atom.Article, atom.Aside,
		atom.Header, atom.Footer, atom.Nav, atom.Body:
		return true
	}
	return false
}

// RenderText concatenates visible text nodes under root, normalizing runs of
// whitespace to a single space and preserving paragraph breaks as "\n\n".
func RenderText(root *html.Node) string {
	var sb strings.Builder
	var lastWasBlock = true

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && isSkippedElement(n.DataAtom) {
			return
		}
		if n.Type == html.TextNode {
			text := normalizeWhitespace(n.Data)
			if text != "" {
				if sb.Len() > 0 && !lastWasBlock {
					sb.WriteString(" ")
				}
				sb.WriteString(text)
				lastWasBlock = false
			}
			return
		}
		if n.Type == html.ElementNode && isParagraphBreak(n.DataAtom) && sb.Len() > 0 {
			sb.WriteString("\n\n")
			lastWasBlock = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)

	return strings.TrimSpace(collapseBlankLines(sb.String()))
}

func isSkippedElement(a atom.Atom) bool {
	return a == atom.Script || a == atom.Style || a == atom.Noscript
}

func isParagraphBreak(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Br, atom.Li, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Tr, atom.Section, atom.Article:
		return true
	}
	return false
}

func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}

// RenderHTML serializes root's outer HTML with <script> and <style> removed.
func RenderHTML(root *html.Node) (string, error) {
	clone := cloneWithoutScriptsAndStyles(root)
	var sb strings.Builder
	if err := html.Render(&sb, clone); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func cloneWithoutScriptsAndStyles(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:     n.Type,
		DataAtom: n.DataAtom,
		Data:     n.Data,
		Attr:     append([]html.Attribute{}, n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isSkippedElement(c.DataAtom) {
			continue
		}
		clone.AppendChild(cloneWithoutScriptsAndStyles(c))
	}
	return clone
}

// WordCount counts whitespace-delimited tokens, used for MainContent.WordCount.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) {
		if found == nil && c.Type == html.ElementNode && c.DataAtom == a {
			found = c
		}
	})
	return found
}

func findByAttr(n *html.Node, key, value string) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) {
		if found == nil && c.Type == html.ElementNode && attr(c, key) == value {
			found = c
		}
	})
	return found
}

// querySelector supports the small subset of CSS selectors the dispatcher
// needs to pass through from a tool call's selector argument: a bare tag, a
// #id, or a .class.
func querySelector(n *html.Node, selector string) *html.Node {
	selector = strings.TrimSpace(selector)
	switch {
	case strings.HasPrefix(selector, "#"):
		return findByAttr(n, "id", selector[1:])
	case strings.HasPrefix(selector, "."):
		class := selector[1:]
		var found *html.Node
		walk(n, func(c *html.Node) {
			if found == nil && c.Type == html.ElementNode {
				for _, cls := range strings.Fields(attr(c, "class")) {
					if cls == class {
						found = c
					}
				}
			}
		})
		return found
	default:
		return findFirst(n, atom.Lookup([]byte(selector)))
	}
}

// describeNode builds a human-readable selector for the detected root,
// preferring #id, then .class, then the bare tag name.
func describeNode(n *html.Node) string {
	if id := attr(n, "id"); id != "" {
		return "#" + id
	}
	if class := attr(n, "class"); class != "" {
		if first := strings.Fields(class); len(first) > 0 {
			return "." + first[0]
		}
	}
	return n.Data
}
