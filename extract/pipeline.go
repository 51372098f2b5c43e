package extract

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Format selects a MainContent rendering (section 4.3's web_extract_content
// format argument).
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseHTML parses raw into a DOM tree. Determinism (section 4.5) falls out
// of x/net/html's parser being a pure function of its input.
func ParseHTML(raw string) (*html.Node, error) {
	return html.Parse(strings.NewReader(raw))
}

// ExtractContent runs main-content detection then renders it in the
// requested format, producing the MainContent bundle in section 3. A
// non-empty selector that matches no element is an error.
func ExtractContent(raw string, base *url.URL, selector string, format Format) (MainContent, error) {
	doc, err := ParseHTML(raw)
	if err != nil {
		return MainContent{}, fmt.Errorf("parse html: %w", err)
	}
	if selector != "" && querySelector(doc, selector) == nil {
		return MainContent{}, fmt.Errorf("no element matches selector %q", selector)
	}

	root, detected := DetectRoot(doc, selector)
	text := RenderText(root)

	mc := MainContent{
		Text:                 text,
		WordCount:            WordCount(text),
		DetectedRootSelector: detected,
	}

	switch format {
	case FormatHTML:
		out, err := RenderHTML(root)
		if err != nil {
			return MainContent{}, fmt.Errorf("render html: %w", err)
		}
		mc.HTML = out
	case FormatText:
		// text is already populated above.
	default: // markdown, the default per section 4.3.
		mc.Markdown = RenderMarkdown(root, base)
	}

	return mc, nil
}
