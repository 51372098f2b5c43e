package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LinkType classifies a Link per section 3's enum.
type LinkType string

const (
	LinkInternal LinkType = "internal"
	LinkExternal LinkType = "external"
	LinkFragment LinkType = "fragment"
	LinkMailto   LinkType = "mailto"
	LinkTel      LinkType = "tel"
	LinkOther    LinkType = "other"
)

// Link is one extracted anchor (section 3).
type Link struct {
	Href string   `json:"href"`
	Text string   `json:"text"`
	Rel  string   `json:"rel,omitempty"`
	Type LinkType `json:"link_type"`
}

// LinkFilter selects which classifications ExtractLinks returns.
type LinkFilter string

const (
	FilterAll      LinkFilter = "all"
	FilterInternal LinkFilter = "internal"
	FilterExternal LinkFilter = "external"
)

// ExtractLinks walks <a[href]> in document order under root, resolving each
// href against base and classifying it, per section 4.5.
func ExtractLinks(root *html.Node, base *url.URL, filter LinkFilter, selector string) []Link {
	scope := root
	if selector != "" {
		if n := querySelector(root, selector); n != nil {
			scope = n
		}
	}

	var links []Link
	walk(scope, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.A {
			return
		}
		href := attr(n, "href")
		if href == "" {
			return
		}
		l := classify(href, base)
		l.Text = strings.TrimSpace(textContent(n))
		l.Rel = attr(n, "rel")

		if !matchesFilter(l.Type, filter) {
			return
		}
		links = append(links, l)
	})
	return links
}

func matchesFilter(t LinkType, filter LinkFilter) bool {
	switch filter {
	case FilterInternal:
		return t == LinkInternal
	case FilterExternal:
		return t == LinkExternal
	default:
		return true
	}
}

// classify resolves href against base and assigns its LinkType following the
// precedence in section 4.5: scheme-based (mailto/tel) first, then fragment
// equivalence, then same-origin, then external, then other for anything
// unresolved.
func classify(href string, base *url.URL) Link {
	ref, err := url.Parse(href)
	if err != nil {
		return Link{Href: href, Type: LinkOther}
	}

	switch ref.Scheme {
	case "mailto":
		return Link{Href: href, Type: LinkMailto}
	case "tel":
		return Link{Href: href, Type: LinkTel}
	}

	if base == nil {
		return Link{Href: href, Type: LinkOther}
	}

	resolved := base.ResolveReference(ref)

	if sameExceptFragment(resolved, base) {
		return Link{Href: resolved.String(), Type: LinkFragment}
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return Link{Href: resolved.String(), Type: LinkOther}
	}

	if sameOrigin(resolved, base) {
		return Link{Href: resolved.String(), Type: LinkInternal}
	}
	return Link{Href: resolved.String(), Type: LinkExternal}
}

func sameExceptFragment(a, b *url.URL) bool {
	ac, bc := *a, *b
	ac.Fragment = ""
	bc.Fragment = ""
	return ac.String() == bc.String()
}

func sameOrigin(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && a.Hostname() == b.Hostname() && a.Port() == b.Port()
}
