package extract

import (
	"encoding/json"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Metadata is the metadata bundle in section 3.
type Metadata struct {
	Title        string            `json:"title,omitempty"`
	Description  string            `json:"description,omitempty"`
	Language     string            `json:"language,omitempty"`
	CanonicalURL string            `json:"canonical_url,omitempty"`
	OG           map[string]string `json:"og"`
	Twitter      map[string]string `json:"twitter"`
	JSONLD       []json.RawMessage `json:"json_ld"`
}

// ExtractMetadata walks doc for the fields in section 4.5. Malformed
// json_ld entries are skipped silently (their count is not exposed).
func ExtractMetadata(doc *html.Node, base *url.URL) Metadata {
	meta := Metadata{OG: map[string]string{}, Twitter: map[string]string{}}

	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.DataAtom {
		case atom.Title:
			if meta.Title == "" {
				meta.Title = strings.TrimSpace(textContent(n))
			}
		case atom.Html:
			if lang := attr(n, "lang"); lang != "" {
				meta.Language = lang
			}
		case atom.Meta:
			collectMeta(n, &meta)
		case atom.Link:
			if attr(n, "rel") == "canonical" {
				meta.CanonicalURL = absolutize(base, attr(n, "href"))
			}
		case atom.Script:
			if attr(n, "type") == "application/ld+json" {
				raw := strings.TrimSpace(textContent(n))
				if raw == "" {
					return
				}
				var parsed json.RawMessage
				if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
					meta.JSONLD = append(meta.JSONLD, parsed)
				}
			}
		}
	})

	return meta
}

func collectMeta(n *html.Node, meta *Metadata) {
	name := attr(n, "name")
	property := attr(n, "property")
	content := attr(n, "content")

	switch {
	case name == "description":
		meta.Description = content
	case strings.HasPrefix(property, "og:"):
		meta.OG[strings.TrimPrefix(property, "og:")] = content
	case strings.HasPrefix(name, "twitter:"):
		meta.Twitter[strings.TrimPrefix(name, "twitter:")] = content
	}
}
