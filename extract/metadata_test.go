package extract

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMetadata_SeedScenario3(t *testing.T) {
	raw := `<!doctype html><html lang="en"><head><title>T</title></head><body></body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)

	meta := ExtractMetadata(doc, nil)
	assert.Equal(t, "T", meta.Title)
	assert.Equal(t, "en", meta.Language)
}

func TestExtractMetadata_OpenGraphAndTwitter(t *testing.T) {
	raw := `<html><head>
		<meta property="og:title" content="OG Title">
		<meta name="twitter:card" content="summary">
		<meta name="description" content="desc">
	</head><body></body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)

	meta := ExtractMetadata(doc, nil)
	assert.Equal(t, "OG Title", meta.OG["title"])
	assert.Equal(t, "summary", meta.Twitter["card"])
	assert.Equal(t, "desc", meta.Description)
}

func TestExtractMetadata_CanonicalURLAbsolutized(t *testing.T) {
	raw := `<html><head><link rel="canonical" href="/p"></head><body></body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)
	base, _ := url.Parse("http://a.test/x")

	meta := ExtractMetadata(doc, base)
	assert.Equal(t, "http://a.test/p", meta.CanonicalURL)
}

func TestExtractMetadata_MalformedJSONLDSkippedSilently(t *testing.T) {
	raw := `<html><head>
		<script type="application/ld+json">{not valid json</script>
		<script type="application/ld+json">{"@type":"Thing"}</script>
	</head><body></body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)

	meta := ExtractMetadata(doc, nil)
	require.Len(t, meta.JSONLD, 1)
}
