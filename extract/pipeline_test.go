package extract

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

// TestExtractContent_SeedScenario3 matches spec.md section 8's concrete
// scenario: web_extract_content with format markdown on
// <main><h1>H</h1><p>hi</p></main> must render exactly "# H\n\nhi".
func TestExtractContent_SeedScenario3(t *testing.T) {
	raw := `<!doctype html><html lang="en"><head><title>T</title></head><body><main><h1>H</h1><p>hi</p></main></body></html>`

	content, err := ExtractContent(raw, mustParseURL(t, "http://a.test/"), "", FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "# H\n\nhi", content.Markdown)
	assert.Equal(t, "main", content.DetectedRootSelector)
}

func TestExtractContent_TextFormatNormalizesWhitespace(t *testing.T) {
	raw := `<html><body><main><p>hello    world</p><p>second</p></main></body></html>`
	content, err := ExtractContent(raw, nil, "", FormatText)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n\nsecond", content.Text)
}

func TestExtractContent_HTMLFormatStripsScriptsAndStyles(t *testing.T) {
	raw := `<html><body><main><style>.a{}</style><p>hi</p><script>evil()</script></main></body></html>`
	content, err := ExtractContent(raw, nil, "", FormatHTML)
	require.NoError(t, err)
	assert.NotContains(t, content.HTML, "evil")
	assert.NotContains(t, content.HTML, "<style>")
}

func TestDetectRoot_PrefersMainOverScoredScan(t *testing.T) {
	raw := `<html><body><div class="nav">lots of links here with more text than main has by far</div><main>short</main></body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)

	_, selector := DetectRoot(doc, "")
	assert.Equal(t, "main", selector)
}

func TestDetectRoot_PrefersArticleOverRoleMain(t *testing.T) {
	raw := `<html><body><div role="main">a</div><article>b</article></body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)

	_, selector := DetectRoot(doc, "")
	assert.Equal(t, "article", selector)
}

func TestDetectRoot_FallsBackToBodyWhenAllScoresNonPositive(t *testing.T) {
	raw := `<html><body><div class="nav"><a href="/a">a</a><a href="/b">b</a></div></body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)

	_, selector := DetectRoot(doc, "")
	assert.Equal(t, "body", selector)
}

func TestDetectRoot_ExplicitSelectorShortCircuits(t *testing.T) {
	raw := `<html><body><main>x</main><div id="custom">y</div></body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)

	_, selector := DetectRoot(doc, "#custom")
	assert.Equal(t, "#custom", selector)
}

func TestExtractContent_Determinism(t *testing.T) {
	raw := `<html><body><main><h1>T</h1><p>body text</p></main></body></html>`
	a, err := ExtractContent(raw, mustParseURL(t, "http://a.test/"), "", FormatMarkdown)
	require.NoError(t, err)
	b, err := ExtractContent(raw, mustParseURL(t, "http://a.test/"), "", FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 3, WordCount("one two three"))
	assert.Equal(t, 0, WordCount("   "))
}
