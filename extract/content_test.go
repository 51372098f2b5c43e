package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderText_ParagraphBreaksPreserved(t *testing.T) {
	raw := `<html><body><main><p>first</p><p>second</p></main></body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)
	root, _ := DetectRoot(doc, "")
	assert.Equal(t, "first\n\nsecond", RenderText(root))
}

func TestRenderText_SkipsScriptAndStyle(t *testing.T) {
	raw := `<html><body><main><script>var x=1;</script><style>.a{color:red}</style><p>visible</p></main></body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)
	root, _ := DetectRoot(doc, "")
	assert.Equal(t, "visible", RenderText(root))
}

func TestScoreNode_PenalizesNavClass(t *testing.T) {
	raw := `<html><body><div class="nav">x</div></body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)

	// DetectRoot should refuse a nav-classed block as the scored winner and
	// fall back to body, since the class penalty drives its score
	// non-positive relative to its short text.
	_, selector := DetectRoot(doc, "")
	assert.Equal(t, "body", selector)
}

func TestRenderHTML_RootNodeSerializes(t *testing.T) {
	raw := `<html><body><main><p>hi</p></main></body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)
	root, _ := DetectRoot(doc, "")

	out, err := RenderHTML(root)
	require.NoError(t, err)
	assert.Contains(t, out, "<p>hi</p>")
}

func TestDetectRoot_DescribesByID(t *testing.T) {
	raw := `<html><body>
		<div class="nav"><a href="/a">aaaaaaaaaa</a><a href="/b">bbbbbbbbbb</a></div>
		<div id="content">plenty of unique readable text content in here to win the score</div>
	</body></html>`
	doc, err := ParseHTML(raw)
	require.NoError(t, err)
	_, selector := DetectRoot(doc, "")
	assert.Equal(t, "#content", selector)
}
