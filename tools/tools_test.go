package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/reasonkit-web/browser"
	"github.com/shaharia-lab/reasonkit-web/internal/logging"
	"github.com/shaharia-lab/reasonkit-web/mcp"
)

func TestRegister_AllEightTools(t *testing.T) {
	reg := mcp.NewRegistry()
	controller := browser.New(browser.Config{}, logging.NewNullLogger())

	require.NoError(t, Register(reg, controller))

	list := reg.List()
	require.Len(t, list.Tools, 8)

	names := make(map[string]bool)
	for _, d := range list.Tools {
		names[d.Name] = true
	}
	for _, expected := range []string{
		"web_navigate", "web_screenshot", "web_pdf", "web_extract_content",
		"web_extract_links", "web_extract_metadata", "web_execute_js", "web_capture_mhtml",
	} {
		assert.True(t, names[expected], "missing tool %s", expected)
	}
}

func TestRegister_RejectsDoubleRegistration(t *testing.T) {
	reg := mcp.NewRegistry()
	controller := browser.New(browser.Config{}, logging.NewNullLogger())

	require.NoError(t, Register(reg, controller))
	err := Register(reg, controller)
	assert.Error(t, err)
}

func TestRegister_DefaultScriptPolicyIsPermitAll(t *testing.T) {
	reg := mcp.NewRegistry()
	controller := browser.New(browser.Config{}, logging.NewNullLogger())
	require.NoError(t, Register(reg, controller))

	_, ok := reg.Lookup("web_execute_js")
	require.True(t, ok)

	// The default policy lets the script through, so the call fails at URL
	// validation, not with a policy rejection; the invalid URL also keeps the
	// call from launching a browser.
	result, rpcErr := reg.Dispatch(context.Background(), mcp.CallParams{
		Name:      "web_execute_js",
		Arguments: json.RawMessage(`{"url":"not-a-url","script":"1"}`),
	}, time.Second)
	require.Nil(t, rpcErr)
	require.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "invalid url")
	assert.NotContains(t, result.Content[0].Text, "rejected by policy")
}
