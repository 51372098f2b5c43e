// Package tools registers the eight browser-automation tools (web_navigate,
// web_screenshot, web_pdf, web_extract_content, web_extract_links,
// web_extract_metadata, web_execute_js, web_capture_mhtml) against a
// mcp.Registry, wiring each handler to the browser controller and
// extraction pipeline.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shaharia-lab/reasonkit-web/browser"
	"github.com/shaharia-lab/reasonkit-web/mcp"
)

// RegisterOption configures Register.
type RegisterOption func(*registerConfig)

type registerConfig struct {
	scriptPolicy ScriptPolicy
}

// WithScriptPolicy overrides the default permit-all policy consulted by
// web_execute_js before any script reaches the browser.
func WithScriptPolicy(p ScriptPolicy) RegisterOption {
	return func(c *registerConfig) { c.scriptPolicy = p }
}

// Register adds all eight tool descriptors to reg, bound to controller.
func Register(reg *mcp.Registry, controller *browser.Controller, opts ...RegisterOption) error {
	cfg := registerConfig{scriptPolicy: PermitAll()}
	for _, opt := range opts {
		opt(&cfg)
	}

	registrations := []struct {
		name        string
		description string
		schema      string
		handler     mcp.Handler
	}{
		{"web_navigate", "Navigate a browser page to a URL and wait for it to load.", navigateSchema, navigateHandler(controller)},
		{"web_screenshot", "Capture a screenshot of a page or element.", screenshotSchema, screenshotHandler(controller)},
		{"web_pdf", "Render a page to PDF.", pdfSchema, pdfHandler(controller)},
		{"web_extract_content", "Extract the main content of a page as text, markdown, or html.", extractContentSchema, extractContentHandler(controller)},
		{"web_extract_links", "Extract and classify the links on a page.", extractLinksSchema, extractLinksHandler(controller)},
		{"web_extract_metadata", "Extract title/description/OpenGraph/Twitter/JSON-LD metadata from a page.", extractMetadataSchema, extractMetadataHandler(controller)},
		{"web_execute_js", "Evaluate a JavaScript expression in the page and return its JSON result.", executeJSSchema, executeJSHandler(controller, cfg.scriptPolicy)},
		{"web_capture_mhtml", "Capture a page as an MHTML snapshot.", captureMHTMLSchema, captureMHTMLHandler(controller)},
	}

	for _, r := range registrations {
		if err := reg.Register(r.name, r.description, json.RawMessage(r.schema), r.handler); err != nil {
			return fmt.Errorf("register %s: %w", r.name, err)
		}
	}
	return nil
}

// navigateAndLoad is the shared prelude of every tool except web_navigate
// (which runs the same steps itself): validate the requested URL, acquire a
// page, navigate to the URL, and hand the caller a page ready for
// extraction/capture. The returned release func must be deferred by the
// caller so the page is closed on every exit path (section 4.4).
func navigateAndLoad(ctx context.Context, controller *browser.Controller, rawURL, waitFor string) (*browser.Page, func(), error) {
	target, err := controller.ValidateURL(rawURL)
	if err != nil {
		return nil, func() {}, err
	}

	page, err := controller.Acquire(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	release := func() { controller.Release(page) }

	if _, err := controller.Navigate(ctx, page, target, waitFor); err != nil {
		release()
		return nil, func() {}, err
	}
	return page, release, nil
}
