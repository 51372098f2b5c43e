package tools

import (
	"context"
	"encoding/json"

	"github.com/shaharia-lab/reasonkit-web/browser"
	"github.com/shaharia-lab/reasonkit-web/extract"
	"github.com/shaharia-lab/reasonkit-web/mcp"
)

func extractContentHandler(controller *browser.Controller) mcp.Handler {
	return func(ctx context.Context, args json.RawMessage) (mcp.CallToolResult, error) {
		in := struct {
			URL      string `json:"url"`
			Selector string `json:"selector"`
			Format   string `json:"format"`
		}{}
		if err := json.Unmarshal(args, &in); err != nil {
			return mcp.CallToolResult{}, err
		}
		format := extract.Format(in.Format)
		if format == "" {
			format = extract.FormatMarkdown
		}

		page, release, err := navigateAndLoad(ctx, controller, in.URL, "")
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}
		defer release()

		raw, err := controller.OuterHTML(ctx, page)
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}
		base, _ := controller.PageURL(ctx, page)

		content, err := extract.ExtractContent(raw, base, in.Selector, format)
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}

		switch format {
		case extract.FormatText:
			return mcp.OKResult(mcp.TextContent(content.Text)), nil
		case extract.FormatHTML:
			return mcp.OKResult(mcp.TextContent(content.HTML)), nil
		default:
			return mcp.OKResult(mcp.TextContent(content.Markdown)), nil
		}
	}
}

func extractLinksHandler(controller *browser.Controller) mcp.Handler {
	return func(ctx context.Context, args json.RawMessage) (mcp.CallToolResult, error) {
		in := struct {
			URL      string `json:"url"`
			Type     string `json:"type"`
			Selector string `json:"selector"`
		}{}
		if err := json.Unmarshal(args, &in); err != nil {
			return mcp.CallToolResult{}, err
		}
		filter := extract.LinkFilter(in.Type)
		if filter == "" {
			filter = extract.FilterAll
		}

		page, release, err := navigateAndLoad(ctx, controller, in.URL, "")
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}
		defer release()

		raw, err := controller.OuterHTML(ctx, page)
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}
		base, _ := controller.PageURL(ctx, page)

		doc, err := extract.ParseHTML(raw)
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}

		links := extract.ExtractLinks(doc, base, filter, in.Selector)
		encoded, err := json.Marshal(links)
		if err != nil {
			return mcp.ErrorResult("failed to encode links: %v", err), nil
		}
		return mcp.OKResult(mcp.TextContent(string(encoded))), nil
	}
}

func extractMetadataHandler(controller *browser.Controller) mcp.Handler {
	return func(ctx context.Context, args json.RawMessage) (mcp.CallToolResult, error) {
		in := struct {
			URL string `json:"url"`
		}{}
		if err := json.Unmarshal(args, &in); err != nil {
			return mcp.CallToolResult{}, err
		}

		page, release, err := navigateAndLoad(ctx, controller, in.URL, "")
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}
		defer release()

		raw, err := controller.OuterHTML(ctx, page)
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}
		base, _ := controller.PageURL(ctx, page)

		doc, err := extract.ParseHTML(raw)
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}

		meta := extract.ExtractMetadata(doc, base)
		encoded, err := json.Marshal(meta)
		if err != nil {
			return mcp.ErrorResult("failed to encode metadata: %v", err), nil
		}
		return mcp.OKResult(mcp.TextContent(string(encoded))), nil
	}
}
