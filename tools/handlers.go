package tools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/shaharia-lab/reasonkit-web/browser"
	"github.com/shaharia-lab/reasonkit-web/mcp"
)

func navigateHandler(controller *browser.Controller) mcp.Handler {
	return func(ctx context.Context, args json.RawMessage) (mcp.CallToolResult, error) {
		var in struct {
			URL     string `json:"url"`
			WaitFor string `json:"waitFor"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return mcp.CallToolResult{}, err
		}

		target, err := controller.ValidateURL(in.URL)
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}

		page, err := controller.Acquire(ctx)
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}
		defer controller.Release(page)

		outcome, err := controller.Navigate(ctx, page, target, in.WaitFor)
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}

		return mcp.OKResult(mcp.TextContent(fmt.Sprintf("Successfully navigated to: %s", outcome.FinalURL))), nil
	}
}

func screenshotHandler(controller *browser.Controller) mcp.Handler {
	return func(ctx context.Context, args json.RawMessage) (mcp.CallToolResult, error) {
		in := struct {
			URL      string `json:"url"`
			FullPage *bool  `json:"fullPage"`
			Format   string `json:"format"`
			Selector string `json:"selector"`
		}{}
		if err := json.Unmarshal(args, &in); err != nil {
			return mcp.CallToolResult{}, err
		}
		fullPage := true
		if in.FullPage != nil {
			fullPage = *in.FullPage
		}
		format := in.Format
		if format == "" {
			format = "png"
		}

		page, release, err := navigateAndLoad(ctx, controller, in.URL, "")
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}
		defer release()

		data, err := controller.Screenshot(ctx, page, browser.ScreenshotOptions{
			FullPage: fullPage,
			Format:   format,
			Selector: in.Selector,
		})
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}

		mimeType := "image/" + format
		return mcp.OKResult(mcp.ImageContent(browser.EncodeBase64(data), mimeType)), nil
	}
}

func pdfHandler(controller *browser.Controller) mcp.Handler {
	return func(ctx context.Context, args json.RawMessage) (mcp.CallToolResult, error) {
		in := struct {
			URL             string `json:"url"`
			PrintBackground *bool  `json:"printBackground"`
		}{}
		if err := json.Unmarshal(args, &in); err != nil {
			return mcp.CallToolResult{}, err
		}
		printBg := true
		if in.PrintBackground != nil {
			printBg = *in.PrintBackground
		}

		page, release, err := navigateAndLoad(ctx, controller, in.URL, "")
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}
		defer release()

		data, err := controller.PrintPDF(ctx, page, browser.PDFOptions{PrintBackground: printBg})
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}

		return mcp.OKResult(
			mcp.TextContent(fmt.Sprintf("%d bytes", len(data))),
			mcp.ResourceContent(in.URL, "application/pdf", browser.EncodeBase64(data)),
		), nil
	}
}

func executeJSHandler(controller *browser.Controller, policy ScriptPolicy) mcp.Handler {
	return func(ctx context.Context, args json.RawMessage) (mcp.CallToolResult, error) {
		in := struct {
			URL    string `json:"url"`
			Script string `json:"script"`
		}{}
		if err := json.Unmarshal(args, &in); err != nil {
			return mcp.CallToolResult{}, err
		}
		if err := policy.Permit(ctx, in.URL, in.Script); err != nil {
			return mcp.ErrorResult("script rejected by policy: %v", err), nil
		}

		page, release, err := navigateAndLoad(ctx, controller, in.URL, "")
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}
		defer release()

		result, err := controller.Evaluate(ctx, page, in.Script)
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}

		encoded, err := json.Marshal(result)
		if err != nil {
			return mcp.ErrorResult("failed to encode evaluation result: %v", err), nil
		}
		return mcp.OKResult(mcp.TextContent(string(encoded))), nil
	}
}

func captureMHTMLHandler(controller *browser.Controller) mcp.Handler {
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

		data, err := controller.CaptureMHTML(ctx, page)
		if err != nil {
			return mcp.ErrorResult("%v", err), nil
		}

		digest := sha256.Sum256(data)
		return mcp.OKResult(
			mcp.TextContent(fmt.Sprintf("%d bytes, sha256:%s", len(data), hex.EncodeToString(digest[:]))),
			mcp.ResourceContent(in.URL, "multipart/related", browser.EncodeBase64(data)),
		), nil
	}
}
