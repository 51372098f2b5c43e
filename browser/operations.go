package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/shaharia-lab/reasonkit-web/observability"
)

// InvalidURLError reports a navigate target whose scheme is not permitted by
// the controller's allowlist (http/https, optionally file).
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string { return fmt.Sprintf("invalid url %q: %s", e.URL, e.Reason) }

// ValidateURL checks scheme membership in c's allowlist and returns the
// parsed form, the single seam every navigate/screenshot/pdf/etc. handler
// goes through (design note: URL validation coupling).
func (c *Controller) ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &InvalidURLError{URL: raw, Reason: err.Error()}
	}
	if u.Scheme == "" || u.Host == "" && u.Scheme != "file" {
		return nil, &InvalidURLError{URL: raw, Reason: "missing scheme or host"}
	}
	allowed := false
	for _, s := range c.cfg.AllowedSchemes() {
		if u.Scheme == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &InvalidURLError{URL: raw, Reason: fmt.Sprintf("scheme %q not permitted", u.Scheme)}
	}
	return u, nil
}

// NavigationOutcome is the result of a successful navigate().
type NavigationOutcome struct {
	FinalURL string
}

// Navigate issues a CDP navigate and waits for DOM content loaded plus an
// optional waitFor selector, bounded by the controller's navigation timeout
// (section 4.4).
func (c *Controller) Navigate(ctx context.Context, page *Page, target *url.URL, waitFor string) (NavigationOutcome, error) {
	ctx, span := observability.StartSpan(ctx, "Controller.Navigate")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.NavigationTimeout)
	defer cancel()

	if err := c.navLimiter.Wait(ctx); err != nil {
		return NavigationOutcome{}, fmt.Errorf("navigation rate limit: %w", err)
	}

	p := page.page.Context(ctx)

	if err := p.Navigate(target.String()); err != nil {
		c.recordFailure()
		return NavigationOutcome{}, fmt.Errorf("navigate: %w", err)
	}
	if err := p.WaitDOMStable(200*time.Millisecond, 0); err != nil {
		c.recordFailure()
		return NavigationOutcome{}, fmt.Errorf("wait for dom: %w", err)
	}

	if waitFor != "" {
		if _, err := p.Timeout(c.cfg.NavigationTimeout).Element(waitFor); err != nil {
			c.recordFailure()
			return NavigationOutcome{}, fmt.Errorf("waitFor %q never matched: %w", waitFor, err)
		}
	}

	info, err := p.Info()
	if err != nil {
		c.recordFailure()
		return NavigationOutcome{}, fmt.Errorf("read page info: %w", err)
	}

	c.recordSuccess()
	return NavigationOutcome{FinalURL: info.URL}, nil
}

// ScreenshotOptions controls web_screenshot.
type ScreenshotOptions struct {
	FullPage bool
	Format   string // png, jpeg, webp
	Selector string
}

// Screenshot captures page (or a selector's element) as the requested image
// format, returning raw bytes.
func (c *Controller) Screenshot(ctx context.Context, page *Page, opts ScreenshotOptions) ([]byte, error) {
	ctx, span := observability.StartSpan(ctx, "Controller.Screenshot")
	defer span.End()

	p := page.page.Context(ctx)
	format := screenshotFormat(opts.Format)

	if opts.Selector != "" {
		el, err := p.Element(opts.Selector)
		if err != nil {
			return nil, fmt.Errorf("selector %q not found: %w", opts.Selector, err)
		}
		data, err := el.Screenshot(format, 90)
		if err != nil {
			c.recordFailure()
			return nil, fmt.Errorf("element screenshot: %w", err)
		}
		c.recordSuccess()
		return data, nil
	}

	data, err := p.Screenshot(opts.FullPage, &proto.PageCaptureScreenshot{Format: format})
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	c.recordSuccess()
	return data, nil
}

func screenshotFormat(requested string) proto.PageCaptureScreenshotFormat {
	switch requested {
	case "jpeg":
		return proto.PageCaptureScreenshotFormatJpeg
	case "webp":
		return proto.PageCaptureScreenshotFormatWebp
	default:
		return proto.PageCaptureScreenshotFormatPng
	}
}

// PDFOptions controls web_pdf.
type PDFOptions struct {
	PrintBackground bool
}

// PrintPDF renders page to a PDF byte stream.
func (c *Controller) PrintPDF(ctx context.Context, page *Page, opts PDFOptions) ([]byte, error) {
	ctx, span := observability.StartSpan(ctx, "Controller.PrintPDF")
	defer span.End()

	p := page.page.Context(ctx)
	reader, err := p.PDF(&proto.PagePrintToPDF{PrintBackground: opts.PrintBackground})
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	buf := make([]byte, 0, 64*1024)
	chunk := make([]byte, 32*1024)
	for {
		n, rerr := reader.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if rerr != nil {
			break
		}
	}
	c.recordSuccess()
	return buf, nil
}

// CaptureMHTML returns the page's MHTML snapshot.
func (c *Controller) CaptureMHTML(ctx context.Context, page *Page) ([]byte, error) {
	ctx, span := observability.StartSpan(ctx, "Controller.CaptureMHTML")
	defer span.End()

	result, err := proto.PageCaptureSnapshot{Format: proto.PageCaptureSnapshotFormatMhtml}.Call(page.page.Context(ctx))
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("capture mhtml: %w", err)
	}
	c.recordSuccess()
	return []byte(result.Data), nil
}

// Evaluate runs script in the page and returns its JSON-decodable result.
// A script returning undefined decodes to a nil interface (JSON null).
func (c *Controller) Evaluate(ctx context.Context, page *Page, script string) (interface{}, error) {
	ctx, span := observability.StartSpan(ctx, "Controller.Evaluate")
	defer span.End()

	res, err := page.page.Context(ctx).Eval(script)
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	c.recordSuccess()

	if res == nil || res.Value.Nil() {
		return nil, nil
	}
	var out interface{}
	if err := res.Value.Unmarshal(&out); err != nil {
		return nil, fmt.Errorf("decode evaluation result: %w", err)
	}
	return out, nil
}

// EncodeBase64 is a small shared helper for tool handlers wrapping raw bytes
// (screenshots, PDFs) into the base64 wire representation.
func EncodeBase64(data []byte) string { return base64.StdEncoding.EncodeToString(data) }

// OuterHTML returns the page's current serialized document, the input the
// extraction pipeline parses.
func (c *Controller) OuterHTML(ctx context.Context, page *Page) (string, error) {
	ctx, span := observability.StartSpan(ctx, "Controller.OuterHTML")
	defer span.End()

	html, err := page.page.Context(ctx).HTML()
	if err != nil {
		c.recordFailure()
		return "", fmt.Errorf("read document: %w", err)
	}
	c.recordSuccess()
	return html, nil
}

// PageURL returns the page's current URL, used as the extraction pipeline's
// base URI for absolutizing links and metadata.
func (c *Controller) PageURL(ctx context.Context, page *Page) (*url.URL, error) {
	info, err := page.page.Context(ctx).Info()
	if err != nil {
		return nil, fmt.Errorf("read page info: %w", err)
	}
	return url.Parse(info.URL)
}
