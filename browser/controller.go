// Package browser owns the headless browser process (C4): launching it,
// handing out short-lived pages, and running the timeboxed CDP operations
// tool handlers need (navigate, screenshot, PDF, MHTML, evaluate).
package browser

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/time/rate"

	"github.com/shaharia-lab/reasonkit-web/internal/logging"
	"github.com/shaharia-lab/reasonkit-web/observability"
)

// Config controls browser launch and resource policy (section 4.4).
type Config struct {
	// BinaryPath, if set, takes precedence over CHROME_PATH and the standard
	// search locations.
	BinaryPath string
	// AllowFileScheme permits navigate() to accept file:// URLs. The spec
	// leaves this as an implementer-configurable boolean (section 9, Open
	// Questions); it defaults to false.
	AllowFileScheme bool
	// LaunchTimeout bounds resolving the binary, launching headless, and
	// establishing the CDP channel (default 30s).
	LaunchTimeout time.Duration
	// NavigationTimeout bounds a single navigate() call (default 30s).
	NavigationTimeout time.Duration
	// MaxConsecutiveFailures resets the browser process after this many
	// back-to-back operation failures (default 3).
	MaxConsecutiveFailures int
	// MaxNavigationsPerSecond bounds how often Navigate may issue a CDP
	// navigate against the shared browser process (default 5). Not named in
	// section 4.4 directly, but consistent with its resource policy: the
	// browser process is shared and reused, so an unbounded client can
	// otherwise starve CDP target creation for every other in-flight call.
	MaxNavigationsPerSecond float64
}

func (c Config) withDefaults() Config {
	if c.LaunchTimeout <= 0 {
		c.LaunchTimeout = 30 * time.Second
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 30 * time.Second
	}
	if c.MaxConsecutiveFailures <= 0 {
		c.MaxConsecutiveFailures = 3
	}
	if c.MaxNavigationsPerSecond <= 0 {
		c.MaxNavigationsPerSecond = 5
	}
	return c
}

// AllowedSchemes returns the navigate() scheme allowlist implied by config.
func (c Config) AllowedSchemes() []string {
	if c.AllowFileScheme {
		return []string{"http", "https", "file"}
	}
	return []string{"http", "https"}
}

// LaunchError is a fatal failure to resolve/launch/connect to the browser
// (section 4.4): it invalidates the Controller and the next Acquire retries
// a fresh launch.
type LaunchError struct {
	Stage string
	Err   error
}

func (e *LaunchError) Error() string { return fmt.Sprintf("browser launch failed at %s: %v", e.Stage, e.Err) }
func (e *LaunchError) Unwrap() error { return e.Err }

// Controller owns the browser process lifetime. The process is shared and
// reused across tool calls; pages are not pooled. Launch/terminate are
// serialized behind mu; Target.createTarget (page creation) is safe to call
// concurrently once a browser is established.
type Controller struct {
	cfg    Config
	logger logging.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	failures int

	navLimiter *rate.Limiter
}

// New creates a Controller. The browser process is launched lazily on first
// Acquire, not eagerly here.
func New(cfg Config, logger logging.Logger) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		cfg:        cfg,
		logger:     logger,
		navLimiter: rate.NewLimiter(rate.Limit(cfg.MaxNavigationsPerSecond), 1),
	}
}

// ensureBrowser launches the browser if none is live, or if a prior
// unrecoverable CDP failure invalidated the existing one.
func (c *Controller) ensureBrowser(ctx context.Context) (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil {
		return c.browser, nil
	}

	launchCtx, cancel := context.WithTimeout(ctx, c.cfg.LaunchTimeout)
	defer cancel()

	bin, err := c.resolveBinary()
	if err != nil {
		return nil, &LaunchError{Stage: "resolve-binary", Err: err}
	}

	l := launcher.New().Headless(true).Set("no-sandbox").Set("disable-blink-features", "AutomationControlled")
	if bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Context(launchCtx).Launch()
	if err != nil {
		return nil, &LaunchError{Stage: "launch", Err: err}
	}

	b := rod.New().Context(launchCtx).ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, &LaunchError{Stage: "connect", Err: err}
	}

	c.browser = b.Context(context.Background())
	c.launcher = l
	c.failures = 0
	return c.browser, nil
}

// resolveBinary implements the launch algorithm's step (1): explicit config,
// then CHROME_PATH, then standard per-platform locations, falling back to
// go-rod's own download-or-detect behavior when none exist on disk.
func (c *Controller) resolveBinary() (string, error) {
	if c.cfg.BinaryPath != "" {
		if _, err := os.Stat(c.cfg.BinaryPath); err == nil {
			return c.cfg.BinaryPath, nil
		}
		return "", fmt.Errorf("configured browser binary not found: %s", c.cfg.BinaryPath)
	}
	if env := os.Getenv("CHROME_PATH"); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
		return "", fmt.Errorf("CHROME_PATH not found: %s", env)
	}
	for _, path := range standardBrowserPaths() {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil // let the launcher auto-detect/download.
}

func standardBrowserPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		}
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
		}
	}
}

// recordFailure bumps the consecutive-failure counter and resets the browser
// process once MaxConsecutiveFailures is reached (section 4.4 resource
// policy).
func (c *Controller) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if c.failures >= c.cfg.MaxConsecutiveFailures {
		c.resetLocked()
	}
}

func (c *Controller) recordSuccess() {
	c.mu.Lock()
	c.failures = 0
	c.mu.Unlock()
}

func (c *Controller) resetLocked() {
	if c.browser != nil {
		_ = c.browser.Close()
	}
	c.browser = nil
	c.failures = 0
}

// invalidate forces the next Acquire to relaunch, used when a CDP channel
// loss is detected mid-operation.
func (c *Controller) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Shutdown terminates the browser process, releasing every page first. It is
// called on session close (any -> Closed) and must be idempotent.
func (c *Controller) Shutdown(ctx context.Context) {
	_, span := observability.StartSpan(ctx, "Controller.Shutdown")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser == nil {
		return
	}
	if err := c.browser.Close(); err != nil {
		c.logger.WithErr(err).Warn("error closing browser")
	}
	c.browser = nil
}

// Page is a scope-owned reference to one browser target (section 3's Page
// Handle). It is created fresh for every tool call and must be released via
// Release before the call returns, on every exit path.
type Page struct {
	page      *rod.Page
	targetID  proto.TargetTargetID
	createdAt time.Time
}

// Acquire returns a fresh page bound to the live browser, launching one first
// if none exists or the prior instance was invalidated.
func (c *Controller) Acquire(ctx context.Context) (*Page, error) {
	ctx, span := observability.StartSpan(ctx, "Controller.Acquire")
	defer span.End()

	b, err := c.ensureBrowser(ctx)
	if err != nil {
		return nil, err
	}

	p, err := b.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := applyStealth(p); err != nil {
		c.logger.WithErr(err).Warn("failed to apply stealth adjustments")
	}

	return &Page{page: p, targetID: p.TargetID, createdAt: time.Now()}, nil
}

// Release closes the CDP target. It must run on every exit path (success,
// handler error, panic, or cancellation) so no page outlives its call.
func (c *Controller) Release(page *Page) {
	if page == nil || page.page == nil {
		return
	}
	if err := page.page.Close(); err != nil {
		c.logger.WithErr(err).Debug("error closing page")
	}
}
