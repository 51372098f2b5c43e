// Command reasonkit-web is the CLI front-end for the MCP browser sidecar
// (section 6). It wires configuration, logging, the browser controller, and
// the tool registry, then either runs the JSON-RPC server loop on
// stdin/stdout (serve, the default) or executes a one-shot diagnostic
// sub-command.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaharia-lab/reasonkit-web/browser"
	"github.com/shaharia-lab/reasonkit-web/extract"
	"github.com/shaharia-lab/reasonkit-web/internal/config"
	"github.com/shaharia-lab/reasonkit-web/internal/logging"
	"github.com/shaharia-lab/reasonkit-web/mcp"
	"github.com/shaharia-lab/reasonkit-web/tools"
)

// newFlagSet builds a flag.FlagSet that stays silent on parse errors; the
// callers print their own usage line and return exitUsage.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// version is the server's advertised semver (section 6: ServerInfo.version).
const version = "0.1.0"

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	cfg := config.FromEnv()
	logger := logging.New(cfg.LogBackend, cfg.LogLevel)

	switch cmd {
	case "serve":
		return runServe(cfg, logger)
	case "tools":
		return runTools()
	case "test":
		return runTest(args, cfg, logger)
	case "extract":
		return runExtract(args, cfg, logger)
	case "screenshot":
		return runScreenshot(args, cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		return exitUsage
	}
}

func runServe(cfg config.Config, logger logging.Logger) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	controller := browser.New(cfg.Browser, logger)
	registry := mcp.NewRegistry()
	if err := tools.Register(registry, controller); err != nil {
		logger.WithErr(err).Error("failed to register tools")
		return exitRuntime
	}

	server := mcp.NewServer(os.Stdin, os.Stdout, mcp.ServerInfo{Name: "reasonkit-web", Version: version}, registry, logger,
		mcp.WithController(controller))

	if err := server.Run(ctx); err != nil && err != context.Canceled {
		logger.WithErr(err).Error("server exited with error")
		return exitRuntime
	}
	return exitOK
}

func runTools() int {
	registry := mcp.NewRegistry()
	// A throwaway controller: the "tools" command only dumps descriptors, it
	// never acquires a page.
	if err := tools.Register(registry, browser.New(browser.Config{}, logging.NewNullLogger())); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	encoded, err := json.MarshalIndent(registry.List(), "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	fmt.Println(string(encoded))
	return exitOK
}

func runTest(args []string, cfg config.Config, logger logging.Logger) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: reasonkit-web test <url>")
		return exitUsage
	}
	controller := browser.New(cfg.Browser, logger)
	defer controller.Shutdown(context.Background())

	ctx := context.Background()
	target, err := controller.ValidateURL(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	page, err := controller.Acquire(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	defer controller.Release(page)

	outcome, err := controller.Navigate(ctx, page, target, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	fmt.Printf("ok: %s\n", outcome.FinalURL)
	return exitOK
}

func runExtract(args []string, cfg config.Config, logger logging.Logger) int {
	fs := newFlagSet("extract")
	format := fs.String("format", "markdown", "text|markdown|html")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, "usage: reasonkit-web extract <url> [--format text|markdown|html]")
		return exitUsage
	}
	positional := fs.Args()
	if len(positional) < 1 {
		fmt.Fprintln(os.Stderr, "usage: reasonkit-web extract <url> [--format text|markdown|html]")
		return exitUsage
	}

	controller := browser.New(cfg.Browser, logger)
	defer controller.Shutdown(context.Background())
	ctx := context.Background()

	target, err := controller.ValidateURL(positional[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	page, err := controller.Acquire(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	defer controller.Release(page)

	if _, err := controller.Navigate(ctx, page, target, ""); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	raw, err := controller.OuterHTML(ctx, page)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	base, _ := controller.PageURL(ctx, page)

	content, err := extract.ExtractContent(raw, base, "", extract.Format(*format))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}

	switch extract.Format(*format) {
	case extract.FormatText:
		fmt.Println(content.Text)
	case extract.FormatHTML:
		fmt.Println(content.HTML)
	default:
		fmt.Println(content.Markdown)
	}
	return exitOK
}

func runScreenshot(args []string, cfg config.Config, logger logging.Logger) int {
	fs := newFlagSet("screenshot")
	fullPage := fs.Bool("full-page", true, "capture the full scrollable page")
	output := fs.String("output", "screenshot.png", "output file path")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, "usage: reasonkit-web screenshot <url> [--full-page] [--output path]")
		return exitUsage
	}
	positional := fs.Args()
	if len(positional) < 1 {
		fmt.Fprintln(os.Stderr, "usage: reasonkit-web screenshot <url> [--full-page] [--output path]")
		return exitUsage
	}

	controller := browser.New(cfg.Browser, logger)
	defer controller.Shutdown(context.Background())
	ctx := context.Background()

	target, err := controller.ValidateURL(positional[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	page, err := controller.Acquire(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	defer controller.Release(page)

	if _, err := controller.Navigate(ctx, page, target, ""); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}

	data, err := controller.Screenshot(ctx, page, browser.ScreenshotOptions{FullPage: *fullPage, Format: "png"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	fmt.Printf("wrote %s (%d bytes)\n", *output, len(data))
	return exitOK
}
