package exportpdf

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/goliatone/go-impact-export/export"
	"github.com/goliatone/go-impact-export/layout"
)

const pointsPerInch = 72.0

// Scale bounds accepted by Chromium's print command.
const (
	minPrintScale = 0.1
	maxPrintScale = 2.0
)

// Browser binaries probed on PATH when BrowserPath is empty.
var chromiumCandidates = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"headless-shell",
	"chrome",
}

// PDFOptions tune Chromium's print output.
type PDFOptions struct {
	Scale           float64
	PrintBackground *bool
	// BaseURL is injected as <base href> so relative assets resolve.
	BaseURL string
	// BlockExternalAssets blocks http(s) requests while printing.
	BlockExternalAssets bool
}

func (o PDFOptions) withDefaults() PDFOptions {
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.PrintBackground == nil {
		o.PrintBackground = boolPtr(true)
	}
	return o
}

// ChromiumEngine prints composed documents through a headless Chromium
// process. The browser starts on first use and is shared by every render
// until Close; a later render starts a fresh one.
type ChromiumEngine struct {
	BrowserPath string
	Headless    bool
	Timeout     time.Duration
	Args        []string

	PDF PDFOptions

	mu      sync.Mutex
	browser context.Context
	stop    func()
}

// Available reports a degraded error when no Chromium binary can be found.
func (e *ChromiumEngine) Available() error {
	if e == nil {
		return export.NewError(export.KindDegraded, "chromium engine is nil", nil)
	}
	if _, err := e.findBrowser(); err != nil {
		return unavailable(err)
	}
	return nil
}

func unavailable(err error) error {
	return export.NewError(export.KindDegraded, "chromium not available", err)
}

func (e *ChromiumEngine) findBrowser() (string, error) {
	if path := strings.TrimSpace(e.BrowserPath); path != "" {
		return exec.LookPath(path)
	}
	for _, name := range chromiumCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("none of %s on PATH: %w", strings.Join(chromiumCandidates, ", "), exec.ErrNotFound)
}

// Render prints req.HTML to PDF in a new tab of the shared browser.
func (e *ChromiumEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if e == nil {
		return nil, export.NewError(export.KindInternal, "chromium engine is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	browser, err := e.startBrowser()
	if err != nil {
		return nil, err
	}

	tab, closeTab := chromedp.NewContext(browser)
	defer closeTab()
	// Tabs derive from the browser context, so the caller's cancellation is
	// bridged in explicitly.
	stopBridge := context.AfterFunc(ctx, closeTab)
	defer stopBridge()

	runCtx := tab
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(tab, e.Timeout)
		defer cancel()
	}

	var pdf []byte
	actions, err := e.printActions(req, &pdf)
	if err != nil {
		return nil, err
	}
	if err := chromedp.Run(runCtx, actions...); err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound):
			return nil, unavailable(err)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		}
		return nil, export.NewError(export.KindInternal, "chromium pdf render failed", err)
	}
	return pdf, nil
}

func (e *ChromiumEngine) printActions(req RenderRequest, out *[]byte) ([]chromedp.Action, error) {
	opts := e.PDF.withDefaults()
	params, err := buildPrintToPDFParams(req.Geometry, opts)
	if err != nil {
		return nil, err
	}
	document := string(injectBaseURL(req.HTML, opts.BaseURL))

	var actions []chromedp.Action
	if opts.BlockExternalAssets {
		actions = append(actions,
			network.Enable(),
			network.SetBlockedURLs([]string{"http://*", "https://*"}),
		)
	}
	return append(actions,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			*out, _, err = params.Do(ctx)
			return err
		}),
	), nil
}

func (e *ChromiumEngine) startBrowser() (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser != nil {
		return e.browser, nil
	}

	path, err := e.findBrowser()
	if err != nil {
		return nil, unavailable(err)
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.ExecPath(path), chromedp.Flag("headless", e.Headless))
	opts = append(opts, allocatorFlags(e.Args)...)

	alloc, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browser, cancelBrowser := chromedp.NewContext(alloc)
	e.browser = browser
	e.stop = func() {
		cancelBrowser()
		cancelAlloc()
	}
	return browser, nil
}

// Close shuts the browser down if it was started.
func (e *ChromiumEngine) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop != nil {
		e.stop()
	}
	e.browser, e.stop = nil, nil
	return nil
}

// buildPrintToPDFParams sizes the paper from the page geometry. Margins come
// from the document's CSS @page rule, so the print margins stay at zero.
func buildPrintToPDFParams(g layout.Geometry, opts PDFOptions) (*page.PrintToPDFParams, error) {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < minPrintScale || scale > maxPrintScale {
		return nil, export.NewError(export.KindValidation,
			fmt.Sprintf("pdf scale must be between %.1f and %.1f", minPrintScale, maxPrintScale), nil)
	}

	g = g.WithDefaults()
	params := page.PrintToPDF().
		WithScale(scale).
		WithPaperWidth(g.PageWidth / pointsPerInch).
		WithPaperHeight(g.PageHeight / pointsPerInch).
		WithMarginTop(0).
		WithMarginRight(0).
		WithMarginBottom(0).
		WithMarginLeft(0).
		WithPreferCSSPageSize(true)
	if opts.PrintBackground != nil {
		params = params.WithPrintBackground(*opts.PrintBackground)
	}
	return params, nil
}

func millimetres(points float64) string {
	return strconv.FormatFloat(points/pointsPerInch*25.4, 'f', 2, 64) + "mm"
}

// injectBaseURL adds a <base> tag right after <head>, or at the front of the
// document when there is no head. Documents that already declare one are
// left alone.
func injectBaseURL(doc []byte, baseURL string) []byte {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return doc
	}
	lower := strings.ToLower(string(doc))
	if strings.Contains(lower, "<base") {
		return doc
	}

	tag := `<base href="` + html.EscapeString(baseURL) + `">`
	at := 0
	if head := strings.Index(lower, "<head"); head >= 0 {
		if end := strings.IndexByte(lower[head:], '>'); end >= 0 {
			at = head + end + 1
		}
	}
	out := make([]byte, 0, len(doc)+len(tag))
	out = append(out, doc[:at]...)
	out = append(out, tag...)
	return append(out, doc[at:]...)
}

// allocatorFlags turns "--name=value" and "--name" strings into allocator
// flags.
func allocatorFlags(args []string) []chromedp.ExecAllocatorOption {
	var flags []chromedp.ExecAllocatorOption
	for _, arg := range args {
		arg = strings.TrimPrefix(strings.TrimSpace(arg), "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			flags = append(flags, chromedp.Flag(name, value))
		} else {
			flags = append(flags, chromedp.Flag(arg, true))
		}
	}
	return flags
}

func boolPtr(value bool) *bool {
	return &value
}
