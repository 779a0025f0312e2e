package printing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/edi/backend/internal/domain/printing"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

// ChromedpConfig contains configuration for the chromedp engine
type ChromedpConfig struct {
	// Timeout bounds one conversion
	Timeout time.Duration
	// RemoteURL is the DevTools websocket of a running Chrome. If empty,
	// chromedp launches a local headless browser.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	Logger    *zap.Logger
}

// ChromedpEngine prints HTML to PDF with headless Chrome
type ChromedpEngine struct {
	config      ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpEngine creates the browser allocator. The browser itself is
// started lazily by the first conversion.
func NewChromedpEngine(config *ChromedpConfig) (*ChromedpEngine, error) {
	cfg := ChromedpConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChromeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &ChromedpEngine{config: cfg, logger: logger}
	if cfg.RemoteURL != "" {
		e.allocCtx, e.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return e, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	e.allocCtx, e.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return e, nil
}

// Convert prints html on the page setup of layout
func (e *ChromedpEngine) Convert(ctx context.Context, html string, layout printing.Layout) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(e.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			e.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()
	// chromedp contexts do not inherit the caller's deadline
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	params := printParamsFor(layout)
	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := params.Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", e.config.Timeout), err)
		}
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}
	return stabilizePDF(pdf), nil
}

// printParamsFor builds the PrintToPDF call for layout. Chrome works in inches.
func printParamsFor(layout printing.Layout) *page.PrintToPDFParams {
	width, height := layout.PaperSize.Dimensions()
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPreferCSSPageSize(false).
		WithLandscape(layout.Orientation == printing.OrientationLandscape).
		WithPaperWidth(mmToInches(float64(width))).
		WithPaperHeight(mmToInches(float64(height))).
		WithMarginTop(mmToInches(float64(layout.Margins.Top))).
		WithMarginRight(mmToInches(float64(layout.Margins.Right))).
		WithMarginBottom(mmToInches(float64(layout.Margins.Bottom))).
		WithMarginLeft(mmToInches(float64(layout.Margins.Left)))
}

// pdfDates matches the Info dictionary timestamps Chrome writes,
// e.g. /CreationDate (D:20260201093015+00'00')
var pdfDates = regexp.MustCompile(`/(CreationDate|ModDate) ?\(D:(\d{14})`)

// stabilizePDF zeroes the creation and modification timestamps so equal
// HTML prints to equal bytes. Replacements keep the byte length, which
// leaves the cross-reference offsets valid.
func stabilizePDF(pdf []byte) []byte {
	return pdfDates.ReplaceAllFunc(pdf, func(m []byte) []byte {
		out := make([]byte, len(m))
		copy(out, m)
		for i := len(out) - 14; i < len(out); i++ {
			out[i] = '0'
		}
		return out
	})
}

// ContentType implements PDFEngine
func (e *ChromedpEngine) ContentType() string {
	return "application/pdf"
}

// Close shuts the browser down
func (e *ChromedpEngine) Close() error {
	if e.allocCancel != nil {
		e.allocCancel()
	}
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ PDFEngine = (*ChromedpEngine)(nil)
