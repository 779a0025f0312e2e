package printing

import (
	"context"
	"errors"
	"time"

	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/edi/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PDFEngine converts a rendered HTML page into the final document bytes
type PDFEngine interface {
	// Convert lays html out on the page setup of layout
	Convert(ctx context.Context, html string, layout printing.Layout) ([]byte, error)
	// ContentType is the MIME type Convert produces
	ContentType() string
	// Close releases any resources held by the engine
	Close() error
}

// RenderError represents an error during template execution or PDF conversion
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
	ErrCodeTemplate      = "TEMPLATE_ERROR"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// RenderObserver is notified after every render attempt
type RenderObserver interface {
	ObserveRender(ctx context.Context, kind printing.Kind, duration time.Duration, err error)
}

// DocumentRenderer implements printing.Renderer with the embedded templates
// and a PDFEngine. Every failure is reported as RENDER_FAILURE.
type DocumentRenderer struct {
	templates *TemplateEngine
	engine    PDFEngine
	observer  RenderObserver
	logger    *zap.Logger
}

// NewDocumentRenderer creates a DocumentRenderer
func NewDocumentRenderer(templates *TemplateEngine, engine PDFEngine, logger *zap.Logger) *DocumentRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentRenderer{templates: templates, engine: engine, logger: logger}
}

// SetObserver registers an observer for render timings
func (r *DocumentRenderer) SetObserver(observer RenderObserver) {
	r.observer = observer
}

// Render renders req into document bytes
func (r *DocumentRenderer) Render(ctx context.Context, req *printing.Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartSpan(ctx, "printing.Render",
		telemetry.AttrDocumentKind.String(req.Kind.String()))
	start := time.Now()
	data, err := r.render(ctx, req)
	telemetry.EndSpan(span, err)
	if r.observer != nil {
		r.observer.ObserveRender(ctx, req.Kind, time.Since(start), err)
	}
	if err != nil {
		r.logger.Error("document rendering failed", zap.String("kind", req.Kind.String()), zap.Error(err))
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, shared.ErrRenderFailure.Wrap(err, "failed to render "+req.Kind.Title())
	}
	r.logger.Debug("document rendered",
		zap.String("kind", req.Kind.String()),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return data, nil
}

func (r *DocumentRenderer) render(ctx context.Context, req *printing.Request) ([]byte, error) {
	html, err := r.templates.RenderDocument(req)
	if err != nil {
		return nil, err
	}
	return r.engine.Convert(ctx, html, printing.LayoutFor(req.Kind))
}

// ContentType returns the MIME type of the engine output
func (r *DocumentRenderer) ContentType() string {
	return r.engine.ContentType()
}

// Close closes the underlying engine
func (r *DocumentRenderer) Close() error {
	return r.engine.Close()
}

// HTMLEngine returns the rendered HTML unchanged. It needs no browser and is
// used in development and tests.
type HTMLEngine struct{}

// NewHTMLEngine creates an HTMLEngine
func NewHTMLEngine() *HTMLEngine {
	return &HTMLEngine{}
}

// Convert returns html as bytes
func (e *HTMLEngine) Convert(ctx context.Context, html string, _ printing.Layout) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "rendering cancelled", err)
	}
	if html == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	return []byte(html), nil
}

// ContentType implements PDFEngine
func (e *HTMLEngine) ContentType() string {
	return "text/html; charset=utf-8"
}

// Close implements PDFEngine
func (e *HTMLEngine) Close() error {
	return nil
}

var (
	_ printing.Renderer = (*DocumentRenderer)(nil)
	_ PDFEngine         = (*HTMLEngine)(nil)
)
