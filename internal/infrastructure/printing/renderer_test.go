package printing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEngine struct{ err error }

func (e *failingEngine) Convert(context.Context, string, printing.Layout) ([]byte, error) {
	return nil, e.err
}
func (e *failingEngine) ContentType() string { return "application/pdf" }
func (e *failingEngine) Close() error        { return nil }

type layoutRecorder struct {
	HTMLEngine
	layouts []printing.Layout
}

func (e *layoutRecorder) Convert(ctx context.Context, html string, layout printing.Layout) ([]byte, error) {
	e.layouts = append(e.layouts, layout)
	return e.HTMLEngine.Convert(ctx, html, layout)
}

type recordingObserver struct {
	mu    sync.Mutex
	kinds []printing.Kind
	errs  []error
}

func (o *recordingObserver) ObserveRender(_ context.Context, kind printing.Kind, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kinds = append(o.kinds, kind)
	o.errs = append(o.errs, err)
}

func TestDocumentRenderer_Render(t *testing.T) {
	engine := &layoutRecorder{}
	renderer := NewDocumentRenderer(newTestTemplateEngine(t), engine, nil)
	observer := &recordingObserver{}
	renderer.SetObserver(observer)

	data, err := renderer.Render(context.Background(), &printing.Request{Kind: printing.KindPaymentNotice, Snapshot: sampleInvoiceSnapshot()})
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>支払通知書</title>")
	assert.Equal(t, "text/html; charset=utf-8", renderer.ContentType())

	require.Len(t, engine.layouts, 1)
	assert.Equal(t, printing.OrientationLandscape, engine.layouts[0].Orientation)
	assert.Equal(t, []printing.Kind{printing.KindPaymentNotice}, observer.kinds)
	assert.Nil(t, observer.errs[0])
}

func TestDocumentRenderer_EngineFailureIsRetryable(t *testing.T) {
	renderer := NewDocumentRenderer(newTestTemplateEngine(t),
		&failingEngine{err: NewRenderError(ErrCodeRenderTimeout, "timed out", context.DeadlineExceeded)}, nil)
	observer := &recordingObserver{}
	renderer.SetObserver(observer)

	_, err := renderer.Render(context.Background(), &printing.Request{Kind: printing.KindOrder, Snapshot: sampleOrderSnapshot()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrRenderFailure))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.True(t, domainErr.Retryable)
	require.Len(t, observer.errs, 1)
	assert.Error(t, observer.errs[0])
}

func TestDocumentRenderer_InvalidRequest(t *testing.T) {
	renderer := NewDocumentRenderer(newTestTemplateEngine(t), NewHTMLEngine(), nil)
	observer := &recordingObserver{}
	renderer.SetObserver(observer)

	_, err := renderer.Render(context.Background(), &printing.Request{Kind: printing.KindOrder, Snapshot: sampleInvoiceSnapshot()})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	assert.False(t, errors.Is(err, shared.ErrRenderFailure))
	assert.Empty(t, observer.kinds)
}

func TestHTMLEngine_Convert(t *testing.T) {
	engine := NewHTMLEngine()
	layout := printing.LayoutFor(printing.KindOrder)

	data, err := engine.Convert(context.Background(), "<p>x</p>", layout)
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", string(data))

	_, err = engine.Convert(context.Background(), "", layout)
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Convert(ctx, "<p>x</p>", layout)
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeRenderTimeout, renderErr.Code)
	assert.NoError(t, engine.Close())
}

func TestRenderError(t *testing.T) {
	cause := errors.New("boom")
	err := NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", cause)
	assert.Equal(t, "chromedp execution failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "empty", NewRenderError(ErrCodeInvalidHTML, "empty", nil).Error())
}
