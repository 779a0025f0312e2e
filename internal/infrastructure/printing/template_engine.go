package printing

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/edi/backend/internal/domain/printing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

// templateFiles maps each document kind to its content template. Every kind
// is parsed together with the shared layout and partials.
var templateFiles = map[printing.Kind]string{
	printing.KindOrder:         "templates/order.html",
	printing.KindAcceptance:    "templates/acceptance.html",
	printing.KindInvoice:       "templates/invoice.html",
	printing.KindPaymentNotice: "templates/payment_notice.html",
}

var sharedTemplateFiles = []string{"templates/layout.html", "templates/partials.html"}

// TemplateEngine renders document snapshots to HTML.
// Output depends only on the request, so identical snapshots give identical HTML.
type TemplateEngine struct {
	source    fs.FS
	printer   *message.Printer
	templates map[printing.Kind]*template.Template
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithTemplateFS replaces the embedded templates. The file system must
// provide the same file names.
func WithTemplateFS(source fs.FS) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.source = source
	}
}

// NewTemplateEngine parses the document templates once
func NewTemplateEngine(opts ...TemplateEngineOption) (*TemplateEngine, error) {
	e := &TemplateEngine{
		source:    templateFS,
		printer:   message.NewPrinter(language.Japanese),
		templates: make(map[printing.Kind]*template.Template, len(templateFiles)),
	}
	for _, opt := range opts {
		opt(e)
	}

	funcs := e.funcMap()
	for kind, file := range templateFiles {
		patterns := append(append([]string{}, sharedTemplateFiles...), file)
		tmpl, err := template.New(kind.String()).Funcs(funcs).ParseFS(e.source, patterns...)
		if err != nil {
			return nil, NewRenderError(ErrCodeTemplate, "failed to parse "+file, err)
		}
		e.templates[kind] = tmpl
	}
	return e, nil
}

// documentView is the data every template executes against
type documentView struct {
	Kind      printing.Kind
	Title     string
	Watermark string
	Layout    printing.Layout
	Order     *printing.OrderSnapshot
	Invoice   *printing.InvoiceSnapshot
}

// Landscape reports whether the page is printed sideways
func (v documentView) Landscape() bool {
	return v.Layout.Orientation == printing.OrientationLandscape
}

// RenderDocument executes the template of req.Kind
func (e *TemplateEngine) RenderDocument(req *printing.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	tmpl, ok := e.templates[req.Kind]
	if !ok {
		return "", NewRenderError(ErrCodeTemplate, "no template for "+req.Kind.String(), nil)
	}

	view := documentView{
		Kind:      req.Kind,
		Title:     req.Kind.Title(),
		Watermark: req.Watermark,
		Layout:    printing.LayoutFor(req.Kind),
	}
	switch snap := req.Snapshot.(type) {
	case *printing.OrderSnapshot:
		view.Order = snap
	case *printing.InvoiceSnapshot:
		view.Invoice = snap
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", view); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute "+req.Kind.String()+" template", err)
	}
	return buf.String(), nil
}

func (e *TemplateEngine) funcMap() template.FuncMap {
	return template.FuncMap{
		"yen":       e.yen,
		"number":    e.number,
		"date":      formatDate,
		"dateP":     formatDatePtr,
		"month":     formatMonth,
		"hours":     formatHours,
		"lines":     splitLines,
		"inc":       func(i int) int { return i + 1 },
		"orDefault": orDefault,
	}
}

// yen formats an amount as "￥1,234"
func (e *TemplateEngine) yen(amount int64) string {
	if amount < 0 {
		return "▲￥" + e.number(-amount)
	}
	return "￥" + e.number(amount)
}

// number groups digits the Japanese way, e.g. 1234567 -> "1,234,567"
func (e *TemplateEngine) number(n int64) string {
	return e.printer.Sprintf("%d", n)
}

// formatDate formats t as "2026年02月01日"; the zero time prints nothing
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006年01月02日")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

// formatMonth formats t as "2026年02月度"
func formatMonth(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006年01月度")
}

// formatHours prints hours without trailing zeros: 140.00 -> "140", 0.50 -> "0.5"
func formatHours(d decimal.Decimal) string {
	return d.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
