package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/edi/backend/internal/domain/invoice"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when BusinessMetrics is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// BusinessMetrics counts order and invoice lifecycle events and times
// document rendering. It subscribes to the event bus and observes the
// document renderer.
type BusinessMetrics struct {
	logger *zap.Logger

	orderEvents    *Counter
	invoiceEvents  *Counter
	invoicedAmount *Counter
	renderDuration *Histogram
	renderFailures *Counter
}

// NewBusinessMetrics creates the EDI instruments on meter.
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{logger: logger}
	var err error
	if bm.orderEvents, err = NewCounter(meter, "edi_order_events_total",
		"Order lifecycle transitions", "{event}"); err != nil {
		return nil, err
	}
	if bm.invoiceEvents, err = NewCounter(meter, "edi_invoice_events_total",
		"Invoice lifecycle transitions", "{event}"); err != nil {
		return nil, err
	}
	if bm.invoicedAmount, err = NewCounter(meter, "edi_invoiced_amount_yen_total",
		"Total amount of issued invoices", "JPY"); err != nil {
		return nil, err
	}
	if bm.renderDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "edi_document_render_duration_seconds",
		Description: "Document rendering latency",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.renderFailures, err = NewCounter(meter, "edi_document_render_failures_total",
		"Failed document renders", "{render}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// EventTypes implements shared.EventHandler.
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		order.EventTypeOrderCreated,
		order.EventTypeOrderPublished,
		order.EventTypeOrderAcknowledged,
		order.EventTypeOrderApproved,
		invoice.EventTypeInvoiceCreated,
		invoice.EventTypeInvoiceStatusChanged,
	}
}

// Handle implements shared.EventHandler.
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *invoice.InvoiceStatusChangedEvent:
		bm.invoiceEvents.Inc(ctx, AttrEventType.String(e.EventType()), AttrStatus.String(string(e.ToStatus)))
		if e.ToStatus == invoice.StatusIssued {
			bm.invoicedAmount.Add(ctx, e.TotalAmount)
		}
	case *invoice.InvoiceCreatedEvent:
		bm.invoiceEvents.Inc(ctx, AttrEventType.String(e.EventType()), AttrStatus.String(string(invoice.StatusDraft)))
	default:
		if event.AggregateType() == order.AggregateTypeOrder {
			bm.orderEvents.Inc(ctx, AttrEventType.String(event.EventType()))
			return nil
		}
		bm.logger.Debug("ignoring event", zap.String("event_type", event.EventType()))
	}
	return nil
}

// ObserveRender records one render attempt.
func (bm *BusinessMetrics) ObserveRender(ctx context.Context, kind printing.Kind, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
		bm.renderFailures.Inc(ctx, AttrDocumentKind.String(string(kind)))
	}
	bm.renderDuration.RecordDuration(ctx, duration,
		AttrDocumentKind.String(string(kind)),
		AttrOutcome.String(outcome),
	)
}
