package invoice

import (
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated       = "InvoiceCreated"
	EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"
)

// InvoiceCreatedEvent is raised when an invoice is opened for an order
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	InvoiceNo string    `json:"invoice_no"`
	OrderID   string    `json:"order_id"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID.String()),
		InvoiceID:       inv.ID,
		InvoiceNo:       inv.InvoiceNo,
		OrderID:         inv.OrderID,
	}
}

// InvoiceStatusChangedEvent is raised on issue and send
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceID   uuid.UUID `json:"invoice_id"`
	InvoiceNo   string    `json:"invoice_no"`
	FromStatus  Status    `json:"from_status"`
	ToStatus    Status    `json:"to_status"`
	TotalAmount int64     `json:"total_amount"`
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(inv *Invoice, from Status) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, AggregateTypeInvoice, inv.ID.String()),
		InvoiceID:       inv.ID,
		InvoiceNo:       inv.InvoiceNo,
		FromStatus:      from,
		ToStatus:        inv.Status,
		TotalAmount:     inv.TotalAmount,
	}
}
