package order

import (
	"github.com/edi/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated      = "OrderCreated"
	EventTypeOrderPublished    = "OrderPublished"
	EventTypeOrderAcknowledged = "OrderAcknowledged"
	EventTypeOrderApproved     = "OrderApproved"
)

// OrderCreatedEvent is raised when a draft order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
	}
}

// OrderPublishedEvent is raised when an order leaves DRAFT
type OrderPublishedEvent struct {
	shared.BaseDomainEvent
	OrderID     string `json:"order_id"`
	CustomerID  string `json:"customer_id"`
	OrderPDFKey string `json:"order_pdf_key"`
}

// NewOrderPublishedEvent creates a new OrderPublishedEvent
func NewOrderPublishedEvent(o *Order) *OrderPublishedEvent {
	return &OrderPublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPublished, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
		OrderPDFKey:     o.OrderPDFKey,
	}
}

// OrderAcknowledgedEvent is raised when the partner starts reviewing an order
type OrderAcknowledgedEvent struct {
	shared.BaseDomainEvent
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
}

// NewOrderAcknowledgedEvent creates a new OrderAcknowledgedEvent
func NewOrderAcknowledgedEvent(o *Order) *OrderAcknowledgedEvent {
	return &OrderAcknowledgedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderAcknowledged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
	}
}

// OrderApprovedEvent is raised once, when the acceptance document is frozen
type OrderApprovedEvent struct {
	shared.BaseDomainEvent
	OrderID          string `json:"order_id"`
	CustomerID       string `json:"customer_id"`
	FromStatus       Status `json:"from_status"`
	DocumentHash     string `json:"document_hash"`
	AcceptancePDFKey string `json:"acceptance_pdf_key"`
	Total            int64  `json:"total"`
}

// NewOrderApprovedEvent creates a new OrderApprovedEvent
func NewOrderApprovedEvent(o *Order, from Status) *OrderApprovedEvent {
	return &OrderApprovedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderApproved, AggregateTypeOrder, o.ID),
		OrderID:          o.ID,
		CustomerID:       o.CustomerID,
		FromStatus:       from,
		DocumentHash:     o.DocumentHash,
		AcceptancePDFKey: o.AcceptancePDFKey,
		Total:            o.Summary().Total,
	}
}
