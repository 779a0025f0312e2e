package partner

import "github.com/edi/backend/internal/domain/shared"

// Aggregate type constant
const AggregateTypeCustomer = "Customer"

// EventTypeCustomerCreated is raised when a customer is registered
const EventTypeCustomerCreated = "CustomerCreated"

// CustomerCreatedEvent is raised when a customer is registered
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		Name:            c.Name,
	}
}
