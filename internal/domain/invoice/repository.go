package invoice

import (
	"context"

	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ListFilter narrows invoice listings
type ListFilter struct {
	shared.Filter
	CustomerID string
	OrderID    string
	// PartnerVisible limits the listing to ISSUED and SENT invoices
	PartnerVisible bool
}

// Repository defines the interface for invoice persistence
type Repository interface {
	// FindByID finds an invoice with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByOrderID finds the invoice of an order
	FindByOrderID(ctx context.Context, orderID string) (*Invoice, error)

	// ExistsForOrder reports whether the order already has an invoice
	ExistsForOrder(ctx context.Context, orderID string) (bool, error)

	// List returns one page of invoices and the total match count
	List(ctx context.Context, filter ListFilter) ([]Invoice, int64, error)

	// Create inserts an invoice with its items. A second invoice for the
	// same order violates the unique index and returns DUPLICATE_INVOICE.
	Create(ctx context.Context, inv *Invoice) error

	// SaveWithLock replaces header, amounts and items when the stored
	// version matches, and bumps the version
	SaveWithLock(ctx context.Context, inv *Invoice) error

	// CountByStatus counts invoices in any of statuses, optionally for one customer
	CountByStatus(ctx context.Context, customerID string, statuses ...Status) (int64, error)
}
