package order

import (
	"context"

	"github.com/edi/backend/internal/domain/shared"
)

// ListFilter narrows order listings
type ListFilter struct {
	shared.Filter
	CustomerID    string
	Status        Status
	ExcludeDrafts bool
}

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByIDForUpdate finds an order and holds a row lock until the
	// enclosing transaction ends
	FindByIDForUpdate(ctx context.Context, id string) (*Order, error)

	// FindBySignatureRef finds the order whose external signature id is ref
	FindBySignatureRef(ctx context.Context, ref string) (*Order, error)

	// List returns one page of orders and the total match count
	List(ctx context.Context, filter ListFilter) ([]Order, int64, error)

	// ListByStatus returns every order in status, oldest first
	ListByStatus(ctx context.Context, status Status) ([]Order, error)

	// Create inserts a new order with its items
	Create(ctx context.Context, o *Order) error

	// SaveWithLock writes header, status and items when the stored version
	// matches, and bumps the version. A mismatch is CONCURRENT_MODIFICATION.
	SaveWithLock(ctx context.Context, o *Order) error

	// MarkApproved writes the approval columns only while the stored row is
	// still in one of the approvable statuses at the same version.
	// It reports false when another writer got there first.
	MarkApproved(ctx context.Context, o *Order) (bool, error)

	// SetSignatureRef stores ref unless a reference is already set
	SetSignatureRef(ctx context.Context, id, ref string) (bool, error)

	// CountByStatus counts orders in any of statuses, optionally for one customer
	CountByStatus(ctx context.Context, customerID string, statuses ...Status) (int64, error)

	// ExistsForCustomer reports whether any order references the customer
	ExistsForCustomer(ctx context.Context, customerID string) (bool, error)
}

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	FindByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, filter shared.Filter) ([]Project, int64, error)
	Create(ctx context.Context, p *Project) error
	Save(ctx context.Context, p *Project) error
}
