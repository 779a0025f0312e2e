package partner

import (
	"context"

	"github.com/edi/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its 10-digit id
	FindByID(ctx context.Context, id string) (*Customer, error)

	// FindByIDs finds the customers with the given ids, in no particular order
	FindByIDs(ctx context.Context, ids []string) ([]Customer, error)

	// List returns one page of customers; Search matches name or kana
	List(ctx context.Context, filter shared.Filter) ([]Customer, int64, error)

	// Create inserts a new customer
	Create(ctx context.Context, customer *Customer) error

	// SaveWithLock saves a customer with optimistic locking (version check)
	SaveWithLock(ctx context.Context, customer *Customer) error

	// Delete removes a customer row. Dependants must be removed first.
	Delete(ctx context.Context, id string) error
}

// AccountRepository persists partner user accounts and profiles
type AccountRepository interface {
	// Create inserts the user and its profile together
	Create(ctx context.Context, user *User, profile *Profile) error

	// ExistsByUsername reports whether the username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// FindProfilesByCustomer lists the profiles acting for a customer
	FindProfilesByCustomer(ctx context.Context, customerID string) ([]Profile, error)

	// DeleteByCustomer deletes the customer's profiles and their users.
	// It returns the number of users removed.
	DeleteByCustomer(ctx context.Context, customerID string) (int64, error)
}

// ContractProgressRepository persists onboarding state
type ContractProgressRepository interface {
	Find(ctx context.Context, customerID string) (*ContractProgress, error)
	Upsert(ctx context.Context, progress *ContractProgress) error
	List(ctx context.Context, status ContractStatus, filter shared.Filter) ([]ContractProgress, int64, error)
	DeleteByCustomer(ctx context.Context, customerID string) error
}

// EmailLogRepository persists sent mail records
type EmailLogRepository interface {
	Create(ctx context.Context, log *SentEmailLog) error
	ListByCustomer(ctx context.Context, customerID string, filter shared.Filter) ([]SentEmailLog, int64, error)
	DeleteByCustomer(ctx context.Context, customerID string) (int64, error)
}
