// Package txscope defines the unit of work shared by the application services.
package txscope

import (
	"context"
	"sync"

	"github.com/edi/backend/internal/domain/invoice"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/partner"
	"github.com/edi/backend/internal/domain/sequence"
)

// TransactionScope provides transactional access to the repositories.
// Identifier allocation, the aggregate write and any guard reads made through
// the same TransactionalRepositories commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	OrderRepo() order.Repository
	ProjectRepo() order.ProjectRepository
	InvoiceRepo() invoice.Repository
	CustomerRepo() partner.CustomerRepository
	AccountRepo() partner.AccountRepository
	ContractProgressRepo() partner.ContractProgressRepository
	EmailLogRepo() partner.EmailLogRepository
	// Sequence allocates identifiers inside the transaction
	Sequence() sequence.Allocator
}

// Repositories is a plain bundle of repositories
type Repositories struct {
	Orders           order.Repository
	Projects         order.ProjectRepository
	Invoices         invoice.Repository
	Customers        partner.CustomerRepository
	Accounts         partner.AccountRepository
	ContractProgress partner.ContractProgressRepository
	EmailLogs        partner.EmailLogRepository
	Sequence         sequence.Allocator
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// Calls to Execute are serialized so that in-memory repositories observe
// the same one-writer-at-a-time behaviour as row locks give in the database.
type NoOpTransactionScope struct {
	mu    sync.Mutex
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction (for testing/tooling).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.Repository {
	return s.repos.Orders
}

// ProjectRepo returns the project repository.
func (s *NoOpTransactionScope) ProjectRepo() order.ProjectRepository {
	return s.repos.Projects
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() invoice.Repository {
	return s.repos.Invoices
}

// CustomerRepo returns the customer repository.
func (s *NoOpTransactionScope) CustomerRepo() partner.CustomerRepository {
	return s.repos.Customers
}

// AccountRepo returns the partner account repository.
func (s *NoOpTransactionScope) AccountRepo() partner.AccountRepository {
	return s.repos.Accounts
}

// ContractProgressRepo returns the contract progress repository.
func (s *NoOpTransactionScope) ContractProgressRepo() partner.ContractProgressRepository {
	return s.repos.ContractProgress
}

// EmailLogRepo returns the email log repository.
func (s *NoOpTransactionScope) EmailLogRepo() partner.EmailLogRepository {
	return s.repos.EmailLogs
}

// Sequence returns the identifier allocator.
func (s *NoOpTransactionScope) Sequence() sequence.Allocator {
	return s.repos.Sequence
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
