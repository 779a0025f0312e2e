package persistence

import (
	"context"

	"github.com/edi/backend/internal/application/txscope"
	"github.com/edi/backend/internal/domain/invoice"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/partner"
	"github.com/edi/backend/internal/domain/sequence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormTransactionScope implements txscope.TransactionScope using GORM transactions.
// Every repository handed to fn shares one database transaction.
type GormTransactionScope struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db, logger: zap.NewNop()}
}

// SetLogger sets the logger used by the sequence allocator
func (s *GormTransactionScope) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos txscope.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, logger: s.logger})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx     *gorm.DB
	logger *zap.Logger
}

func (r *gormTransactionalRepositories) OrderRepo() order.Repository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProjectRepo() order.ProjectRepository {
	return NewGormProjectRepository(r.tx)
}

func (r *gormTransactionalRepositories) InvoiceRepo() invoice.Repository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *gormTransactionalRepositories) CustomerRepo() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormTransactionalRepositories) AccountRepo() partner.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

func (r *gormTransactionalRepositories) ContractProgressRepo() partner.ContractProgressRepository {
	return NewGormContractProgressRepository(r.tx)
}

func (r *gormTransactionalRepositories) EmailLogRepo() partner.EmailLogRepository {
	return NewGormEmailLogRepository(r.tx)
}

// Sequence allocates inside the transaction; counter locks are held until commit.
func (r *gormTransactionalRepositories) Sequence() sequence.Allocator {
	return NewGormSequenceAllocator(r.tx, r.logger)
}

// Ensure GormTransactionScope implements TransactionScope
var _ txscope.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ txscope.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
