// Package testutil provides test doubles shared by the application and
// interface tests: testify mocks for every repository and port, a database
// helper backed by sqlmock and event helpers.
package testutil

import (
	"context"
	"time"

	"github.com/edi/backend/internal/application/txscope"
	"github.com/edi/backend/internal/domain/invoice"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/partner"
	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/sequence"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindBySignatureRef(ctx context.Context, ref string) (*order.Order, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter order.ListFilter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) ListByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkApproved(ctx context.Context, o *order.Order) (bool, error) {
	args := m.Called(ctx, o)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) SetSignatureRef(ctx context.Context, id, ref string) (bool, error) {
	args := m.Called(ctx, id, ref)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, customerID string, statuses ...order.Status) (int64, error) {
	args := m.Called(ctx, customerID, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ExistsForCustomer(ctx context.Context, customerID string) (bool, error) {
	args := m.Called(ctx, customerID)
	return args.Bool(0), args.Error(1)
}

// MockProjectRepository is a mock implementation of order.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id string) (*order.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Project), args.Error(1)
}

func (m *MockProjectRepository) List(ctx context.Context, filter shared.Filter) ([]order.Project, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) Create(ctx context.Context, p *order.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) Save(ctx context.Context, p *order.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of invoice.Repository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByOrderID(ctx context.Context, orderID string) (*invoice.Invoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, filter invoice.ListFilter) ([]invoice.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]invoice.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CountByStatus(ctx context.Context, customerID string, statuses ...invoice.Status) (int64, error) {
	args := m.Called(ctx, customerID, statuses)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id string) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDs(ctx context.Context, ids []string) ([]partner.Customer, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, filter shared.Filter) ([]partner.Customer, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAccountRepository is a mock implementation of partner.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, user *partner.User, profile *partner.Profile) error {
	args := m.Called(ctx, user, profile)
	return args.Error(0)
}

func (m *MockAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) FindProfilesByCustomer(ctx context.Context, customerID string) ([]partner.Profile, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]partner.Profile), args.Error(1)
}

func (m *MockAccountRepository) DeleteByCustomer(ctx context.Context, customerID string) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockContractProgressRepository is a mock implementation of partner.ContractProgressRepository
type MockContractProgressRepository struct {
	mock.Mock
}

func (m *MockContractProgressRepository) Find(ctx context.Context, customerID string) (*partner.ContractProgress, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.ContractProgress), args.Error(1)
}

func (m *MockContractProgressRepository) Upsert(ctx context.Context, progress *partner.ContractProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *MockContractProgressRepository) List(ctx context.Context, status partner.ContractStatus, filter shared.Filter) ([]partner.ContractProgress, int64, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]partner.ContractProgress), args.Get(1).(int64), args.Error(2)
}

func (m *MockContractProgressRepository) DeleteByCustomer(ctx context.Context, customerID string) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

// MockEmailLogRepository is a mock implementation of partner.EmailLogRepository
type MockEmailLogRepository struct {
	mock.Mock
}

func (m *MockEmailLogRepository) Create(ctx context.Context, log *partner.SentEmailLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockEmailLogRepository) ListByCustomer(ctx context.Context, customerID string, filter shared.Filter) ([]partner.SentEmailLog, int64, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]partner.SentEmailLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockEmailLogRepository) DeleteByCustomer(ctx context.Context, customerID string) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRenderer is a mock implementation of printing.Renderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, req *printing.Request) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRenderer) ContentType() string {
	return "application/pdf"
}

// MockContentStore is a mock implementation of printing.ContentStore
type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) Put(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

func (m *MockContentStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockContentStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockSignatureProvider is a mock implementation of order.SignatureProvider
type MockSignatureProvider struct {
	mock.Mock
}

func (m *MockSignatureProvider) SendDocument(ctx context.Context, o *order.Order) (*order.SignatureRequest, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.SignatureRequest), args.Error(1)
}

// MockMailer is a mock implementation of shared.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg shared.MailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return nil
}

// Repositories bundles one mock per repository and the in-memory allocator
type Repositories struct {
	Orders           *MockOrderRepository
	Projects         *MockProjectRepository
	Invoices         *MockInvoiceRepository
	Customers        *MockCustomerRepository
	Accounts         *MockAccountRepository
	ContractProgress *MockContractProgressRepository
	EmailLogs        *MockEmailLogRepository
	Sequence         *sequence.MemoryAllocator
}

// NewRepositories creates fresh mocks for every repository
func NewRepositories() *Repositories {
	return &Repositories{
		Orders:           new(MockOrderRepository),
		Projects:         new(MockProjectRepository),
		Invoices:         new(MockInvoiceRepository),
		Customers:        new(MockCustomerRepository),
		Accounts:         new(MockAccountRepository),
		ContractProgress: new(MockContractProgressRepository),
		EmailLogs:        new(MockEmailLogRepository),
		Sequence:         sequence.NewMemoryAllocator(),
	}
}

// Scope returns a NoOpTransactionScope over the mocks
func (r *Repositories) Scope() *txscope.NoOpTransactionScope {
	return r.ScopeWithOrders(r.Orders)
}

// ScopeWithOrders is Scope with orders in place of the order mock
func (r *Repositories) ScopeWithOrders(orders order.Repository) *txscope.NoOpTransactionScope {
	return txscope.NewNoOpTransactionScope(txscope.Repositories{
		Orders:           orders,
		Projects:         r.Projects,
		Invoices:         r.Invoices,
		Customers:        r.Customers,
		Accounts:         r.Accounts,
		ContractProgress: r.ContractProgress,
		EmailLogs:        r.EmailLogs,
		Sequence:         r.Sequence,
	})
}

// AssertExpectations asserts the expectations of every repository mock
func (r *Repositories) AssertExpectations(t mock.TestingT) {
	r.Orders.AssertExpectations(t)
	r.Projects.AssertExpectations(t)
	r.Invoices.AssertExpectations(t)
	r.Customers.AssertExpectations(t)
	r.Accounts.AssertExpectations(t)
	r.ContractProgress.AssertExpectations(t)
	r.EmailLogs.AssertExpectations(t)
}

var (
	_ order.Repository                   = (*MockOrderRepository)(nil)
	_ order.ProjectRepository            = (*MockProjectRepository)(nil)
	_ invoice.Repository                 = (*MockInvoiceRepository)(nil)
	_ partner.CustomerRepository         = (*MockCustomerRepository)(nil)
	_ partner.AccountRepository          = (*MockAccountRepository)(nil)
	_ partner.ContractProgressRepository = (*MockContractProgressRepository)(nil)
	_ partner.EmailLogRepository         = (*MockEmailLogRepository)(nil)
	_ printing.Renderer                  = (*MockRenderer)(nil)
	_ printing.ContentStore              = (*MockContentStore)(nil)
	_ order.SignatureProvider            = (*MockSignatureProvider)(nil)
	_ shared.Mailer                      = (*MockMailer)(nil)
	_ shared.IdempotencyStore            = (*MockIdempotencyStore)(nil)
)
