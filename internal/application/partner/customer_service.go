package partner

import (
	"context"
	"errors"

	"github.com/edi/backend/internal/application/txscope"
	"github.com/edi/backend/internal/domain/partner"
	"github.com/edi/backend/internal/domain/sequence"
	"github.com/edi/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService handles customer records and partner onboarding
type CustomerService struct {
	scope          txscope.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(scope txscope.TransactionScope) *CustomerService {
	return &CustomerService{
		scope:  scope,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger
func (s *CustomerService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CustomerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a customer under the next 10-digit id
func (s *CustomerService) Create(ctx context.Context, req CustomerRequest) (*CustomerResponse, error) {
	var created *partner.Customer
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		id, err := repos.Sequence().Allocate(ctx, sequence.CustomerScope())
		if err != nil {
			return err
		}
		customer, err := partner.NewCustomer(id, req.toDomain())
		if err != nil {
			return err
		}
		if err := repos.CustomerRepo().Create(ctx, customer); err != nil {
			return err
		}
		created = customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := created.GetDomainEvents()
	created.ClearDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish customer events", zap.String("customer_id", created.ID), zap.Error(err))
		}
	}
	s.logger.Info("customer created", zap.String("customer_id", created.ID))
	response := ToCustomerResponse(created)
	return &response, nil
}

// Update replaces the editable fields of a customer
func (s *CustomerService) Update(ctx context.Context, id string, req CustomerRequest) (*CustomerResponse, error) {
	var updated *partner.Customer
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		customer, err := repos.CustomerRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := customer.Update(req.toDomain()); err != nil {
			return err
		}
		if err := repos.CustomerRepo().SaveWithLock(ctx, customer); err != nil {
			return err
		}
		updated = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(updated)
	return &response, nil
}

// Get retrieves a customer by id
func (s *CustomerService) Get(ctx context.Context, id string) (*CustomerResponse, error) {
	var customer *partner.Customer
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		customer, err = repos.CustomerRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves one page of customers
func (s *CustomerService) List(ctx context.Context, req ListRequest) (*shared.Paginated[CustomerResponse], error) {
	filter := req.toFilter()
	var (
		customers []partner.Customer
		total     int64
	)
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		customers, total, err = repos.CustomerRepo().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToCustomerResponses(customers), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete removes a customer and everything that only exists for it:
// partner profiles with their user accounts, contract progress and email
// logs. Customers referenced by orders are refused with CUSTOMER_IN_USE.
func (s *CustomerService) Delete(ctx context.Context, id string) (*DeleteCustomerResponse, error) {
	result := &DeleteCustomerResponse{CustomerID: id}
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		if _, err := repos.CustomerRepo().FindByID(ctx, id); err != nil {
			return err
		}
		inUse, err := repos.OrderRepo().ExistsForCustomer(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return shared.ErrCustomerInUse.Newf("customer %s is referenced by orders", id)
		}

		if result.UsersRemoved, err = repos.AccountRepo().DeleteByCustomer(ctx, id); err != nil {
			return err
		}
		if err := repos.ContractProgressRepo().DeleteByCustomer(ctx, id); err != nil {
			return err
		}
		if result.LogsRemoved, err = repos.EmailLogRepo().DeleteByCustomer(ctx, id); err != nil {
			return err
		}
		return repos.CustomerRepo().Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer deleted",
		zap.String("customer_id", id),
		zap.Int64("users_removed", result.UsersRemoved),
		zap.Int64("logs_removed", result.LogsRemoved),
	)
	return result, nil
}

// SetContractProgress records the onboarding status of a customer
func (s *CustomerService) SetContractProgress(ctx context.Context, customerID string, req ContractProgressRequest) (*ContractProgressResponse, error) {
	progress, err := partner.NewContractProgress(customerID, partner.ContractStatus(req.Status))
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		if _, err := repos.CustomerRepo().FindByID(ctx, customerID); err != nil {
			return err
		}
		return repos.ContractProgressRepo().Upsert(ctx, progress)
	})
	if err != nil {
		return nil, err
	}
	response := toContractProgressResponse(progress)
	return &response, nil
}

// ListContractProgress lists onboarding records, optionally for one status
func (s *CustomerService) ListContractProgress(ctx context.Context, req ListContractProgressRequest) (*shared.Paginated[ContractProgressResponse], error) {
	filter := req.toFilter()
	var (
		records []partner.ContractProgress
		total   int64
	)
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		records, total, err = repos.ContractProgressRepo().List(ctx, partner.ContractStatus(req.Status), filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]ContractProgressResponse, len(records))
	for i := range records {
		items[i] = toContractProgressResponse(&records[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// RegisterPartnerUser creates a first-login account acting for the customer.
// A customer without onboarding state is marked INVITED.
func (s *CustomerService) RegisterPartnerUser(ctx context.Context, customerID string, req RegisterPartnerUserRequest) (*PartnerUserResponse, error) {
	user, profile, err := partner.NewPartnerUser(customerID, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		if _, err := repos.CustomerRepo().FindByID(ctx, customerID); err != nil {
			return err
		}
		taken, err := repos.AccountRepo().ExistsByUsername(ctx, user.Username)
		if err != nil {
			return err
		}
		if taken {
			return partner.ErrUsernameTaken.Newf("username %s is already registered", user.Username)
		}
		if err := repos.AccountRepo().Create(ctx, user, profile); err != nil {
			return err
		}

		_, err = repos.ContractProgressRepo().Find(ctx, customerID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		progress, err := partner.NewContractProgress(customerID, partner.ContractStatusInvited)
		if err != nil {
			return err
		}
		return repos.ContractProgressRepo().Upsert(ctx, progress)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("partner user registered", zap.String("customer_id", customerID), zap.String("username", user.Username))
	return &PartnerUserResponse{
		UserID:       user.ID,
		ProfileID:    profile.ID,
		CustomerID:   customerID,
		Username:     user.Username,
		Email:        user.Email,
		IsFirstLogin: profile.IsFirstLogin,
	}, nil
}

// ListEmailLogs lists the mails sent to a customer, newest first
func (s *CustomerService) ListEmailLogs(ctx context.Context, customerID string, req ListRequest) (*shared.Paginated[EmailLogResponse], error) {
	req.OrderBy = ""
	filter := req.toFilter()
	filter.OrderBy = "sent_at"
	var (
		logs  []partner.SentEmailLog
		total int64
	)
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		if _, err := repos.CustomerRepo().FindByID(ctx, customerID); err != nil {
			return err
		}
		var err error
		logs, total, err = repos.EmailLogRepo().ListByCustomer(ctx, customerID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]EmailLogResponse, len(logs))
	for i := range logs {
		items[i] = toEmailLogResponse(&logs[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
