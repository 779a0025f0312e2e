package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edi/backend/internal/application/txscope"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/sequence"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DraftWatermark is stamped on previews of unpublished orders
const DraftWatermark = "下書き"

// Service handles the order lifecycle: drafting, publishing, partner
// acknowledgement and approval with the frozen acceptance document.
type Service struct {
	scope    txscope.TransactionScope
	renderer printing.Renderer
	store    printing.ContentStore
	company  printing.CompanyInfo

	signer                    order.SignatureProvider
	requestSignatureOnPublish bool
	mailer                    shared.Mailer
	staffRecipients           []string
	eventPublisher            shared.EventPublisher

	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new order Service
func NewService(scope txscope.TransactionScope, renderer printing.Renderer, store printing.ContentStore, company printing.CompanyInfo) *Service {
	return &Service{
		scope:    scope,
		renderer: renderer,
		store:    store,
		company:  company.WithDefaults(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
}

// SetLogger sets the logger
func (s *Service) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetSignatureProvider enables signature requests after approval, and after
// publishing when onPublish is set
func (s *Service) SetSignatureProvider(provider order.SignatureProvider, onPublish bool) {
	s.signer = provider
	s.requestSignatureOnPublish = onPublish
}

// SetStaffMailer enables the approval notice to staff
func (s *Service) SetStaffMailer(mailer shared.Mailer, recipients []string) {
	s.mailer = mailer
	s.staffRecipients = recipients
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create creates a DRAFT order. The MP id is allocated in the same
// transaction as the insert.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	orderDate, err := ParseDate("order_date", req.OrderDate, DateLayout)
	if err != nil {
		return nil, err
	}
	header, err := req.HeaderRequest.toDomain()
	if err != nil {
		return nil, err
	}

	var created *order.Order
	err = s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		if _, err := repos.CustomerRepo().FindByID(ctx, req.CustomerID); err != nil {
			return err
		}
		if err := checkProject(ctx, repos, header.ProjectID); err != nil {
			return err
		}
		id, err := repos.Sequence().Allocate(ctx, sequence.OrderScope(orderDate))
		if err != nil {
			return err
		}
		o, err := order.NewOrder(id, req.CustomerID, orderDate, header)
		if err != nil {
			return err
		}
		for _, item := range req.Items {
			if _, err := o.AddItem(item.toDomain()); err != nil {
				return err
			}
		}
		if err := repos.OrderRepo().Create(ctx, o); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, created)
	s.logger.Info("order created", zap.String("order_id", created.ID), zap.String("customer_id", created.CustomerID))
	response := ToOrderResponse(created)
	return &response, nil
}

func checkProject(ctx context.Context, repos txscope.TransactionalRepositories, projectID string) error {
	if projectID == "" {
		return nil
	}
	if _, err := repos.ProjectRepo().FindByID(ctx, projectID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrInvalidInput.Newf("project %s does not exist", projectID)
		}
		return err
	}
	return nil
}

// Update replaces the header of a DRAFT order
func (s *Service) Update(ctx context.Context, id string, req UpdateOrderRequest) (*OrderResponse, error) {
	header, err := req.HeaderRequest.toDomain()
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(repos txscope.TransactionalRepositories, o *order.Order) error {
		if err := checkProject(ctx, repos, header.ProjectID); err != nil {
			return err
		}
		return o.UpdateHeader(header)
	})
}

// AddItem adds a worker allocation to a DRAFT order
func (s *Service) AddItem(ctx context.Context, id string, req ItemRequest) (*OrderResponse, error) {
	return s.mutate(ctx, id, func(_ txscope.TransactionalRepositories, o *order.Order) error {
		_, err := o.AddItem(req.toDomain())
		return err
	})
}

// UpdateItem rewrites one item of a DRAFT order and reprices it
func (s *Service) UpdateItem(ctx context.Context, id string, itemID uuid.UUID, req ItemRequest) (*OrderResponse, error) {
	return s.mutate(ctx, id, func(_ txscope.TransactionalRepositories, o *order.Order) error {
		_, err := o.UpdateItem(itemID, req.toDomain())
		return err
	})
}

// RemoveItem removes one item of a DRAFT order
func (s *Service) RemoveItem(ctx context.Context, id string, itemID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, id, func(_ txscope.TransactionalRepositories, o *order.Order) error {
		return o.RemoveItem(itemID)
	})
}

// mutate loads the order under a row lock, applies fn and saves with a version check
func (s *Service) mutate(ctx context.Context, id string, fn func(repos txscope.TransactionalRepositories, o *order.Order) error) (*OrderResponse, error) {
	var updated *order.Order
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(repos, o); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, updated)
	response := ToOrderResponse(updated)
	return &response, nil
}

// Acknowledge moves an UNCONFIRMED order to CONFIRMING. Acknowledging a
// CONFIRMING order changes nothing.
func (s *Service) Acknowledge(ctx context.Context, id string) (*OrderResponse, error) {
	var current *order.Order
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		changed, err := o.Acknowledge()
		if err != nil {
			return err
		}
		if changed {
			if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
				return err
			}
		}
		current = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, current)
	response := ToOrderResponse(current)
	return &response, nil
}

// Publish renders and stores the order document and moves the order from
// DRAFT to UNCONFIRMED in one transaction.
func (s *Service) Publish(ctx context.Context, id string) (*PublishResponse, error) {
	var (
		published *order.Order
		storedKey string
	)
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !o.Status.CanTransitionTo(order.StatusUnconfirmed) {
			return shared.ErrInvalidTransition.Newf("cannot publish order %s in %s status", o.ID, o.Status)
		}
		snapshot, err := s.snapshot(ctx, repos, o)
		if err != nil {
			return err
		}
		content, err := s.render(ctx, &printing.Request{Kind: printing.KindOrder, Snapshot: snapshot})
		if err != nil {
			return err
		}
		key := printing.DocumentKey(printing.KindOrder, o.ID, printing.Digest(content))
		if err := s.store.Put(ctx, key, content); err != nil {
			return fmt.Errorf("store order document: %w", err)
		}
		storedKey = key
		if err := o.Publish(key); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		published = o
		return nil
	})
	if err != nil {
		if storedKey != "" {
			s.discard(ctx, id, storedKey)
		}
		return nil, err
	}

	s.publishEvents(ctx, published)
	s.logger.Info("order published", zap.String("order_id", published.ID), zap.String("order_pdf_key", published.OrderPDFKey))

	var warnings []string
	if s.requestSignatureOnPublish {
		if warning := s.requestSignature(ctx, published); warning != "" {
			warnings = append(warnings, warning)
		}
	}
	return &PublishResponse{Order: ToOrderResponse(published), Warnings: warnings}, nil
}

// Get retrieves an order by id
func (s *Service) Get(ctx context.Context, id string) (*OrderResponse, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// List retrieves one page of orders
func (s *Service) List(ctx context.Context, req ListOrdersRequest) (*shared.Paginated[OrderResponse], error) {
	filter := req.toFilter()
	var (
		orders []order.Order
		total  int64
	)
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		orders, total, err = repos.OrderRepo().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToOrderResponses(orders), total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *Service) load(ctx context.Context, id string) (*order.Order, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		o, err = repos.OrderRepo().FindByID(ctx, id)
		return err
	})
	return o, err
}

// snapshot gathers the customer and project printed with the order
func (s *Service) snapshot(ctx context.Context, repos txscope.TransactionalRepositories, o *order.Order) (*printing.OrderSnapshot, error) {
	customer, err := repos.CustomerRepo().FindByID(ctx, o.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("load customer %s: %w", o.CustomerID, err)
	}
	var projectName string
	if o.ProjectID != "" {
		project, err := repos.ProjectRepo().FindByID(ctx, o.ProjectID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("load project %s: %w", o.ProjectID, err)
		}
		if project != nil {
			projectName = project.Name
		}
	}
	return o.Snapshot(customer.Party(), projectName, s.company), nil
}

// render runs the renderer and reports every failure as RENDER_FAILURE
func (s *Service) render(ctx context.Context, req *printing.Request) ([]byte, error) {
	content, err := s.renderer.Render(ctx, req)
	if err != nil {
		if !errors.Is(err, shared.ErrRenderFailure) {
			err = shared.ErrRenderFailure.Wrap(err, fmt.Sprintf("render %s", req.Kind))
		}
		return nil, err
	}
	return content, nil
}

// discard removes a blob written by a transaction that did not commit,
// unless the committed order already references the same content
func (s *Service) discard(ctx context.Context, orderID, key string) {
	if current, err := s.load(ctx, orderID); err == nil {
		if current.OrderPDFKey == key || current.AcceptancePDFKey == key {
			return
		}
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to discard uncommitted document", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	if o == nil {
		return
	}
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events", zap.String("order_id", o.ID), zap.Error(err))
	}
}
