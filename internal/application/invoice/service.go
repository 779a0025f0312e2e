package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edi/backend/internal/application/txscope"
	"github.com/edi/backend/internal/domain/invoice"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/sequence"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles SES invoices: creation from an order, line settlement,
// status transitions and on-demand documents.
type Service struct {
	scope          txscope.TransactionScope
	renderer       printing.Renderer
	company        printing.CompanyInfo
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewService creates a new invoice Service
func NewService(scope txscope.TransactionScope, renderer printing.Renderer, company printing.CompanyInfo) *Service {
	return &Service{
		scope:    scope,
		renderer: renderer,
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

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the time source used for the invoice number scope
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create opens the single invoice of an order.
//
// The order row is locked while the existing-invoice check, the invoice_no
// allocation and the insert run, so two concurrent creations for the same
// order cannot both pass the check. The unique index on order_id backs it.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	targetMonth, err := parseDate("target_month", req.TargetMonth, MonthLayout)
	if err != nil {
		return nil, err
	}
	dates, err := req.DatesRequest.toDomain()
	if err != nil {
		return nil, err
	}
	if dates.IssueDate.IsZero() {
		dates.IssueDate = s.now()
	}

	var created *invoice.Invoice
	err = s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, req.OrderID)
		if err != nil {
			return err
		}
		exists, err := repos.InvoiceRepo().ExistsForOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.ErrDuplicateInvoice.Newf("order %s already has an invoice", o.ID)
		}

		invoiceNo, err := repos.Sequence().Allocate(ctx, sequence.InvoiceScope(s.now()))
		if err != nil {
			return err
		}
		inv, err := invoice.NewInvoice(o.ID, o.CustomerID, invoiceNo, targetMonth, dates, req.Department)
		if err != nil {
			return err
		}
		if err := inv.Seed(o); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Create(ctx, inv); err != nil {
			return err
		}
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, created)
	s.logger.Info("invoice created",
		zap.String("invoice_no", created.InvoiceNo),
		zap.String("order_id", created.OrderID),
		zap.Int64("total_amount", created.TotalAmount),
	)
	response := ToInvoiceResponse(created)
	return &response, nil
}

// AddItem adds a settlement line. Band fields not given come from the order band.
func (s *Service) AddItem(ctx context.Context, id uuid.UUID, req ItemRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, id, func(repos txscope.TransactionalRepositories, inv *invoice.Invoice) error {
		o, err := repos.OrderRepo().FindByID(ctx, inv.OrderID)
		if err != nil {
			return err
		}
		_, err = inv.AddItem(req.merge(orderBandInput(o.Band)))
		return err
	})
}

// UpdateItem re-settles one line (e.g. a work_time correction) and re-aggregates
func (s *Service) UpdateItem(ctx context.Context, id, itemID uuid.UUID, req ItemRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, id, func(_ txscope.TransactionalRepositories, inv *invoice.Invoice) error {
		for i := range inv.Items {
			if inv.Items[i].ID == itemID {
				_, err := inv.UpdateItem(itemID, req.merge(itemInput(&inv.Items[i])))
				return err
			}
		}
		return shared.ErrNotFound.Newf("invoice item %s not found", itemID)
	})
}

// RemoveItem drops one line and re-aggregates
func (s *Service) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, id, func(_ txscope.TransactionalRepositories, inv *invoice.Invoice) error {
		return inv.RemoveItem(itemID)
	})
}

// UpdateDetails edits the dates and department of a draft invoice
func (s *Service) UpdateDetails(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	dates, err := req.DatesRequest.toDomain()
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(_ txscope.TransactionalRepositories, inv *invoice.Invoice) error {
		return inv.UpdateDetails(dates, req.Department)
	})
}

// Issue moves a DRAFT invoice to ISSUED
func (s *Service) Issue(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, id, func(_ txscope.TransactionalRepositories, inv *invoice.Invoice) error {
		return inv.Issue()
	})
}

// Send moves an ISSUED invoice to SENT
func (s *Service) Send(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, id, func(_ txscope.TransactionalRepositories, inv *invoice.Invoice) error {
		return inv.Send()
	})
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(repos txscope.TransactionalRepositories, inv *invoice.Invoice) error) (*InvoiceResponse, error) {
	var updated *invoice.Invoice
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(repos, inv); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, updated)
	response := ToInvoiceResponse(updated)
	return &response, nil
}

// Get retrieves an invoice by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	var inv *invoice.Invoice
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List retrieves one page of invoices
func (s *Service) List(ctx context.Context, req ListInvoicesRequest) (*shared.Paginated[InvoiceResponse], error) {
	filter := req.toFilter()
	var (
		invoices []invoice.Invoice
		total    int64
	)
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		invoices, total, err = repos.InvoiceRepo().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToInvoiceResponses(invoices), total, filter.Page, filter.PageSize)
	return &page, nil
}

// InvoiceDocument renders the invoice. It is never stored.
func (s *Service) InvoiceDocument(ctx context.Context, id uuid.UUID) (*printing.Document, error) {
	return s.document(ctx, id, printing.KindInvoice)
}

// PaymentNoticeDocument renders the payment notice. It is never stored.
func (s *Service) PaymentNoticeDocument(ctx context.Context, id uuid.UUID) (*printing.Document, error) {
	return s.document(ctx, id, printing.KindPaymentNotice)
}

func (s *Service) document(ctx context.Context, id uuid.UUID, kind printing.Kind) (*printing.Document, error) {
	var (
		inv      *invoice.Invoice
		snapshot *printing.InvoiceSnapshot
	)
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		customer, err := repos.CustomerRepo().FindByID(ctx, inv.CustomerID)
		if err != nil {
			return fmt.Errorf("load customer %s: %w", inv.CustomerID, err)
		}
		projectName, err := projectNameOf(ctx, repos, inv.OrderID)
		if err != nil {
			return err
		}
		snapshot = inv.Snapshot(customer.Party(), projectName, s.company)
		return nil
	})
	if err != nil {
		return nil, err
	}

	content, err := s.renderer.Render(ctx, &printing.Request{Kind: kind, Snapshot: snapshot})
	if err != nil {
		if !errors.Is(err, shared.ErrRenderFailure) {
			err = shared.ErrRenderFailure.Wrap(err, fmt.Sprintf("render %s", kind))
		}
		return nil, err
	}
	return &printing.Document{
		FileName:    inv.DocumentFileName(kind.FilePrefix()),
		ContentType: s.renderer.ContentType(),
		Content:     content,
	}, nil
}

func projectNameOf(ctx context.Context, repos txscope.TransactionalRepositories, orderID string) (string, error) {
	o, err := repos.OrderRepo().FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load order %s: %w", orderID, err)
	}
	return projectName(ctx, repos, o)
}

func projectName(ctx context.Context, repos txscope.TransactionalRepositories, o *order.Order) (string, error) {
	if o.ProjectID == "" {
		return "", nil
	}
	p, err := repos.ProjectRepo().FindByID(ctx, o.ProjectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load project %s: %w", o.ProjectID, err)
	}
	return p.Name, nil
}

func (s *Service) publishEvents(ctx context.Context, inv *invoice.Invoice) {
	if inv == nil {
		return
	}
	events := inv.GetDomainEvents()
	inv.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish invoice events", zap.String("invoice_no", inv.InvoiceNo), zap.Error(err))
	}
}
