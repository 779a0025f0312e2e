package report

import (
	"context"

	"github.com/edi/backend/internal/application/txscope"
	"github.com/edi/backend/internal/domain/invoice"
	"github.com/edi/backend/internal/domain/order"
)

// DashboardSummary holds the headline counts of the back office
type DashboardSummary struct {
	// CustomerID is set when the counts are scoped to one customer
	CustomerID        string `json:"customer_id,omitempty"`
	UnconfirmedOrders int64  `json:"unconfirmed_orders"`
	// ReceivedOrders counts RECEIVED and APPROVED orders
	ReceivedOrders int64 `json:"received_orders"`
	// OpenInvoices counts ISSUED and SENT invoices
	OpenInvoices int64 `json:"open_invoices"`
}

// DashboardService provides the dashboard counts
type DashboardService struct {
	scope txscope.TransactionScope
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(scope txscope.TransactionScope) *DashboardService {
	return &DashboardService{scope: scope}
}

// Summary counts orders and invoices, for one customer when customerID is set
func (s *DashboardService) Summary(ctx context.Context, customerID *string) (*DashboardSummary, error) {
	summary := &DashboardSummary{}
	if customerID != nil {
		summary.CustomerID = *customerID
	}
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		if summary.UnconfirmedOrders, err = repos.OrderRepo().CountByStatus(ctx, summary.CustomerID, order.StatusUnconfirmed); err != nil {
			return err
		}
		if summary.ReceivedOrders, err = repos.OrderRepo().CountByStatus(ctx, summary.CustomerID, order.StatusReceived, order.StatusApproved); err != nil {
			return err
		}
		summary.OpenInvoices, err = repos.InvoiceRepo().CountByStatus(ctx, summary.CustomerID, invoice.PartnerVisibleStatuses()...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
