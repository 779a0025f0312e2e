package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	appinvoice "github.com/edi/backend/internal/application/invoice"
	apporder "github.com/edi/backend/internal/application/order"
	apppartner "github.com/edi/backend/internal/application/partner"
	"github.com/edi/backend/internal/application/reconcile"
	"github.com/edi/backend/internal/application/report"
	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/edi/backend/internal/interfaces/http/dto"
	"github.com/edi/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	return r
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ==================== Orders ====================

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) Create(ctx context.Context, req apporder.CreateOrderRequest) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

func (m *mockOrderService) Update(ctx context.Context, id string, req apporder.UpdateOrderRequest) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

func (m *mockOrderService) AddItem(ctx context.Context, id string, req apporder.ItemRequest) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

func (m *mockOrderService) UpdateItem(ctx context.Context, id string, itemID uuid.UUID, req apporder.ItemRequest) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, id, itemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

func (m *mockOrderService) RemoveItem(ctx context.Context, id string, itemID uuid.UUID) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, id, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

func (m *mockOrderService) Publish(ctx context.Context, id string) (*apporder.PublishResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.PublishResponse), args.Error(1)
}

func (m *mockOrderService) Acknowledge(ctx context.Context, id string) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

func (m *mockOrderService) Approve(ctx context.Context, id string) (*apporder.ApproveResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.ApproveResponse), args.Error(1)
}

func (m *mockOrderService) Get(ctx context.Context, id string) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

func (m *mockOrderService) List(ctx context.Context, req apporder.ListOrdersRequest) (*shared.Paginated[apporder.OrderResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[apporder.OrderResponse]), args.Error(1)
}

func (m *mockOrderService) OrderDocument(ctx context.Context, id string) (*printing.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.Document), args.Error(1)
}

func (m *mockOrderService) AcceptanceDocument(ctx context.Context, id string) (*printing.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.Document), args.Error(1)
}

// ==================== Invoices ====================

type mockInvoiceService struct {
	mock.Mock
}

func (m *mockInvoiceService) invoice(args mock.Arguments) (*appinvoice.InvoiceResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoice.InvoiceResponse), args.Error(1)
}

func (m *mockInvoiceService) Create(ctx context.Context, req appinvoice.CreateInvoiceRequest) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, req))
}

func (m *mockInvoiceService) UpdateDetails(ctx context.Context, id uuid.UUID, req appinvoice.UpdateInvoiceRequest) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, id, req))
}

func (m *mockInvoiceService) AddItem(ctx context.Context, id uuid.UUID, req appinvoice.ItemRequest) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, id, req))
}

func (m *mockInvoiceService) UpdateItem(ctx context.Context, id, itemID uuid.UUID, req appinvoice.ItemRequest) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, id, itemID, req))
}

func (m *mockInvoiceService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, id, itemID))
}

func (m *mockInvoiceService) Issue(ctx context.Context, id uuid.UUID) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, id))
}

func (m *mockInvoiceService) Send(ctx context.Context, id uuid.UUID) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, id))
}

func (m *mockInvoiceService) Get(ctx context.Context, id uuid.UUID) (*appinvoice.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, id))
}

func (m *mockInvoiceService) List(ctx context.Context, req appinvoice.ListInvoicesRequest) (*shared.Paginated[appinvoice.InvoiceResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[appinvoice.InvoiceResponse]), args.Error(1)
}

func (m *mockInvoiceService) InvoiceDocument(ctx context.Context, id uuid.UUID) (*printing.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.Document), args.Error(1)
}

func (m *mockInvoiceService) PaymentNoticeDocument(ctx context.Context, id uuid.UUID) (*printing.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.Document), args.Error(1)
}

// ==================== Customers ====================

type mockCustomerService struct {
	mock.Mock
}

func (m *mockCustomerService) customer(args mock.Arguments) (*apppartner.CustomerResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppartner.CustomerResponse), args.Error(1)
}

func (m *mockCustomerService) Create(ctx context.Context, req apppartner.CustomerRequest) (*apppartner.CustomerResponse, error) {
	return m.customer(m.Called(ctx, req))
}

func (m *mockCustomerService) Update(ctx context.Context, id string, req apppartner.CustomerRequest) (*apppartner.CustomerResponse, error) {
	return m.customer(m.Called(ctx, id, req))
}

func (m *mockCustomerService) Get(ctx context.Context, id string) (*apppartner.CustomerResponse, error) {
	return m.customer(m.Called(ctx, id))
}

func (m *mockCustomerService) List(ctx context.Context, req apppartner.ListRequest) (*shared.Paginated[apppartner.CustomerResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[apppartner.CustomerResponse]), args.Error(1)
}

func (m *mockCustomerService) Delete(ctx context.Context, id string) (*apppartner.DeleteCustomerResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppartner.DeleteCustomerResponse), args.Error(1)
}

func (m *mockCustomerService) SetContractProgress(ctx context.Context, customerID string, req apppartner.ContractProgressRequest) (*apppartner.ContractProgressResponse, error) {
	args := m.Called(ctx, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppartner.ContractProgressResponse), args.Error(1)
}

func (m *mockCustomerService) ListContractProgress(ctx context.Context, req apppartner.ListContractProgressRequest) (*shared.Paginated[apppartner.ContractProgressResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[apppartner.ContractProgressResponse]), args.Error(1)
}

func (m *mockCustomerService) RegisterPartnerUser(ctx context.Context, customerID string, req apppartner.RegisterPartnerUserRequest) (*apppartner.PartnerUserResponse, error) {
	args := m.Called(ctx, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppartner.PartnerUserResponse), args.Error(1)
}

func (m *mockCustomerService) ListEmailLogs(ctx context.Context, customerID string, req apppartner.ListRequest) (*shared.Paginated[apppartner.EmailLogResponse], error) {
	args := m.Called(ctx, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[apppartner.EmailLogResponse]), args.Error(1)
}

// ==================== Reconcile / dashboard ====================

type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) Reconcile(ctx context.Context, ref, eventType string) (*reconcile.Result, error) {
	args := m.Called(ctx, ref, eventType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconcile.Result), args.Error(1)
}

type mockDashboardService struct {
	mock.Mock
}

func (m *mockDashboardService) Summary(ctx context.Context, customerID *string) (*report.DashboardSummary, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.DashboardSummary), args.Error(1)
}
