package handler

import (
	"net/http"
	"testing"

	apporder "github.com/edi/backend/internal/application/order"
	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/edi/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testOrderID = "MP20260131000001"

func setupOrderRouter(svc *mockOrderService) *gin.Engine {
	r := newTestRouter()
	h := NewOrderHandler(svc)
	orders := r.Group("/orders")
	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/:id", h.GetByID)
	orders.PUT("/:id/items/:item_id", h.UpdateItem)
	orders.POST("/:id/publish", h.Publish)
	orders.POST("/:id/approve", h.Approve)
	orders.GET("/:id/document", h.Document)
	orders.GET("/:id/acceptance", h.Acceptance)
	return r
}

func TestOrderHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(req apporder.CreateOrderRequest) bool {
			return req.CustomerID == "0000000001" && req.OrderDate == "2026-01-31"
		})).Return(&apporder.OrderResponse{OrderID: testOrderID, Status: "DRAFT"}, nil)

		w := performRequest(setupOrderRouter(svc), http.MethodPost, "/orders", map[string]any{
			"customer_id": "0000000001",
			"order_date":  "2026-01-31",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, testOrderID, resp.Data.(map[string]any)["order_id"])
		svc.AssertExpectations(t)
	})

	t.Run("validation error lists fields", func(t *testing.T) {
		svc := new(mockOrderService)
		w := performRequest(setupOrderRouter(svc), http.MethodPost, "/orders", map[string]any{
			"customer_id": "123",
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
		fields := map[string]bool{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = true
		}
		assert.True(t, fields["customer_id"])
		assert.True(t, fields["order_date"])
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := new(mockOrderService)
		w := performRequest(setupOrderRouter(svc), http.MethodPost, "/orders", `{"customer_id":`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})

	t.Run("sequence exhausted", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, shared.ErrSequenceExhausted.Newf("order:20260131"))

		w := performRequest(setupOrderRouter(svc), http.MethodPost, "/orders", map[string]any{
			"customer_id": "0000000001",
			"order_date":  "2026-01-31",
		})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrCodeSequenceExhausted, decodeResponse(t, w).Error.Code)
	})
}

func TestOrderHandler_GetByID_NotFound(t *testing.T) {
	svc := new(mockOrderService)
	svc.On("Get", mock.Anything, "MP20990101000001").Return(nil, shared.ErrNotFound.Newf("order not found"))

	w := performRequest(setupOrderRouter(svc), http.MethodGet, "/orders/MP20990101000001", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestOrderHandler_List(t *testing.T) {
	svc := new(mockOrderService)
	svc.On("List", mock.Anything, mock.MatchedBy(func(req apporder.ListOrdersRequest) bool {
		return req.Status == "UNCONFIRMED" && req.ExcludeDrafts
	})).Return(&shared.Paginated[apporder.OrderResponse]{
		Items:    []apporder.OrderResponse{{OrderID: testOrderID}},
		Total:    21,
		Page:     2,
		PageSize: 20,
	}, nil)

	w := performRequest(setupOrderRouter(svc), http.MethodGet, "/orders?status=UNCONFIRMED&exclude_drafts=true&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(21), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	bad := performRequest(setupOrderRouter(svc), http.MethodGet, "/orders?status=SHIPPED", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestOrderHandler_UpdateItem_InvalidItemID(t *testing.T) {
	svc := new(mockOrderService)
	w := performRequest(setupOrderRouter(svc), http.MethodPut, "/orders/"+testOrderID+"/items/not-a-uuid", map[string]any{
		"person_name": "山田",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, w).Error.Code)
}

func TestOrderHandler_UpdateItem(t *testing.T) {
	svc := new(mockOrderService)
	itemID := uuid.New()
	svc.On("UpdateItem", mock.Anything, testOrderID, itemID, mock.Anything).
		Return(nil, shared.ErrInvalidTransition.Newf("order is not a draft"))

	w := performRequest(setupOrderRouter(svc), http.MethodPut, "/orders/"+testOrderID+"/items/"+itemID.String(), map[string]any{
		"person_name": "山田",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidTransition, decodeResponse(t, w).Error.Code)
}

func TestOrderHandler_Publish_RenderFailureIsRetryable(t *testing.T) {
	svc := new(mockOrderService)
	svc.On("Publish", mock.Anything, testOrderID).Return(nil, shared.ErrRenderFailure.Newf("chrome timed out"))

	w := performRequest(setupOrderRouter(svc), http.MethodPost, "/orders/"+testOrderID+"/publish", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeRenderFailure, resp.Error.Code)
	assert.True(t, resp.Error.Retryable)
}

func TestOrderHandler_Approve(t *testing.T) {
	t.Run("approved with warnings", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("Approve", mock.Anything, testOrderID).Return(&apporder.ApproveResponse{
			Order:    apporder.OrderResponse{OrderID: testOrderID, Status: "APPROVED", DocumentHash: "abc"},
			Warnings: []string{"staff notification failed"},
		}, nil)

		w := performRequest(setupOrderRouter(svc), http.MethodPost, "/orders/"+testOrderID+"/approve", nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, false, data["already_approved"])
		assert.Equal(t, []any{"staff notification failed"}, data["warnings"])
	})

	t.Run("second approval is still a success", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("Approve", mock.Anything, testOrderID).Return(&apporder.ApproveResponse{
			Order:           apporder.OrderResponse{OrderID: testOrderID, Status: "APPROVED"},
			AlreadyApproved: true,
		}, nil)

		w := performRequest(setupOrderRouter(svc), http.MethodPost, "/orders/"+testOrderID+"/approve", nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, true, data["already_approved"])
	})

	t.Run("draft cannot be approved", func(t *testing.T) {
		svc := new(mockOrderService)
		svc.On("Approve", mock.Anything, testOrderID).Return(nil, shared.ErrInvalidTransition.Newf("draft"))

		w := performRequest(setupOrderRouter(svc), http.MethodPost, "/orders/"+testOrderID+"/approve", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestOrderHandler_Documents(t *testing.T) {
	svc := new(mockOrderService)
	pdf := []byte("%PDF-1.7 test")
	svc.On("OrderDocument", mock.Anything, testOrderID).Return(&printing.Document{
		FileName:    "注文書_" + testOrderID + ".pdf",
		ContentType: "application/pdf",
		Content:     pdf,
	}, nil)
	svc.On("AcceptanceDocument", mock.Anything, testOrderID).Return(nil, printing.ErrDigestMismatch.Newf("hash mismatch"))

	r := setupOrderRouter(svc)

	w := performRequest(r, http.MethodGet, "/orders/"+testOrderID+"/document?download=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "filename*=utf-8''")
	assert.Equal(t, pdf, w.Body.Bytes())

	w = performRequest(r, http.MethodGet, "/orders/"+testOrderID+"/acceptance", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrCodeDigestMismatch, decodeResponse(t, w).Error.Code)
}
