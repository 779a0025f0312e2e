package handler

import (
	"context"

	apporder "github.com/edi/backend/internal/application/order"
	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderService is the order use-case surface the handler needs
type OrderService interface {
	Create(ctx context.Context, req apporder.CreateOrderRequest) (*apporder.OrderResponse, error)
	Update(ctx context.Context, id string, req apporder.UpdateOrderRequest) (*apporder.OrderResponse, error)
	AddItem(ctx context.Context, id string, req apporder.ItemRequest) (*apporder.OrderResponse, error)
	UpdateItem(ctx context.Context, id string, itemID uuid.UUID, req apporder.ItemRequest) (*apporder.OrderResponse, error)
	RemoveItem(ctx context.Context, id string, itemID uuid.UUID) (*apporder.OrderResponse, error)
	Publish(ctx context.Context, id string) (*apporder.PublishResponse, error)
	Acknowledge(ctx context.Context, id string) (*apporder.OrderResponse, error)
	Approve(ctx context.Context, id string) (*apporder.ApproveResponse, error)
	Get(ctx context.Context, id string) (*apporder.OrderResponse, error)
	List(ctx context.Context, req apporder.ListOrdersRequest) (*shared.Paginated[apporder.OrderResponse], error)
	OrderDocument(ctx context.Context, id string) (*printing.Document, error)
	AcceptanceDocument(ctx context.Context, id string) (*printing.Document, error)
}

// OrderHandler handles order lifecycle endpoints
type OrderHandler struct {
	BaseHandler
	service OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create godoc
// @Summary      Create a draft order
// @Description  Allocates the next MP order ID for the order date and stores the order as DRAFT.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body apporder.CreateOrderRequest true "Order"
// @Success      201 {object} dto.Response{data=apporder.OrderResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response "Customer not found"
// @Failure      503 {object} dto.Response "Daily order sequence exhausted"
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req apporder.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	o, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, o)
}

// List godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        page           query int    false "Page number" default(1)
// @Param        page_size      query int    false "Page size" default(20)
// @Param        customer_id    query string false "Customer ID"
// @Param        status         query string false "Status" Enums(DRAFT, UNCONFIRMED, CONFIRMING, RECEIVED, APPROVED)
// @Param        exclude_drafts query bool   false "Hide drafts, as partners see the list"
// @Success      200 {object} dto.Response{data=[]apporder.OrderResponse,meta=dto.Meta}
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var req apporder.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// GetByID godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=apporder.OrderResponse}
// @Failure      404 {object} dto.Response
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	o, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Update godoc
// @Summary      Update a draft order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Order ID"
// @Param        request body apporder.UpdateOrderRequest true "Header"
// @Success      200 {object} dto.Response{data=apporder.OrderResponse}
// @Failure      409 {object} dto.Response "Order is no longer a draft"
// @Router       /orders/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	var req apporder.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	o, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// AddItem godoc
// @Summary      Add an order item
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Order ID"
// @Param        request body apporder.ItemRequest true "Item"
// @Success      201 {object} dto.Response{data=apporder.OrderResponse}
// @Failure      409 {object} dto.Response "Order is no longer a draft"
// @Router       /orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *gin.Context) {
	var req apporder.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	o, err := h.service.AddItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, o)
}

// UpdateItem godoc
// @Summary      Update an order item
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Order ID"
// @Param        item_id path string               true "Item ID" format(uuid)
// @Param        request body apporder.ItemRequest true "Item"
// @Success      200 {object} dto.Response{data=apporder.OrderResponse}
// @Router       /orders/{id}/items/{item_id} [put]
func (h *OrderHandler) UpdateItem(c *gin.Context) {
	itemID, ok := h.parseUUIDParam(c, "item_id")
	if !ok {
		return
	}
	var req apporder.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	o, err := h.service.UpdateItem(c.Request.Context(), c.Param("id"), itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// RemoveItem godoc
// @Summary      Remove an order item
// @Tags         orders
// @Produce      json
// @Param        id      path string true "Order ID"
// @Param        item_id path string true "Item ID" format(uuid)
// @Success      200 {object} dto.Response{data=apporder.OrderResponse}
// @Router       /orders/{id}/items/{item_id} [delete]
func (h *OrderHandler) RemoveItem(c *gin.Context) {
	itemID, ok := h.parseUUIDParam(c, "item_id")
	if !ok {
		return
	}
	o, err := h.service.RemoveItem(c.Request.Context(), c.Param("id"), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Publish godoc
// @Summary      Publish an order to the partner
// @Description  Freezes the order PDF and moves the order to UNCONFIRMED. Signature request failures are reported as warnings.
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=apporder.PublishResponse}
// @Failure      409 {object} dto.Response "Order is not a draft"
// @Failure      502 {object} dto.Response "Rendering failed, retryable"
// @Router       /orders/{id}/publish [post]
func (h *OrderHandler) Publish(c *gin.Context) {
	result, err := h.service.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Acknowledge godoc
// @Summary      Acknowledge an order
// @Description  The partner has opened the order. Moves UNCONFIRMED to CONFIRMING; repeating it is a no-op.
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=apporder.OrderResponse}
// @Failure      409 {object} dto.Response
// @Router       /orders/{id}/acknowledge [post]
func (h *OrderHandler) Acknowledge(c *gin.Context) {
	o, err := h.service.Acknowledge(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Approve godoc
// @Summary      Approve an order
// @Description  Moves the order to APPROVED and freezes the acceptance PDF. Approving twice is a no-op reported by already_approved.
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=apporder.ApproveResponse}
// @Failure      409 {object} dto.Response "Order is still a draft"
// @Failure      502 {object} dto.Response "Rendering failed, retryable"
// @Router       /orders/{id}/approve [post]
func (h *OrderHandler) Approve(c *gin.Context) {
	result, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Document godoc
// @Summary      Order PDF
// @Description  Frozen order PDF once published, a watermarked preview for drafts.
// @Tags         orders
// @Produce      application/pdf
// @Param        id       path  string true  "Order ID"
// @Param        download query string false "1 to download instead of display"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response
// @Router       /orders/{id}/document [get]
func (h *OrderHandler) Document(c *gin.Context) {
	doc, err := h.service.OrderDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.Document(c, doc)
}

// Acceptance godoc
// @Summary      Acceptance PDF
// @Description  Frozen acceptance PDF once approved, a preview before that.
// @Tags         orders
// @Produce      application/pdf
// @Param        id path string true "Order ID"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response "Stored PDF does not match its hash"
// @Router       /orders/{id}/acceptance [get]
func (h *OrderHandler) Acceptance(c *gin.Context) {
	doc, err := h.service.AcceptanceDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.Document(c, doc)
}
