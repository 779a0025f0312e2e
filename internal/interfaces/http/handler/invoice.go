package handler

import (
	"context"

	appinvoice "github.com/edi/backend/internal/application/invoice"
	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceService is the invoice use-case surface the handler needs
type InvoiceService interface {
	Create(ctx context.Context, req appinvoice.CreateInvoiceRequest) (*appinvoice.InvoiceResponse, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, req appinvoice.UpdateInvoiceRequest) (*appinvoice.InvoiceResponse, error)
	AddItem(ctx context.Context, id uuid.UUID, req appinvoice.ItemRequest) (*appinvoice.InvoiceResponse, error)
	UpdateItem(ctx context.Context, id, itemID uuid.UUID, req appinvoice.ItemRequest) (*appinvoice.InvoiceResponse, error)
	RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*appinvoice.InvoiceResponse, error)
	Issue(ctx context.Context, id uuid.UUID) (*appinvoice.InvoiceResponse, error)
	Send(ctx context.Context, id uuid.UUID) (*appinvoice.InvoiceResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*appinvoice.InvoiceResponse, error)
	List(ctx context.Context, req appinvoice.ListInvoicesRequest) (*shared.Paginated[appinvoice.InvoiceResponse], error)
	InvoiceDocument(ctx context.Context, id uuid.UUID) (*printing.Document, error)
	PaymentNoticeDocument(ctx context.Context, id uuid.UUID) (*printing.Document, error)
}

// InvoiceHandler handles SES invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	service InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// Create godoc
// @Summary      Create an invoice
// @Description  Opens the single invoice of an order, copying its items as settlement lines.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body appinvoice.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Failure      404 {object} dto.Response "Order not found"
// @Failure      409 {object} dto.Response "Order already invoiced"
// @Failure      503 {object} dto.Response "Monthly invoice sequence exhausted"
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req appinvoice.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	inv, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// List godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        customer_id     query string false "Customer ID"
// @Param        order_id        query string false "Order ID"
// @Param        partner_visible query bool   false "Only ISSUED and SENT invoices"
// @Success      200 {object} dto.Response{data=[]appinvoice.InvoiceResponse,meta=dto.Meta}
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var req appinvoice.ListInvoicesRequest
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
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Failure      404 {object} dto.Response
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Update godoc
// @Summary      Edit invoice dates
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Invoice ID" format(uuid)
// @Param        request body appinvoice.UpdateInvoiceRequest true "Dates"
// @Success      200 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Failure      409 {object} dto.Response "Invoice is no longer a draft"
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appinvoice.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	inv, err := h.service.UpdateDetails(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// AddItem godoc
// @Summary      Add a settlement line
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Invoice ID" format(uuid)
// @Param        request body appinvoice.ItemRequest true "Line"
// @Success      201 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Failure      409 {object} dto.Response "Invoice is no longer a draft"
// @Router       /invoices/{id}/items [post]
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appinvoice.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	inv, err := h.service.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// UpdateItem godoc
// @Summary      Edit a settlement line
// @Description  Recomputes the line amount and the invoice totals from the billing bands.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Invoice ID" format(uuid)
// @Param        item_id path string                 true "Line ID" format(uuid)
// @Param        request body appinvoice.ItemRequest true "Line"
// @Success      200 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Router       /invoices/{id}/items/{item_id} [put]
func (h *InvoiceHandler) UpdateItem(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.parseUUIDParam(c, "item_id")
	if !ok {
		return
	}
	var req appinvoice.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	inv, err := h.service.UpdateItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// RemoveItem godoc
// @Summary      Remove a settlement line
// @Tags         invoices
// @Produce      json
// @Param        id      path string true "Invoice ID" format(uuid)
// @Param        item_id path string true "Line ID" format(uuid)
// @Success      200 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Router       /invoices/{id}/items/{item_id} [delete]
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.parseUUIDParam(c, "item_id")
	if !ok {
		return
	}
	inv, err := h.service.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Issue godoc
// @Summary      Issue an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Failure      409 {object} dto.Response "Invoice is not a draft"
// @Router       /invoices/{id}/issue [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.service.Issue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Send godoc
// @Summary      Mark an invoice as sent
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Failure      409 {object} dto.Response "Invoice is not issued"
// @Router       /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.service.Send(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Document godoc
// @Summary      Invoice PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {file} binary
// @Failure      502 {object} dto.Response "Rendering failed, retryable"
// @Router       /invoices/{id}/document [get]
func (h *InvoiceHandler) Document(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.InvoiceDocument(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.Document(c, doc)
}

// PaymentNotice godoc
// @Summary      Payment notice PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {file} binary
// @Failure      502 {object} dto.Response "Rendering failed, retryable"
// @Router       /invoices/{id}/payment-notice [get]
func (h *InvoiceHandler) PaymentNotice(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.PaymentNoticeDocument(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.Document(c, doc)
}
