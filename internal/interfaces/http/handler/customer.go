package handler

import (
	"context"

	apppartner "github.com/edi/backend/internal/application/partner"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// CustomerService is the customer use-case surface the handler needs
type CustomerService interface {
	Create(ctx context.Context, req apppartner.CustomerRequest) (*apppartner.CustomerResponse, error)
	Update(ctx context.Context, id string, req apppartner.CustomerRequest) (*apppartner.CustomerResponse, error)
	Get(ctx context.Context, id string) (*apppartner.CustomerResponse, error)
	List(ctx context.Context, req apppartner.ListRequest) (*shared.Paginated[apppartner.CustomerResponse], error)
	Delete(ctx context.Context, id string) (*apppartner.DeleteCustomerResponse, error)
	SetContractProgress(ctx context.Context, customerID string, req apppartner.ContractProgressRequest) (*apppartner.ContractProgressResponse, error)
	ListContractProgress(ctx context.Context, req apppartner.ListContractProgressRequest) (*shared.Paginated[apppartner.ContractProgressResponse], error)
	RegisterPartnerUser(ctx context.Context, customerID string, req apppartner.RegisterPartnerUserRequest) (*apppartner.PartnerUserResponse, error)
	ListEmailLogs(ctx context.Context, customerID string, req apppartner.ListRequest) (*shared.Paginated[apppartner.EmailLogResponse], error)
}

// CustomerHandler handles customer master-data endpoints
type CustomerHandler struct {
	BaseHandler
	service CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(service CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// Create godoc
// @Summary      Create a customer
// @Description  Register a partner company. The 10-digit customer ID is allocated by the server.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body apppartner.CustomerRequest true "Customer"
// @Success      201 {object} dto.Response{data=apppartner.CustomerResponse}
// @Failure      400 {object} dto.Response
// @Failure      503 {object} dto.Response "Customer ID sequence exhausted"
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req apppartner.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	customer, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// List godoc
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        search    query string false "Name or ID fragment"
// @Success      200 {object} dto.Response{data=[]apppartner.CustomerResponse,meta=dto.Meta}
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var req apppartner.ListRequest
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
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response{data=apppartner.CustomerResponse}
// @Failure      404 {object} dto.Response
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	customer, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Update godoc
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Customer ID"
// @Param        request body apppartner.CustomerRequest true "Customer"
// @Success      200 {object} dto.Response{data=apppartner.CustomerResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response "Concurrent modification"
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	var req apppartner.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	customer, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete godoc
// @Summary      Delete a customer
// @Description  Removes the customer with its partner logins and mail log. Customers referenced by orders cannot be deleted.
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response{data=apppartner.DeleteCustomerResponse}
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response "Customer has orders"
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SetContractProgress godoc
// @Summary      Set onboarding status
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id      path string                             true "Customer ID"
// @Param        request body apppartner.ContractProgressRequest true "Status"
// @Success      200 {object} dto.Response{data=apppartner.ContractProgressResponse}
// @Failure      404 {object} dto.Response
// @Router       /customers/{id}/contract-progress [put]
func (h *CustomerHandler) SetContractProgress(c *gin.Context) {
	var req apppartner.ContractProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	progress, err := h.service.SetContractProgress(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, progress)
}

// ListContractProgress godoc
// @Summary      List onboarding statuses
// @Tags         customers
// @Produce      json
// @Param        status query string false "Filter by status" Enums(INVITED, INFO_DONE, CONTRACT_SENT, COMPLETED)
// @Success      200 {object} dto.Response{data=[]apppartner.ContractProgressResponse,meta=dto.Meta}
// @Router       /contract-progress [get]
func (h *CustomerHandler) ListContractProgress(c *gin.Context) {
	var req apppartner.ListContractProgressRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.service.ListContractProgress(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// RegisterPartnerUser godoc
// @Summary      Register a partner login
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id      path string                                true "Customer ID"
// @Param        request body apppartner.RegisterPartnerUserRequest true "Login"
// @Success      201 {object} dto.Response{data=apppartner.PartnerUserResponse}
// @Failure      404 {object} dto.Response
// @Router       /customers/{id}/partner-users [post]
func (h *CustomerHandler) RegisterPartnerUser(c *gin.Context) {
	var req apppartner.RegisterPartnerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	user, err := h.service.RegisterPartnerUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// ListEmailLogs godoc
// @Summary      List mails sent to a customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response{data=[]apppartner.EmailLogResponse,meta=dto.Meta}
// @Router       /customers/{id}/email-logs [get]
func (h *CustomerHandler) ListEmailLogs(c *gin.Context) {
	var req apppartner.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.service.ListEmailLogs(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}
