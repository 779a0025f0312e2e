package handler

import (
	"context"

	"github.com/edi/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// DashboardService provides the back-office headline counts
type DashboardService interface {
	Summary(ctx context.Context, customerID *string) (*report.DashboardSummary, error)
}

// DashboardHandler serves the dashboard
type DashboardHandler struct {
	BaseHandler
	service DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary      Dashboard counts
// @Description  Unconfirmed orders, received orders and open invoices, optionally for one customer.
// @Tags         dashboard
// @Produce      json
// @Param        customer_id query string false "Scope the counts to one customer"
// @Success      200 {object} dto.Response{data=report.DashboardSummary}
// @Router       /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	var customerID *string
	if id := c.Query("customer_id"); id != "" {
		customerID = &id
	}
	summary, err := h.service.Summary(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
