package handler

import (
	"context"

	apppartner "github.com/edi/backend/internal/application/partner"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// ProjectService is the project use-case surface the handler needs
type ProjectService interface {
	Create(ctx context.Context, req apppartner.ProjectRequest) (*apppartner.ProjectResponse, error)
	Rename(ctx context.Context, id string, req apppartner.ProjectRequest) (*apppartner.ProjectResponse, error)
	List(ctx context.Context, req apppartner.ListRequest) (*shared.Paginated[apppartner.ProjectResponse], error)
}

// ProjectHandler handles project endpoints
type ProjectHandler struct {
	BaseHandler
	service ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(service ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// Create godoc
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body apppartner.ProjectRequest true "Project"
// @Success      201 {object} dto.Response{data=apppartner.ProjectResponse}
// @Failure      400 {object} dto.Response
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req apppartner.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	project, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, project)
}

// List godoc
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Success      200 {object} dto.Response{data=[]apppartner.ProjectResponse,meta=dto.Meta}
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
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

// Rename godoc
// @Summary      Rename a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Project ID"
// @Param        request body apppartner.ProjectRequest true "Project"
// @Success      200 {object} dto.Response{data=apppartner.ProjectResponse}
// @Failure      404 {object} dto.Response
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Rename(c *gin.Context) {
	var req apppartner.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	project, err := h.service.Rename(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}
