package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/edi/backend/internal/infrastructure/scheduler"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f(ctx)
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// JobLister exposes the registered background jobs
type JobLister interface {
	Jobs() []scheduler.JobState
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration"`
}

// SystemHandler serves liveness and operational information
type SystemHandler struct {
	BaseHandler
	version string
	checks  map[string]Pinger
	jobs    JobLister
}

// NewSystemHandler creates a new SystemHandler. jobs may be nil when the
// scheduler is disabled.
func NewSystemHandler(version string, checks map[string]Pinger, jobs JobLister) *SystemHandler {
	return &SystemHandler{version: version, checks: checks, jobs: jobs}
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Version: h.version}
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}
	resp.Duration = time.Since(start).String()

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// Jobs godoc
// @Summary      Background jobs
// @Description  Schedule and last outcome of every registered job. Empty when the scheduler is disabled.
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=[]scheduler.JobState}
// @Router       /system/jobs [get]
func (h *SystemHandler) Jobs(c *gin.Context) {
	if h.jobs == nil {
		h.Success(c, []scheduler.JobState{})
		return
	}
	jobs := h.jobs.Jobs()
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	h.Success(c, jobs)
}
