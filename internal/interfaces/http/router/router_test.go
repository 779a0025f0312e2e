package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edi/backend/internal/infrastructure/config"
	"github.com/edi/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testHandlers() Handlers {
	return Handlers{
		Customer:  handler.NewCustomerHandler(nil),
		Project:   handler.NewProjectHandler(nil),
		Order:     handler.NewOrderHandler(nil),
		Invoice:   handler.NewInvoiceHandler(nil),
		Dashboard: handler.NewDashboardHandler(nil),
		Webhook:   handler.NewWebhookHandler(nil),
		System:    handler.NewSystemHandler("test", nil, nil),
	}
}

func TestDomainGroup(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("test", "/test").
		Use(func(c *gin.Context) { c.Header("X-Group", "test") }).
		GET("/items", func(c *gin.Context) { c.String(http.StatusOK, "items") }).
		DELETE("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
	assert.Equal(t, "test", g.Name())
	assert.Equal(t, "/test", g.Prefix())

	NewRouter(engine).Register(g).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/items", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test", w.Header().Get("X-Group"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/test/items/42", nil))
	assert.Equal(t, "42", w.Body.String())
}

func TestNew_MountsRoutes(t *testing.T) {
	engine, err := New(Options{HTTP: config.HTTPConfig{MaxBodySize: 1 << 20}}, testHandlers(), zap.NewNop())
	require.NoError(t, err)

	registered := map[string]bool{}
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"POST /api/v1/customers",
		"DELETE /api/v1/customers/:id",
		"PUT /api/v1/customers/:id/contract-progress",
		"POST /api/v1/customers/:id/partner-users",
		"GET /api/v1/customers/:id/email-logs",
		"GET /api/v1/contract-progress",
		"PUT /api/v1/projects/:id",
		"POST /api/v1/orders/:id/publish",
		"POST /api/v1/orders/:id/acknowledge",
		"POST /api/v1/orders/:id/approve",
		"GET /api/v1/orders/:id/acceptance",
		"DELETE /api/v1/invoices/:id/items/:item_id",
		"POST /api/v1/invoices/:id/send",
		"GET /api/v1/invoices/:id/payment-notice",
		"GET /api/v1/dashboard",
		"POST /api/v1/webhooks/signature",
		"GET /api/v1/system/jobs",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
	assert.False(t, registered["GET /swagger/*any"])
}

func TestNew_Swagger(t *testing.T) {
	engine, err := New(Options{Swagger: true}, testHandlers(), zap.NewNop())
	require.NoError(t, err)

	found := false
	for _, r := range engine.Routes() {
		if r.Path == "/swagger/*any" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestNew_HealthCarriesRequestID(t *testing.T) {
	engine, err := New(Options{}, testHandlers(), zap.NewNop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
