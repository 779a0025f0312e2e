// Package router assembles the gin engine and mounts the back office API.
package router

import (
	"net/http"

	"github.com/edi/backend/internal/infrastructure/config"
	"github.com/edi/backend/internal/infrastructure/logger"
	"github.com/edi/backend/internal/interfaces/http/handler"
	"github.com/edi/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// APIPrefix is the mount point of every versioned route
const APIPrefix = "/api/v1"

// RouteRegistrar registers its routes on a router group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and mounts them under the API prefix
type Router struct {
	engine     *gin.Engine
	prefix     string
	registrars []RouteRegistrar
}

// NewRouter creates a Router mounting at APIPrefix
func NewRouter(engine *gin.Engine) *Router {
	return &Router{engine: engine, prefix: APIPrefix}
}

// Register adds a registrar; routes are added by Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registered group
func (r *Router) Setup() {
	api := r.engine.Group(r.prefix)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// DomainGroup is a named set of routes sharing a prefix
type DomainGroup struct {
	name       string
	prefix     string
	routes     []route
	middleware []gin.HandlerFunc
}

// NewDomainGroup creates an empty group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware applied to every route of the group
func (dg *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, mw...)
	return dg
}

// Handle adds a route for method and path
func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, handlers...)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, handlers...)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, path, handlers...)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, path, handlers...)
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, rt := range dg.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string { return dg.name }

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string { return dg.prefix }

// Handlers bundles the HTTP handlers served by the back office
type Handlers struct {
	Customer  *handler.CustomerHandler
	Project   *handler.ProjectHandler
	Order     *handler.OrderHandler
	Invoice   *handler.InvoiceHandler
	Dashboard *handler.DashboardHandler
	Webhook   *handler.WebhookHandler
	System    *handler.SystemHandler
}

// Groups returns the API route groups for h
func Groups(h Handlers) []RouteRegistrar {
	customers := NewDomainGroup("customers", "/customers").
		POST("", h.Customer.Create).
		GET("", h.Customer.List).
		GET("/:id", h.Customer.GetByID).
		PUT("/:id", h.Customer.Update).
		DELETE("/:id", h.Customer.Delete).
		PUT("/:id/contract-progress", h.Customer.SetContractProgress).
		POST("/:id/partner-users", h.Customer.RegisterPartnerUser).
		GET("/:id/email-logs", h.Customer.ListEmailLogs)

	onboarding := NewDomainGroup("contract-progress", "/contract-progress").
		GET("", h.Customer.ListContractProgress)

	projects := NewDomainGroup("projects", "/projects").
		POST("", h.Project.Create).
		GET("", h.Project.List).
		PUT("/:id", h.Project.Rename)

	orders := NewDomainGroup("orders", "/orders").
		POST("", h.Order.Create).
		GET("", h.Order.List).
		GET("/:id", h.Order.GetByID).
		PUT("/:id", h.Order.Update).
		POST("/:id/items", h.Order.AddItem).
		PUT("/:id/items/:item_id", h.Order.UpdateItem).
		DELETE("/:id/items/:item_id", h.Order.RemoveItem).
		POST("/:id/publish", h.Order.Publish).
		POST("/:id/acknowledge", h.Order.Acknowledge).
		POST("/:id/approve", h.Order.Approve).
		GET("/:id/document", h.Order.Document).
		GET("/:id/acceptance", h.Order.Acceptance)

	invoices := NewDomainGroup("invoices", "/invoices").
		POST("", h.Invoice.Create).
		GET("", h.Invoice.List).
		GET("/:id", h.Invoice.GetByID).
		PUT("/:id", h.Invoice.Update).
		POST("/:id/items", h.Invoice.AddItem).
		PUT("/:id/items/:item_id", h.Invoice.UpdateItem).
		DELETE("/:id/items/:item_id", h.Invoice.RemoveItem).
		POST("/:id/issue", h.Invoice.Issue).
		POST("/:id/send", h.Invoice.Send).
		GET("/:id/document", h.Invoice.Document).
		GET("/:id/payment-notice", h.Invoice.PaymentNotice)

	dashboard := NewDomainGroup("dashboard", "/dashboard").
		GET("", h.Dashboard.Summary)

	webhooks := NewDomainGroup("webhooks", "/webhooks").
		POST("/signature", h.Webhook.Signature)

	system := NewDomainGroup("system", "/system").
		GET("/jobs", h.System.Jobs)

	return []RouteRegistrar{customers, onboarding, projects, orders, invoices, dashboard, webhooks, system}
}

// Options configures the engine middleware stack
type Options struct {
	Production  bool
	HTTP        config.HTTPConfig
	ServiceName string
	Swagger     bool

	// Tracing wraps requests in otelgin spans using TracerProvider
	Tracing        bool
	TracerProvider trace.TracerProvider
	// Meter records HTTP metrics when non-nil
	Meter metric.Meter
}

// New builds the gin engine with the middleware stack and every route mounted.
//
// Middleware order: request id, recovery, request log, security headers, CORS,
// tracing, span enrichment, metrics, body limit.
func New(opts Options, h Handlers, log *zap.Logger) (*gin.Engine, error) {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName:    opts.ServiceName,
			Enabled:        opts.Tracing,
			SkipPaths:      []string{"/health", "/swagger"},
			TracerProvider: opts.TracerProvider,
		}),
		middleware.SpanEnricher(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			Meter:   opts.Meter,
			Enabled: opts.Meter != nil,
			Logger:  log,
		}),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)

	engine.GET("/health", h.System.Health)
	if opts.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	NewRouter(engine).Register(Groups(h)...).Setup()
	return engine, nil
}
