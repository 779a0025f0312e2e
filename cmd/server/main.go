package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/edi/backend/internal/application/invoice"
	"github.com/edi/backend/internal/application/order"
	"github.com/edi/backend/internal/application/partner"
	"github.com/edi/backend/internal/application/reconcile"
	"github.com/edi/backend/internal/application/report"
	domainprinting "github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/infrastructure/cache"
	"github.com/edi/backend/internal/infrastructure/config"
	"github.com/edi/backend/internal/infrastructure/event"
	"github.com/edi/backend/internal/infrastructure/logger"
	"github.com/edi/backend/internal/infrastructure/notification"
	"github.com/edi/backend/internal/infrastructure/persistence"
	"github.com/edi/backend/internal/infrastructure/printing"
	"github.com/edi/backend/internal/infrastructure/scheduler"
	"github.com/edi/backend/internal/infrastructure/signature"
	"github.com/edi/backend/internal/infrastructure/storage"
	"github.com/edi/backend/internal/infrastructure/telemetry"
	"github.com/edi/backend/internal/interfaces/http/handler"
	"github.com/edi/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/edi/backend/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			EDI Back Office API
//	@version		1.0
//	@description	Orders, acceptance documents, SES invoices and e-signature reconciliation

//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	base, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, base); err != nil {
		base.Error("Server exited with error", zap.Error(err))
		_ = base.Sync()
		os.Exit(1)
	}
	_ = base.Sync()
}

func run(ctx context.Context, cfg *config.Config, base *zap.Logger) error {
	tel, err := telemetry.Setup(ctx, cfg.Telemetry, version, base)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			base.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	log := tel.Logs.Bridge(base)

	log.Info("Starting EDI back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.GormLevel))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracing(cfg.Telemetry, cfg.IsProduction()), log); err != nil {
		return fmt.Errorf("database tracing: %w", err)
	}
	log.Info("Database connected")

	scope := persistence.NewGormTransactionScope(db.DB)
	scope.SetLogger(log)

	idempotency, err := cache.NewIdempotencyStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = idempotency.Close() }()

	store, err := storage.NewContentStore(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("document store: %w", err)
	}

	renderer, closeRenderer, err := newRenderer(cfg.Renderer, log)
	if err != nil {
		return err
	}
	defer closeRenderer()

	businessMetrics, err := telemetry.NewBusinessMetrics(tel.Meter.Meter("edi-backend/business"), log)
	if err != nil {
		return fmt.Errorf("business metrics: %w", err)
	}
	renderer.SetObserver(businessMetrics)

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewIdempotentHandler(businessMetrics, idempotency, cfg.Idempotency.TTL, log))
	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	defer func() {
		if err := bus.Stop(context.WithoutCancel(ctx)); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	provider, err := signature.NewProvider(cfg.Signature, log)
	if err != nil {
		return err
	}
	mailer := notification.NewLogMailer(cfg.Notification.From, log)
	company := companyInfo(cfg.Company)

	orderService := order.NewService(scope, renderer, store, company)
	orderService.SetLogger(log)
	orderService.SetSignatureProvider(provider, cfg.Signature.RequestOnPublish)
	orderService.SetStaffMailer(mailer, cfg.Notification.StaffRecipients)
	orderService.SetEventPublisher(bus)

	invoiceService := invoice.NewService(scope, renderer, company)
	invoiceService.SetLogger(log)
	invoiceService.SetEventPublisher(bus)

	customerService := partner.NewCustomerService(scope)
	customerService.SetLogger(log)
	customerService.SetEventPublisher(bus)
	projectService := partner.NewProjectService(scope)

	reconciler := reconcile.NewService(scope, orderService, idempotency)
	reconciler.SetLogger(log)
	reconciler.SetTTL(cfg.Idempotency.TTL)

	var jobs handler.JobLister
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(scheduler.Config{JobTimeout: cfg.Scheduler.JobTimeout}, log)
		if err != nil {
			return err
		}
		sched.SetIdempotencyStore(idempotency)
		notices := partner.NewNoticeService(scope, mailer, company.Name, cfg.Notification.SiteURL)
		notices.SetLogger(log)
		if err := sched.RegisterPartnerNotice(cfg.Scheduler.PartnerNoticeCron, notices); err != nil {
			return err
		}
		jobs = sched
	}

	checks := map[string]handler.Pinger{
		"database": handler.PingFunc(func(context.Context) error { return db.Ping() }),
	}
	engine, err := router.New(router.Options{
		Production:  cfg.IsProduction(),
		HTTP:        cfg.HTTP,
		ServiceName: cfg.Telemetry.ServiceName,
		Swagger:     cfg.Swagger.Enabled,
		Tracing:     cfg.Telemetry.Enabled,
		Meter:       httpMeter(tel),
	}, router.Handlers{
		Customer:  handler.NewCustomerHandler(customerService),
		Project:   handler.NewProjectHandler(projectService),
		Order:     handler.NewOrderHandler(orderService),
		Invoice:   handler.NewInvoiceHandler(invoiceService),
		Dashboard: handler.NewDashboardHandler(report.NewDashboardService(scope)),
		Webhook:   handler.NewWebhookHandler(reconciler),
		System:    handler.NewSystemHandler(version, checks, jobs),
	}, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if sched != nil {
		sched.Start()
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		var errs []error
		if sched != nil {
			errs = append(errs, sched.Shutdown())
		}
		errs = append(errs, srv.Shutdown(shutdownCtx))
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

// newRenderer builds the document renderer on the configured PDF engine
func newRenderer(cfg config.RendererConfig, log *zap.Logger) (*printing.DocumentRenderer, func(), error) {
	templates, err := printing.NewTemplateEngine()
	if err != nil {
		return nil, nil, fmt.Errorf("document templates: %w", err)
	}

	var engine printing.PDFEngine
	switch cfg.Engine {
	case "html":
		engine = printing.NewHTMLEngine()
	default:
		engine, err = printing.NewChromedpEngine(&printing.ChromedpConfig{
			Timeout:   cfg.Timeout,
			RemoteURL: cfg.RemoteURL,
			NoSandbox: cfg.NoSandbox,
			Logger:    log,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("chromedp engine: %w", err)
		}
	}
	log.Info("Document renderer ready", zap.String("engine", cfg.Engine))

	closeFn := func() {
		if err := engine.Close(); err != nil {
			log.Warn("Error closing PDF engine", zap.Error(err))
		}
	}
	return printing.NewDocumentRenderer(templates, engine, log), closeFn, nil
}

func companyInfo(c config.CompanyConfig) domainprinting.CompanyInfo {
	return domainprinting.CompanyInfo{
		Name:               c.Name,
		PostalCode:         c.PostalCode,
		Address:            c.Address,
		Tel:                c.Tel,
		RepresentativeName: c.Representative,
		RegistrationNo:     c.RegistrationNo,
		ResponsiblePerson:  c.ResponsiblePerson,
		ContactPerson:      c.ContactPerson,
	}.WithDefaults()
}

func httpMeter(tel *telemetry.Telemetry) metric.Meter {
	if !tel.Meter.IsEnabled() {
		return nil
	}
	return tel.Meter.Meter("edi-backend/http")
}
