package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/nexis/campus-services/internal/api/http"
	"github.com/nexis/campus-services/internal/api/http/handlers"
	"github.com/nexis/campus-services/internal/api/soap"
	"github.com/nexis/campus-services/internal/auth"
	"github.com/nexis/campus-services/internal/config"
	"github.com/nexis/campus-services/internal/domain"
	"github.com/nexis/campus-services/internal/events"
	"github.com/nexis/campus-services/internal/observability"
	"github.com/nexis/campus-services/internal/persistence"
	"github.com/nexis/campus-services/internal/repository"
	"github.com/nexis/campus-services/internal/service"
	"github.com/nexis/campus-services/internal/token"
	"github.com/nexis/campus-services/internal/worker"
)

func main() {
	cfg, err := config.Load("billing-service", "8083")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher(logger)
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notifications)

	pool := pg.PoolHandle()
	billingService := service.NewBillingService(
		repository.NewInvoiceRepository(pool),
		repository.NewPaymentRepository(pool),
		redis,
		dispatcher,
	)

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	soapServer := soap.NewServer(cfg.App.Name, tokens, logger)
	soap.RegisterBillingEndpoint(soapServer, billingService)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	health := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics)
	app.Get("/health/live", health.Live)
	app.Get("/health/ready", health.Ready)
	app.Get("/debug/metrics", health.Metrics)

	// clients may suffix the operation name on the endpoint path; the
	// dispatcher keys on the body element either way
	app.Get("/api/ws/billing", soapServer.Metadata)
	app.Post("/api/ws/billing", soapServer.Handle)
	app.Post("/api/ws/billing/*", soapServer.Handle)

	// REST companions matching the gateway policy fragments
	billingHandler := handlers.NewBillingHandler(billingService)
	authMiddleware := auth.NewMiddleware(tokens)
	rest := app.Group("/api/billing", authMiddleware.Handle)
	rest.Get("/invoice/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleStudent), billingHandler.GetInvoice)
	rest.Post("/payment", auth.RequireRole(domain.RoleAdmin, domain.RoleStudent), billingHandler.RecordPayment)
	rest.Get("/payments/:studentId", auth.RequireRole(domain.RoleAdmin), billingHandler.ListPayments)

	go func() {
		logger.Info("billing service listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
