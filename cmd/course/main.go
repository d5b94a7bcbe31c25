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
	"github.com/nexis/campus-services/internal/config"
	"github.com/nexis/campus-services/internal/events"
	"github.com/nexis/campus-services/internal/observability"
	"github.com/nexis/campus-services/internal/persistence"
	"github.com/nexis/campus-services/internal/repository"
	"github.com/nexis/campus-services/internal/service"
	"github.com/nexis/campus-services/internal/token"
	"github.com/nexis/campus-services/internal/worker"
)

func main() {
	cfg, err := config.Load("course-service", "8082")
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

	dispatcher := events.NewInMemoryDispatcher(logger)
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notifications)

	pool := pg.PoolHandle()
	courseService := service.NewCourseService(
		repository.NewCourseRepository(pool),
		repository.NewScheduleRepository(pool),
		repository.NewEnrollmentRepository(pool),
		dispatcher,
	)

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	soapServer := soap.NewServer(cfg.App.Name, tokens, logger)
	soap.RegisterCourseEndpoint(soapServer, courseService)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	health := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, nil, metrics)
	app.Get("/health/live", health.Live)
	app.Get("/health/ready", health.Ready)
	app.Get("/debug/metrics", health.Metrics)

	// clients may suffix the operation name on the endpoint path; the
	// dispatcher keys on the body element either way
	app.Get("/api/ws/course", soapServer.Metadata)
	app.Post("/api/ws/course", soapServer.Handle)
	app.Post("/api/ws/course/*", soapServer.Handle)

	go func() {
		logger.Info("course service listening", zap.String("addr", cfg.App.Addr()))
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
