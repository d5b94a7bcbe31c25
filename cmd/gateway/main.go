package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/nexis/campus-services/internal/config"
	"github.com/nexis/campus-services/internal/gateway"
	"github.com/nexis/campus-services/internal/observability"
	"github.com/nexis/campus-services/internal/token"
)

func main() {
	cfg, err := config.Load("api-gateway", "8080")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	policy := gateway.DefaultPolicy()
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
	})

	// explicit, statically ordered chain: strip -> cors -> authn -> authz -> proxy
	app.Use(gateway.StripTrustedHeaders())
	app.Use(cors.New())
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(gateway.Authentication(tokens, logger))
	app.Use(gateway.Authorization(policy, logger))
	app.All("/*", gateway.Proxy(cfg.Gateway, logger))

	go func() {
		logger.Info("gateway listening", zap.String("addr", cfg.App.Addr()))
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
