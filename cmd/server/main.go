package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/bitesplus/bites-plus-server/internal/config"
	"github.com/bitesplus/bites-plus-server/internal/dto"
	"github.com/bitesplus/bites-plus-server/internal/handlers"
	"github.com/bitesplus/bites-plus-server/internal/logging"
	"github.com/bitesplus/bites-plus-server/internal/metrics"
	"github.com/bitesplus/bites-plus-server/internal/middleware"
	"github.com/bitesplus/bites-plus-server/internal/routes"
	"github.com/bitesplus/bites-plus-server/internal/services"
	"github.com/bitesplus/bites-plus-server/internal/store/memory"
	"github.com/bitesplus/bites-plus-server/internal/store/mongostore"
	"github.com/bitesplus/bites-plus-server/internal/store/pgstore"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	// Listing store
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	store, sink, err := openStore(connectCtx, cfg)
	cancelConnect()
	if err != nil {
		slog.Error("listing store unavailable", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	// Stored ERROR+ logs with 30-day retention, when the store can keep them
	var logHandler *logging.StoreHandler
	cleanupDone := make(chan struct{})
	if sink != nil {
		logHandler = logging.WithSink(sink)
		logging.StartCleanup(sink, cleanupDone)
	}

	// Services
	sessionService := services.NewSessionService(cfg)
	moderationService := services.NewModerationService()
	listingService := services.NewListingService(store, moderationService, cfg.StoreTimeout)

	// Handlers
	foodHandler := handlers.NewFoodHandler(listingService)
	sessionHandler := handlers.NewSessionHandler(sessionService, cfg)
	healthHandler := handlers.NewHealthHandler(store, cfg.StoreDriver)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(metrics.Middleware())
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, foodHandler, sessionHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")
	shutdown(app, logHandler, cleanupDone, store)
	slog.Info("server stopped")
}

// shutdown drains the server before flushing stored logs, so errors logged
// by in-flight requests still reach the store, and closes the store last.
func shutdown(app *fiber.App, logHandler *logging.StoreHandler, cleanupDone chan struct{}, store services.ListingStore) {
	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	if logHandler != nil {
		logHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		slog.Error("listing store close error", "error", err)
	}
}

// openStore connects the configured listing store. The sink is nil when the
// store cannot keep logs.
func openStore(ctx context.Context, cfg *config.Config) (services.ListingStore, logging.Sink, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		s, err := mongostore.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close(context.Background())
			return nil, nil, err
		}
		return s, s, nil
	case config.DriverPostgres:
		s, err := pgstore.Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.DriverMemory:
		slog.Warn("using in-memory listing store; listings are lost on restart")
		return memory.New(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
