package routes

import (
	"time"

	"github.com/bitesplus/bites-plus-server/internal/config"
	"github.com/bitesplus/bites-plus-server/internal/handlers"
	"github.com/bitesplus/bites-plus-server/internal/metrics"
	"github.com/bitesplus/bites-plus-server/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	foodHandler *handlers.FoodHandler,
	sessionHandler *handlers.SessionHandler,
	healthHandler *handlers.HealthHandler,
) {
	// General rate limiter: 60 req/min per IP
	app.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Next:              func(c *fiber.Ctx) bool { return c.Path() == "/metrics" },
	}))

	app.Get("/", healthHandler.Banner)
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// Session endpoints: 10 req/min per IP (stricter)
	session := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
	app.Post("/signin", session, sessionHandler.SignIn)
	app.Post("/signout", session, sessionHandler.SignOut)

	// Public reads. Owned lists on /foods need a session.
	app.Get("/food/:id", foodHandler.Get)
	app.Get("/foods", middleware.SessionRequiredWhen(cfg, handlers.OwnedListQuery), foodHandler.List)

	// Mutations (session required)
	protected := middleware.SessionRequired(cfg)
	app.Post("/food", protected, foodHandler.Create)
	app.Put("/food/:id", protected, foodHandler.Replace)
	app.Post("/food/:id/request", protected, foodHandler.Request)
	app.Patch("/food/:id", protected, foodHandler.CancelRequest)
	app.Delete("/food/:id", protected, foodHandler.Delete)
}
