package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/txomin/geoapi/internal/pkg/metrics"
)

// SetupRoutes registers the proxy's REST routes and middleware.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Request ID
	app.Use(requestid.New())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Security headers
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// Upstream-backed endpoints. The 60s ceiling leaves room for the
	// client's own retry budget.
	v1 := app.Group("/v1")
	v1.Get("/elevation", timeout.NewWithContext(ElevationHandler(deps), 60*time.Second))
	v1.Get("/elevation/path", timeout.NewWithContext(ElevationPathHandler(deps), 60*time.Second))
	v1.Get("/geocode", timeout.NewWithContext(GeocodeHandler(deps), 60*time.Second))
	v1.Get("/geocode/reverse", timeout.NewWithContext(ReverseGeocodeHandler(deps), 60*time.Second))
	v1.Get("/directions", timeout.NewWithContext(DirectionsHandler(deps), 60*time.Second))
}
