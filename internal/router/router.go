package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushq/placement-go-api/internal/config"
	"github.com/campushq/placement-go-api/internal/handler"
	"github.com/campushq/placement-go-api/internal/middleware"
	"github.com/campushq/placement-go-api/internal/models"
	"github.com/campushq/placement-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssessmentHandler *handler.AssessmentHandler
	AttemptHandler    *handler.AttemptHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	assessments := api.Group("/assessments", jwtMiddleware)

	// Student routes first: their static segments (/live, /:id/take) must not
	// be captured by the TPO /:id routes.
	if deps.AttemptHandler != nil {
		deps.AttemptHandler.Register(assessments, middleware.RequireRole(models.RoleStudent))
	}
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.Register(assessments, middleware.RequireRole(models.RoleTPO))
	}
}
