package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eedition-gateway/internal/api/http/handlers"
	"github.com/spec-kit/eedition-gateway/internal/auth"
)

// ValidateTokenRoute is the fixed path the external reader service calls.
const ValidateTokenRoute = "/newspack-tecnavia/v1/validate-token"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Redirect *handlers.RedirectHandler
	Validate *handlers.ValidateHandler
	Hooks    *handlers.HooksHandler
	Identity *auth.IdentityMiddleware
	// EEditionEndpoint is the configured browser-facing redirect path.
	EEditionEndpoint string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	// Token validation authenticates by the token itself; no transport auth.
	app.Post(ValidateTokenRoute, cfg.Validate.Handle)

	app.Post("/hooks/login", cfg.Hooks.Login)

	app.Get(cfg.EEditionEndpoint, cfg.Identity.Identify, cfg.Redirect.Handle)
}
