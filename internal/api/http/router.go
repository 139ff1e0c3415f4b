package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moon-community/fto-queue-service/internal/api/http/handlers"
	"github.com/moon-community/fto-queue-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Queue           *handlers.QueueHandler
	Board           *handlers.BoardHandler
	AuthMiddleware  *auth.AuthMiddleware
	BoardAPIKeyHash string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	interactions := app.Group("/interactions", cfg.AuthMiddleware.Handle)
	interactions.Post("/queue/join", cfg.Queue.Join)
	interactions.Post("/queue/leave", cfg.Queue.Leave)

	boards := app.Group("/boards", auth.RequireAPIKey(cfg.BoardAPIKeyHash))
	boards.Get("/:channel_id/:message_id", cfg.Board.Get)
}
