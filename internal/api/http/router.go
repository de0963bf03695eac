package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/frigelar/esteira/internal/api/http/handlers"
	"github.com/frigelar/esteira/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Session           *handlers.SessionHandler
	Board             *handlers.BoardHandler
	SessionMiddleware *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/agents", cfg.Session.Agents)
	app.Post("/session/login", cfg.Session.Login)

	protected := app.Group("", cfg.SessionMiddleware.Handle)
	protected.Get("/session", cfg.Session.Current)
	protected.Post("/session/logout", cfg.Session.Logout)

	protected.Get("/board", cfg.Board.Board)
	protected.Post("/board/claim", cfg.Board.Claim)
	protected.Post("/board/finish", cfg.Board.Finish)
	protected.Post("/board/finish/confirm", cfg.Board.FinishConfirm)
	protected.Post("/board/finish/cancel", cfg.Board.FinishCancel)
	protected.Post("/board/refresh", cfg.Board.Refresh)
}
