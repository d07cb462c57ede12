package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/observability"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
	"github.com/spec-kit/ticket-tracker/internal/scheduler"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Reminders      *handlers.RemindersHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	tickets := protected.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/archive", cfg.Tickets.ListArchive)
	tickets.Patch("/:position/status", cfg.Tickets.UpdateStatus)
	tickets.Delete("/:id", cfg.Tickets.RemoveTicket)

	reminders := protected.Group("/reminders")
	reminders.Get("/", cfg.Reminders.ListReminders)
	reminders.Post("/", cfg.Reminders.CreateReminder)
	reminders.Get("/archive", cfg.Reminders.ListArchive)
	reminders.Get("/schedule", cfg.Reminders.ListScheduled)
	reminders.Post("/schedule", cfg.Reminders.Schedule)
	reminders.Delete("/schedule/:job", cfg.Reminders.CancelScheduled)
	reminders.Patch("/:position/status", cfg.Reminders.UpdateStatus)
	reminders.Delete("/:id", cfg.Reminders.RemoveReminder)
}

// ServerDependencies bundles everything the HTTP shell needs.
type ServerDependencies struct {
	App       config.AppConfig
	Storage   config.StorageConfig
	Tracker   *service.Tracker
	Auth      *service.AuthService
	Scheduler *scheduler.Scheduler
	Postgres  *persistence.Postgres
	Redis     *persistence.Redis
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

// NewServer builds the fiber app with middlewares and routes attached.
func NewServer(deps ServerDependencies) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               deps.App.Name,
		DisableStartupMessage: true,
		UnescapePath:          true,
	})
	RegisterMiddlewares(app, logger, deps.Metrics, deps.App.RequestTimeout())

	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(deps.App.Name, deps.App.Version, deps.Storage.DataDir, deps.Postgres, deps.Redis),
		Auth:           handlers.NewAuthHandler(deps.Auth),
		Tickets:        handlers.NewTicketsHandler(deps.Tracker),
		Reminders:      handlers.NewRemindersHandler(deps.Tracker, deps.Scheduler),
		Metrics:        deps.Metrics,
		AuthMiddleware: auth.NewAuthMiddleware(deps.Auth.TokenManager()),
	})
	return app
}
