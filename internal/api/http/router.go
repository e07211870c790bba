package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/api/http/handlers"
	"github.com/spec-kit/event-ticketing/internal/auth"
	"github.com/spec-kit/event-ticketing/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Accounts       *handlers.AccountsHandler
	Ledger         *handlers.LedgerHandler
	Events         *handlers.EventsHandler
	Payments       *handlers.PaymentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Snapshot)

	api := app.Group("/api/v1")
	authed := cfg.AuthMiddleware.Handle
	staffOnly := auth.RequireRole(domain.RoleOrganizer, domain.RoleAdmin)

	api.Post("/register", cfg.Accounts.Register)
	api.Post("/activate-user", cfg.Accounts.Activate)
	api.Post("/login-user", cfg.Accounts.Login)
	api.Post("/social-login", cfg.Accounts.SocialLogin)
	api.Get("/refresh-token", cfg.Accounts.Refresh)
	api.Post("/forgot-password", cfg.Accounts.ForgotPassword)
	api.Post("/reset-password", cfg.Accounts.ResetPassword)
	api.Get("/logout-user", authed, cfg.Accounts.Logout)
	api.Get("/me", authed, cfg.Accounts.Me)
	api.Put("/update-user", authed, cfg.Accounts.UpdateInfo)
	api.Put("/update-password", authed, cfg.Accounts.UpdatePassword)
	api.Post("/update-profile-picture", authed, cfg.Accounts.UpdateAvatar)
	api.Post("/avatar-upload-url", authed, cfg.Accounts.AvatarUploadURL)

	api.Post("/post-ticket", authed, cfg.Ledger.PostTicket)
	api.Post("/get-tickets", authed, cfg.Ledger.GetTickets)
	api.Post("/scan-tickets", authed, staffOnly, cfg.Ledger.ScanTicket)
	api.Post("/ticket-data", authed, staffOnly, cfg.Ledger.TicketData)
	api.Post("/get-prices", authed, staffOnly, cfg.Ledger.WeeklyPrices)

	api.Post("/payment", authed, cfg.Payments.CreateIntent)

	api.Get("/all-tickets", cfg.Events.List)
	api.Post("/search-tickets", cfg.Events.Search)
	api.Post("/get-user-ticket", cfg.Events.ListByOrganizer)
	api.Post("/ticket-detail", authed, cfg.Events.Detail)
	api.Post("/create-ticket", authed, staffOnly, cfg.Events.Create)
	api.Post("/event-image-upload-url", authed, staffOnly, cfg.Events.ImageUploadURL)
}
