package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-desk/internal/api/http/handlers"
	"github.com/spec-kit/asset-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Assets         *handlers.AssetsHandler
	Licenses       *handlers.LicensesHandler
	Specifications *handlers.SpecificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireActor())
	admin := auth.RequireAdmin()

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:ticketId", cfg.Tickets.GetTicket)
	tickets.Patch("/:ticketId", admin, cfg.Tickets.PatchTicket)
	tickets.Delete("/:ticketId", admin, cfg.Tickets.DeleteTicket)
	api.Get("/admin/tickets/pending", admin, cfg.Tickets.ListPending)

	assets := api.Group("/assets", admin)
	assets.Post("/", cfg.Assets.CreateAsset)
	assets.Get("/", cfg.Assets.ListAssets)
	assets.Get("/:id", cfg.Assets.GetAsset)
	assets.Patch("/:id", cfg.Assets.PatchAsset)
	assets.Delete("/:id", cfg.Assets.DeleteAsset)
	assets.Post("/:id/assign", cfg.Assets.AssignAsset)
	assets.Get("/:id/history", cfg.Assets.History)

	licenses := api.Group("/licenses", admin)
	licenses.Post("/", cfg.Licenses.CreateLicenses)
	licenses.Get("/", cfg.Licenses.ListLicenses)
	licenses.Get("/stats", cfg.Licenses.Stats)
	licenses.Get("/:id", cfg.Licenses.GetLicense)
	licenses.Patch("/:id", cfg.Licenses.PatchLicense)
	licenses.Delete("/:id", cfg.Licenses.DeleteLicense)
	licenses.Post("/:id/assign", cfg.Licenses.AssignLicense)
	licenses.Get("/:id/history", cfg.Licenses.History)

	specs := api.Group("/specifications")
	specs.Get("/", cfg.Specifications.List)
	specs.Get("/:id", cfg.Specifications.Get)
	specs.Post("/", admin, cfg.Specifications.Create)
	specs.Patch("/:id", admin, cfg.Specifications.Patch)
	specs.Delete("/:id", admin, cfg.Specifications.Delete)
}
