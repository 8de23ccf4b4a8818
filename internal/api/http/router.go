package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/membership-portal/internal/api/http/handlers"
	"github.com/spec-kit/membership-portal/internal/auth"
	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Session           *handlers.SessionHandler
	Tickets           *handlers.TicketsHandler
	Members           *handlers.MembersHandler
	SessionMiddleware *auth.SessionMiddleware
	Gate              *auth.Gate
	Policy            *auth.CapabilityPolicy
	Metrics           *observability.Metrics
}

// Gate requirements of the protected views.
var (
	ticketManagement = auth.RequireRole(string(domain.RoleAdmin))
	scopedMembers    = auth.RequireAnyOf(
		string(domain.RoleSambhagManager),
		string(domain.RoleDistrictManager),
		string(domain.RoleBlockManager),
		string(domain.RoleAdmin),
	)
)

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	app.Post("/auth/login", cfg.Session.Login)

	api := app.Group("/api", cfg.SessionMiddleware.Handle)
	signedIn := cfg.Gate.Protect(auth.AnyAuthenticated(), cfg.Metrics)
	api.Get("/me", signedIn, cfg.Session.Me)
	api.Get("/labels", signedIn, cfg.Session.Labels)

	tickets := api.Group("/tickets", cfg.Gate.Protect(ticketManagement, cfg.Metrics))
	tickets.Get("/", cfg.Policy.RequireCapability(auth.CapTicketsRead), cfg.Tickets.ListTickets)
	tickets.Get("/stats", cfg.Policy.RequireCapability(auth.CapTicketsRead), cfg.Tickets.Stats)
	tickets.Get("/:id", cfg.Policy.RequireCapability(auth.CapTicketsRead), cfg.Tickets.GetTicket)
	tickets.Post("/", cfg.Policy.RequireCapability(auth.CapTicketsManage), cfg.Tickets.SubmitTicket)
	tickets.Post("/:id/transition", cfg.Policy.RequireCapability(auth.CapTicketsManage), cfg.Tickets.Transition)
	tickets.Post("/:id/respond", cfg.Policy.RequireCapability(auth.CapTicketsManage), cfg.Tickets.Respond)

	members := api.Group("/members", cfg.Gate.Protect(scopedMembers, cfg.Metrics))
	members.Get("/", cfg.Policy.RequireCapability(auth.CapMembersRead), cfg.Members.ListMembers)
	members.Get("/summary", cfg.Policy.RequireCapability(auth.CapMembersRead), cfg.Members.Summary)
	members.Get("/export", cfg.Policy.RequireCapability(auth.CapMembersExport), cfg.Members.Export)
}
