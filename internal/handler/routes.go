package handler

import (
	"github.com/andressep95/propertyhub/internal/handler/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Auth           *AuthHandler
	Session        *SessionHandler
	Password       *PasswordHandler
	Setup          *SetupHandler
	User           *UserHandler
	UtilityAccount *UtilityAccountHandler
	Report         *ReportHandler
	Page           *PageHandler
	Health         *HealthHandler
}

// RouteOptions toggles optional route guards. The report download is public unless
// ReportRequiresSession is set.
type RouteOptions struct {
	ReportRequiresSession bool
}

func SetupRoutes(app *fiber.App, h Handlers, opts RouteOptions) {
	requireSession := middleware.RequireSession()

	// Health checks (public)
	app.Get("/health", h.Health.Health)
	app.Get("/ready", h.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Pages
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(dashboardPath, fiber.StatusSeeOther)
	})
	app.Get("/login", h.Auth.ShowLogin)
	app.Post("/login", h.Auth.SubmitLogin)
	app.Post("/logout", h.Auth.SubmitLogout)

	dashboard := app.Group(dashboardPath, middleware.RequireSessionPage("/login"))
	dashboard.Get("/", h.Page.Dashboard)
	dashboard.Get("/settings", h.Page.Settings)
	dashboard.Post("/settings", h.Page.UpdateSettings)
	dashboard.Get("/users", h.Page.Users)

	api := app.Group("/api")
	api.Post("/setup", h.Setup.Setup)

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/logout", h.Auth.Logout)

	// User routes (protected)
	users := api.Group("/users", requireSession)
	users.Get("/me", h.User.GetMe)
	users.Post("/me/password", h.Password.ChangePassword)
	users.Get("/me/sessions", h.Session.GetMySessions)
	users.Delete("/me/sessions/:id", h.Session.DeleteSession)
	users.Get("/", middleware.RequireManager(), h.User.List)
	users.Post("/", middleware.RequireAdmin(), h.User.Create)

	utility := api.Group("/utility-accounts", requireSession)
	utility.Get("/", h.UtilityAccount.List)
	utility.Post("/", middleware.RequireManager(), h.UtilityAccount.Create)

	reports := api.Group("/reports")
	if opts.ReportRequiresSession {
		reports.Use(h.Report.RequireSession())
	}
	reports.Get("/opportunity-loss", h.Report.OpportunityLoss)
}
