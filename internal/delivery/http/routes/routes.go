package routes

import (
	"allumino/internal/delivery/http/handler"
	"allumino/internal/delivery/http/middleware"
	"allumino/internal/pkg/response"
	"allumino/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Registry mounts every route group with its middleware chain. Handlers are
// built by the container; this package only decides who sits behind what.
type Registry struct {
	Health      *handler.HealthHandler
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Pathway     *handler.PathwayHandler
	Assessment  *handler.AssessmentHandler
	Opportunity *handler.OpportunityHandler
	Content     *handler.ContentHandler
	ML          *handler.MLHandler
	Activity    *ws.Handler

	AuthGuard     *middleware.AuthMiddleware
	APIRateLimit  *middleware.RateLimitMiddleware
	AuthRateLimit *middleware.RateLimitMiddleware
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	app.Get("/", r.Health.Banner)
	r.Health.RegisterRoutes(app)

	api := app.Group("/api", r.APIRateLimit.Middleware())

	r.Auth.RegisterRoutes(api.Group("/auth", r.AuthRateLimit.Middleware()))

	// Public read surface, no credential required.
	public := api.Group("/public")
	r.Pathway.RegisterPublicRoutes(public.Group("/pathways"))
	r.Opportunity.RegisterPublicRoutes(public.Group("/opportunities"))

	// The guard is scoped to each resource prefix rather than mounted on /api
	// as a whole, so a request for a route that does not exist falls through
	// to the trailing 404 handler instead of being challenged for credentials.
	guard := r.AuthGuard.Middleware()

	r.User.RegisterRoutes(api.Group("/me", guard))
	r.Pathway.RegisterRoutes(api.Group("/pathways", guard))
	r.Assessment.RegisterRoutes(api.Group("/assessments", guard))
	r.Content.RegisterRoutes(api.Group("/content", guard))

	// /ml mixes a public liveness probe with guarded prediction routes, so
	// the guard rides on the individual routes instead of the group.
	mlGroup := api.Group("/ml")
	r.ML.RegisterPublicRoutes(mlGroup)
	r.ML.RegisterRoutes(mlGroup, guard)

	opportunities := api.Group("/opportunities", guard)
	r.Opportunity.RegisterPublicRoutes(opportunities)
	r.Opportunity.RegisterAdminRoutes(opportunities, middleware.RequireRole(middleware.RoleAdmin))

	if r.Activity != nil {
		api.Get("/ws/activity", guard, middleware.RequireRole(middleware.RoleAdmin), r.Activity.HandleActivityWS)
	}

	app.Use(func(c fiber.Ctx) error {
		return response.Error(c, fiber.StatusNotFound, "Route not found")
	})
}
