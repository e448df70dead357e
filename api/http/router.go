package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/artem13815/taskmanager/api/http/handlers"
	"github.com/artem13815/taskmanager/api/http/middleware"
	"github.com/artem13815/taskmanager/api/http/presenter"
)

// Routes bundles everything Register mounts.
type Routes struct {
	Auth    *handlers.AuthHandler
	Tasks   *handlers.TaskHandler
	Health  *handlers.HealthHandler
	Guard   *middleware.Guard
	Metrics http.Handler
}

// Register wires all HTTP routes onto given Fiber app. The catch-all 404 is
// installed last, so anything mounted after Register is unreachable.
func Register(app *fiber.App, r Routes) {
	if r.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.Metrics))
	}

	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", r.Health.Health)
	v1.Get("/ready", r.Health.Ready)

	a := v1.Group("/auth")
	a.Post("/signup", r.Auth.Signup)
	a.Post("/login", r.Auth.Login)
	a.Get("/me", r.Guard.Protect(r.Auth.Me))
	a.Patch("/password", r.Guard.Protect(r.Auth.ChangePassword))

	t := v1.Group("/tasks")
	// Static segments before /:id.
	t.Get("/insights", r.Guard.Protect(r.Tasks.Insights))
	t.Post("/", r.Guard.Protect(r.Tasks.Create))
	t.Get("/", r.Guard.Protect(r.Tasks.List))
	t.Get("/:id", r.Guard.Protect(r.Tasks.Get))
	t.Patch("/:id", r.Guard.Protect(r.Tasks.Update))
	t.Delete("/:id", r.Guard.Protect(r.Tasks.Delete))

	app.Use(func(c *fiber.Ctx) error {
		return presenter.Error(c, http.StatusNotFound, presenter.NotFoundMessage(c.OriginalURL()))
	})
}
