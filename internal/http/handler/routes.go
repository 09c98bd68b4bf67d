package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hellomvc/docs"
	"hellomvc/internal/controller"
)

// Checker reports whether a dependency is ready to serve.
type Checker interface {
	Check(ctx context.Context) error
}

// RegisterRoutes attaches the controller route table and the probes to the
// provided Fiber app.
func RegisterRoutes(app *fiber.App, views Checker, routes []controller.Route) {
	for _, r := range routes {
		app.Add(r.Method, r.Path, Dispatch(r.Action))
	}

	app.Get("/health", HealthCheck(views))
	app.Get("/healthz", LivenessProbe())
}

// Dispatch adapts a controller action to a Fiber handler: it runs the
// action and sends the result it describes.
func Dispatch(action controller.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := action(c)
		if err != nil {
			return err
		}
		return res.Send(c)
	}
}

// HealthCheck reports readiness: the view templates must be loaded and
// their source reachable.
//
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} handler.errorPayload
// @Router /health [get]
func HealthCheck(views Checker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := views.Check(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process serves requests.
//
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics exposes the gatherer in the Prometheus text format.
func Metrics(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// Swagger serves the Swagger UI and doc.json, advertising host as the API host.
func Swagger(host string) fiber.Handler {
	docs.SwaggerInfo.Host = host
	return swagger.HandlerDefault
}
