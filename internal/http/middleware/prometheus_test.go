package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromApp(t *testing.T) (*fiber.App, *PrometheusMiddleware) {
	t.Helper()
	// Fresh registry per test to avoid duplicate registration.
	reg := prometheus.NewRegistry()
	promMiddleware, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(promMiddleware.Handler())
	return app, promMiddleware
}

func TestPrometheusMiddleware(t *testing.T) {
	app, promMiddleware := newPromApp(t)

	app.Get("/hello", func(c *fiber.Ctx) error {
		return c.SendString("Hello isaccanedo")
	})
	app.Get("/hello/home", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "render failed")
	})
	app.Get("/plain-error", func(c *fiber.Ctx) error {
		return assert.AnError
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/hello", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/hello", "200")))

	app.Test(httptest.NewRequest("GET", "/hello/home", nil))
	assert.Equal(t, float64(1), testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/hello/home", "500")))

	app.Test(httptest.NewRequest("GET", "/plain-error", nil))
	assert.Equal(t, float64(1), testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/plain-error", "500")))

	assert.Equal(t, 3, testutil.CollectAndCount(promMiddleware.requestDuration))
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	app, promMiddleware := newPromApp(t)

	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Test(httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 0, testutil.CollectAndCount(promMiddleware.requestCount))
	assert.Equal(t, 0, testutil.CollectAndCount(promMiddleware.requestDuration))
}

func TestPrometheusMiddleware_PathPattern(t *testing.T) {
	app, promMiddleware := newPromApp(t)

	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Test(httptest.NewRequest("GET", "/items/123", nil))

	count := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/items/:id", "200"))
	assert.Equal(t, float64(1), count)
	assert.Equal(t, 1, testutil.CollectAndCount(promMiddleware.requestDuration))
}

func TestPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
