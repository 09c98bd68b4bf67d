package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"hellomvc/internal/config"
	"hellomvc/internal/controller"
	handlers "hellomvc/internal/http/handler"
	"hellomvc/internal/http/middleware"
	tracing "hellomvc/internal/otel"
	"hellomvc/internal/storage"
	"hellomvc/internal/view"
)

// @title Hello MVC
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	// Object storage is only needed when templates live in a bucket
	var objStore storage.Storage
	if cfg.Views.Source == config.ViewsSourceS3 {
		objStore, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
	}

	src, err := view.NewSource(cfg.Views, objStore)
	if err != nil {
		log.Fatalf("failed to configure views: %v", err)
	}
	engine := view.New(src,
		view.WithReload(cfg.Views.Reload),
		view.WithLocation(loc),
	)
	// Fail fast: fiber.New only warns when views cannot be loaded, and its
	// own Load is a no-op once this one succeeds
	if err := engine.Load(); err != nil {
		log.Fatalf("failed to load views: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "hellomvc",
		ErrorHandler:          handlers.ErrorHandler(),
		Views:                 engine,
		DisableStartupMessage: true,
	})

	// Register global middleware
	// Tracing first so downstream middleware sees the server span
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.LoggerWithWriter(os.Stdout, loc))
	app.Use(promMiddleware.Handler())

	// Controller route table plus health probes
	handlers.RegisterRoutes(app, engine, controller.NewHelloController().Routes())

	app.Get("/metrics", handlers.Metrics(registry))
	app.Get("/swagger/*", handlers.Swagger(cfg.AppHost))

	addr := ":" + cfg.Port
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	case <-ctx.Done():
	}

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout()); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Printf("tracing shutdown: %v", err)
	}
}
