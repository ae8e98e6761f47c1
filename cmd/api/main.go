package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"

	"docinspect/docs"
	"docinspect/internal/app"
	"docinspect/internal/config"
	handlers "docinspect/internal/http/handler"
	"docinspect/internal/http/middleware"
	"docinspect/internal/inspector"
	"docinspect/internal/logging"
	"docinspect/internal/otel"
)

const shutdownTimeout = 10 * time.Second

// @title Document Inspector API
// @version 1.0
// @description Read-only inspector for catalogued documents.
// @BasePath /
func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	c, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}

	promMw, err := middleware.NewPrometheusMiddleware(c.Registry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	srv := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	srv.Use(middleware.RequestID())
	srv.Use(otelfiber.Middleware())
	srv.Use(middleware.Logger(log))
	srv.Use(promMw.Handler())

	handlers.RegisterRoutes(srv, handlers.Deps{
		DB:   c.DB,
		Info: c.Info,
		Inspector: handlers.InspectorDeps{
			NewLoader: func() inspector.Loader { return c.Loader.Session() },
			Location:  cfg.Location(),
			// The loader's own timeout fires first and delivers nil.
			Timeout: c.Loader.Timeout() + time.Second,
		},
		Gatherer: c.Registry,
	})

	// Swagger UI with dynamic host and scheme
	srv.Get("/swagger/*", func(fc *fiber.Ctx) error {
		scheme := fc.Protocol()
		if proto := fc.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = fc.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(fc)
	})

	go func() {
		<-ctx.Done()
		log.Info().Str("event", "shutdown_started").Msg("")
		if err := srv.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("event", "server_started").Str("addr", addr).Msg("")
	if err := srv.Listen(addr); err != nil {
		log.Error().Err(err).Msg("failed to start server")
	}

	if err := c.Close(); err != nil {
		log.Error().Err(err).Msg("close components")
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	log.Info().Str("event", "shutdown_complete").Msg("")
}
