package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docinspect/internal/database"
	"docinspect/internal/inspector"
	"docinspect/internal/model"
	"docinspect/internal/service"
	"docinspect/internal/view"
)

// InspectorDeps configures the inspector endpoint.
type InspectorDeps struct {
	// NewLoader returns a loader scoped to a single request. It is reset when the request ends.
	NewLoader func() inspector.Loader
	Location  *time.Location
	Timeout   time.Duration
}

// Deps are the collaborators the HTTP routes need.
type Deps struct {
	DB        *sql.DB
	Info      service.InfoService
	Inspector InspectorDeps
	Gatherer  prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Get("/documents", ListDocuments(d.Info))
	app.Get("/documents/:id/inspector", InspectDocument(d.Inspector))
}

// HealthCheck reports whether the catalogue database is reachable.
//
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db == nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		if err := database.Ping(c.UserContext(), db); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments pages through the catalogue.
//
// @Summary List documents
// @Tags documents
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "rows to skip" default(0)
// @Success 200 {object} service.DocumentListResult
// @Failure 400 {object} errorPayload
// @Router /documents [get]
func ListDocuments(svc service.InfoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// InspectDocument loads a document's info into a fresh inspector panel and returns the panel.
//
// @Summary Inspect a document
// @Tags inspector
// @Produce json
// @Param id path string true "document id (uuid)"
// @Success 200 {object} view.Snapshot
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 504 {object} errorPayload
// @Router /documents/{id}/inspector [get]
func InspectDocument(d InspectorDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The load outlives fasthttp's buffers if the request times out.
		id := utils.CopyString(c.Params("id"))
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		panel := view.NewPanel(d.Location)
		loaded := make(chan bool, 1)
		ctrl, err := inspector.NewControllerFromContainer(d.NewLoader(), panel,
			inspector.OnLoaded(func(info *model.DocumentInfo) {
				loaded <- info != nil
			}),
		)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		defer ctrl.Reset()

		ctx, cancel := context.WithTimeout(c.UserContext(), d.Timeout)
		defer cancel()

		ctrl.LoadInfo(ctx, id)

		select {
		case found := <-loaded:
			if !found {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return c.JSON(panel)
		case <-ctx.Done():
			return writeError(c, fiber.StatusGatewayTimeout, "TIMEOUT", "timed out loading document")
		}
	}
}
