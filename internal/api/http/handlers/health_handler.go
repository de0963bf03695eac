package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/frigelar/esteira/internal/persistence"
	"github.com/frigelar/esteira/internal/sheets"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	tables      *sheets.Tables
	redis       *persistence.Redis
	postgres    *persistence.Postgres
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, tables *sheets.Tables, redis *persistence.Redis, postgres *persistence.Postgres) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		tables:      tables,
		redis:       redis,
		postgres:    postgres,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies. The spreadsheet
// itself is not probed here: hitting the rate-limited API on every probe
// would spend the quota the claim protocol needs.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{
		"sheets": fiber.Map{
			"tickets_tab": h.tables.Tickets.Title(),
			"agents_tab":  h.tables.Agents.Title(),
		},
	}
	ready := true

	if err := h.redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
		ready = false
	} else {
		depStatus["redis"] = "ok"
	}

	if h.postgres.Enabled() {
		if err := h.postgres.Ping(ctx); err != nil {
			depStatus["postgres"] = err.Error()
			ready = false
		} else {
			depStatus["postgres"] = "ok"
		}
	} else {
		depStatus["postgres"] = "disabled"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
