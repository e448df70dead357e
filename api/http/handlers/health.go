package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/taskmanager/pkg/health"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	svc health.ReadinessUseCase
	log *slog.Logger
}

func NewHealthHandler(svc health.ReadinessUseCase, log *slog.Logger) *HealthHandler {
	return &HealthHandler{svc: svc, log: log}
}

// Health: basic liveness check.
// @Summary Liveness probe
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]string
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// Ready: readiness check with DB ping.
// @Summary Readiness probe
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()
	if err := h.svc.Ready(ctx); err != nil {
		h.log.Warn("readiness check failed", slog.Any("err", err))
		body := fiber.Map{"status": "not_ready"}
		// Only the dependency name goes out; the driver error stays in the log.
		var de *health.DependencyError
		if errors.As(err, &de) {
			body["dependency"] = de.Name
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ready"})
}
