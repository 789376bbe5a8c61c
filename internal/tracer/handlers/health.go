package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// Pinger - зависимость, без которой сервис не готов (хранилище сессий).
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	store    Pinger
	registry interface{ Len() int }
}

func NewHealthHandler(store Pinger, registry interface{ Len() int }) *HealthHandler {
	return &HealthHandler{store: store, registry: registry}
}

// LivenessProbe проверяет, что приложение работает
func (h *HealthHandler) LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe проверяет доступность хранилища сессий
func (h *HealthHandler) ReadinessProbe(c fiber.Ctx) error {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.store.PingContext(ctx); err != nil {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  err.Error(),
			})
		}
	}

	workspaces := 0
	if h.registry != nil {
		workspaces = h.registry.Len()
	}
	return c.JSON(fiber.Map{
		"status":     "ready",
		"workspaces": workspaces,
	})
}
