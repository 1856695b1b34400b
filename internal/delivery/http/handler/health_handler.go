package handler

import (
	"context"
	"time"

	"allumino/internal/config"

	"github.com/gofiber/fiber/v3"
)

// Pinger is any backing store that can be liveness-probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	app      config.AppConfig
	postgres Pinger
	mongo    Pinger
	redis    Pinger
}

type healthResponse struct {
	Status   string         `json:"status"`
	Services map[string]bool `json:"services"`
}

type bannerResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

func NewHealthHandler(app config.AppConfig, postgres, mongo, redis Pinger) *HealthHandler {
	return &HealthHandler{app: app, postgres: postgres, mongo: mongo, redis: redis}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Health)
}

// Health reports per-store reachability. Only the two primary stores gate the
// overall status; the cache is informational.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	pgOK := h.ping(ctx, h.postgres)
	mongoOK := h.ping(ctx, h.mongo)
	redisOK := h.ping(ctx, h.redis)

	res := healthResponse{
		Status: "ok",
		Services: map[string]bool{
			"postgres": pgOK,
			"mongodb":  mongoOK,
			"redis":    redisOK,
		},
	}

	status := fiber.StatusOK
	if !pgOK || !mongoOK {
		res.Status = "degraded"
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(res)
}

// Banner identifies the service at the root path.
func (h *HealthHandler) Banner(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(bannerResponse{
		Name:        h.app.AppName,
		Version:     h.app.Version,
		Environment: h.app.Environment,
	})
}

func (h *HealthHandler) ping(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	return p.Ping(ctx) == nil
}
