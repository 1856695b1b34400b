package handler

import (
	"allumino/internal/delivery/http/middleware"
	"allumino/internal/infrastructure/ml"

	"github.com/gofiber/fiber/v3"
)

type MLHandler struct {
	client ml.Client
}

type batchPredictRequest struct {
	Students []ml.StudentFeatures `json:"students"`
}

func NewMLHandler(client ml.Client) *MLHandler {
	return &MLHandler{client: client}
}

// RegisterRoutes mounts the prediction routes; mw (the access guard) rides on
// each route because the group also carries the unguarded health probe.
func (h *MLHandler) RegisterRoutes(r fiber.Router, mw ...fiber.Handler) {
	if r == nil {
		return
	}

	first, rest := guardedChain(h.Predict, mw)
	r.Post("/predict", first, rest...)
	first, rest = guardedChain(h.BatchPredict, mw)
	r.Post("/batch-predict", first, rest...)
}

// RegisterPublicRoutes mounts the upstream liveness probe.
func (h *MLHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Health)
}

// Predict relays the upstream response body as-is.
func (h *MLHandler) Predict(c fiber.Ctx) error {
	var req ml.StudentFeatures
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}

	out, err := h.client.Predict(c.Context(), req)
	if err != nil {
		return translateErr(err, "Prediction not found")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(out)
}

func (h *MLHandler) BatchPredict(c fiber.Ctx) error {
	var req batchPredictRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}
	if len(req.Students) == 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, "Students list is required", nil)
	}

	out, err := h.client.BatchPredict(c.Context(), req.Students)
	if err != nil {
		return translateErr(err, "Prediction not found")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(out)
}

func (h *MLHandler) Health(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.client.Health(c.Context()))
}
