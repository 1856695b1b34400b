package handler

import (
	"strings"
	"time"

	"allumino/internal/delivery/http/middleware"
	"allumino/internal/pkg/response"
	"allumino/internal/repository"
	"allumino/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type AssessmentHandler struct {
	uc usecase.AssessmentUsecase
}

type createAssessmentRequest struct {
	PathwayID   *uuid.UUID                    `json:"pathwayId"`
	Title       string                        `json:"title"`
	Type        string                        `json:"type"`
	Score       *float64                      `json:"score"`
	CompletedAt *time.Time                    `json:"completedAt"`
	Metadata    map[string]any                `json:"metadata"`
	RawData     any                           `json:"rawData"`
	Responses   []repository.QuestionResponse `json:"responses"`
}

type updateAssessmentRequest struct {
	Title       *string        `json:"title"`
	Type        *string        `json:"type"`
	Score       *float64       `json:"score"`
	CompletedAt *time.Time     `json:"completedAt"`
	Metadata    map[string]any `json:"metadata"`
}

func NewAssessmentHandler(uc usecase.AssessmentUsecase) *AssessmentHandler {
	return &AssessmentHandler{uc: uc}
}

func (h *AssessmentHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
}

func (h *AssessmentHandler) List(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	p, err := parsePagination(c)
	if err != nil {
		return err
	}

	rows, block, err := h.uc.ListOwn(c.Context(), userID, p)
	if err != nil {
		return translateErr(err, "Assessment not found")
	}
	return response.Paginated(c, rows, block)
}

func (h *AssessmentHandler) Create(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req createAssessmentRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Type) == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Title and type are required", nil)
	}

	row, err := h.uc.Create(c.Context(), userID, usecase.AssessmentCreateInput{
		AssessmentCreate: repository.AssessmentCreate{
			PathwayID:   req.PathwayID,
			Title:       req.Title,
			Type:        req.Type,
			Score:       req.Score,
			CompletedAt: req.CompletedAt,
			Metadata:    req.Metadata,
		},
		RawData:   req.RawData,
		Responses: req.Responses,
	})
	if err != nil {
		return translateErr(err, "Assessment not found")
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

func (h *AssessmentHandler) Get(c fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	view, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return translateErr(err, "Assessment not found")
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *AssessmentHandler) Update(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req updateAssessmentRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}

	row, err := h.uc.Update(c.Context(), id, userID, repository.AssessmentUpdate{
		Title:       req.Title,
		Type:        req.Type,
		Score:       req.Score,
		CompletedAt: req.CompletedAt,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return translateErr(err, "Assessment not found")
	}
	return c.Status(fiber.StatusOK).JSON(row)
}
