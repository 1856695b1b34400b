package handler

import (
	"strings"

	"allumino/internal/delivery/http/middleware"
	"allumino/internal/pkg/response"
	"allumino/internal/repository"
	"allumino/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type PathwayHandler struct {
	uc usecase.PathwayUsecase
}

type createPathwayRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

type updatePathwayRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

func NewPathwayHandler(uc usecase.PathwayUsecase) *PathwayHandler {
	return &PathwayHandler{uc: uc}
}

func (h *PathwayHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Delete)
}

// RegisterPublicRoutes mounts the unauthenticated discovery listing.
func (h *PathwayHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.ListPublic)
}

func (h *PathwayHandler) List(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	p, err := parsePagination(c)
	if err != nil {
		return err
	}

	pathways, block, err := h.uc.ListOwn(c.Context(), userID, p)
	if err != nil {
		return translateErr(err, "Pathway not found")
	}
	return response.Paginated(c, pathways, block)
}

func (h *PathwayHandler) Create(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req createPathwayRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}
	if strings.TrimSpace(req.Title) == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Title is required", nil)
	}

	pw, err := h.uc.Create(c.Context(), userID, repository.PathwayCreate{
		Title:       req.Title,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return translateErr(err, "Pathway not found")
	}
	return c.Status(fiber.StatusCreated).JSON(pw)
}

func (h *PathwayHandler) Get(c fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	view, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return translateErr(err, "Pathway not found")
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *PathwayHandler) Update(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req updatePathwayRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}
	if req.Title == nil && req.Description == nil && req.Metadata == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Nothing to update", nil)
	}

	pw, err := h.uc.Update(c.Context(), id, userID, repository.PathwayUpdate{
		Title:       req.Title,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return translateErr(err, "Pathway not found")
	}
	return c.Status(fiber.StatusOK).JSON(pw)
}

func (h *PathwayHandler) Delete(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), id, userID); err != nil {
		return translateErr(err, "Pathway not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PathwayHandler) ListPublic(c fiber.Ctx) error {
	p, err := parsePagination(c)
	if err != nil {
		return err
	}

	pathways, block, err := h.uc.ListPublic(c.Context(), strings.TrimSpace(c.Query("search")), p)
	if err != nil {
		return translateErr(err, "Pathway not found")
	}
	return response.Paginated(c, pathways, block)
}
