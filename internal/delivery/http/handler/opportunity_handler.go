package handler

import (
	"strings"

	"allumino/internal/delivery/http/middleware"
	"allumino/internal/pkg/response"
	"allumino/internal/repository"
	"allumino/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type OpportunityHandler struct {
	uc usecase.OpportunityUsecase
}

type createOpportunityRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
}

type updateOpportunityRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	Tags        []string `json:"tags"`
}

func NewOpportunityHandler(uc usecase.OpportunityUsecase) *OpportunityHandler {
	return &OpportunityHandler{uc: uc}
}

// RegisterPublicRoutes mounts the read side, open to anyone.
func (h *OpportunityHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/:id", h.Get)
}

// RegisterAdminRoutes mounts mutations. mw is the role gate, applied per
// route so the read routes sharing the group stay open to any identity.
func (h *OpportunityHandler) RegisterAdminRoutes(r fiber.Router, mw ...fiber.Handler) {
	if r == nil {
		return
	}

	first, rest := guardedChain(h.Create, mw)
	r.Post("/", first, rest...)
	first, rest = guardedChain(h.Update, mw)
	r.Put("/:id", first, rest...)
	first, rest = guardedChain(h.Delete, mw)
	r.Delete("/:id", first, rest...)
}

func (h *OpportunityHandler) List(c fiber.Ctx) error {
	p, err := parsePagination(c)
	if err != nil {
		return err
	}

	f := repository.OpportunityFilter{
		Location: strings.TrimSpace(c.Query("location")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("tags")); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}

	rows, block, err := h.uc.List(c.Context(), f, p)
	if err != nil {
		return translateErr(err, "Opportunity not found")
	}
	return response.Paginated(c, rows, block)
}

func (h *OpportunityHandler) Get(c fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	row, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return translateErr(err, "Opportunity not found")
	}
	return c.Status(fiber.StatusOK).JSON(row)
}

func (h *OpportunityHandler) Create(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req createOpportunityRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}
	if strings.TrimSpace(req.Title) == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Title is required", nil)
	}

	row, err := h.uc.Create(c.Context(), userID, repository.OpportunityCreate{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Tags:        req.Tags,
	})
	if err != nil {
		return translateErr(err, "Opportunity not found")
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

func (h *OpportunityHandler) Update(c fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req updateOpportunityRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}
	if req.Title == nil && req.Description == nil && req.Location == nil && req.Tags == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Nothing to update", nil)
	}

	row, err := h.uc.Update(c.Context(), id, repository.OpportunityUpdate{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Tags:        req.Tags,
	})
	if err != nil {
		return translateErr(err, "Opportunity not found")
	}
	return c.Status(fiber.StatusOK).JSON(row)
}

func (h *OpportunityHandler) Delete(c fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), id); err != nil {
		return translateErr(err, "Opportunity not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
