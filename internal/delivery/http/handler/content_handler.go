package handler

import (
	"strings"

	"allumino/internal/delivery/http/middleware"
	"allumino/internal/pkg/response"
	"allumino/internal/repository"
	"allumino/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ContentHandler struct {
	uc usecase.ContentUsecase
}

type createContentRequest struct {
	Title       string                  `json:"title"`
	Body        string                  `json:"body"`
	Attachments []repository.Attachment `json:"attachments"`
	Tags        []string                `json:"tags"`
}

type updateContentRequest struct {
	Title       *string                 `json:"title"`
	Body        *string                 `json:"body"`
	Attachments []repository.Attachment `json:"attachments"`
	Tags        []string                `json:"tags"`
}

func NewContentHandler(uc usecase.ContentUsecase) *ContentHandler {
	return &ContentHandler{uc: uc}
}

func (h *ContentHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Delete)
}

func (h *ContentHandler) List(c fiber.Ctx) error {
	p, err := parsePagination(c)
	if err != nil {
		return err
	}

	f := repository.ContentFilter{
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("tags")); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}
	if c.Query("mine") == "true" {
		userID, err := requireUserID(c)
		if err != nil {
			return err
		}
		f.CreatedBy = userID.String()
	}

	docs, block, err := h.uc.List(c.Context(), f, p)
	if err != nil {
		return translateErr(err, "Content not found")
	}
	return response.Paginated(c, docs, block)
}

func (h *ContentHandler) Create(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req createContentRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}
	if strings.TrimSpace(req.Title) == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Title is required", nil)
	}

	doc, err := h.uc.Create(c.Context(), userID, repository.ContentCreate{
		Title:       req.Title,
		Body:        req.Body,
		Attachments: req.Attachments,
		Tags:        req.Tags,
	})
	if err != nil {
		return translateErr(err, "Content not found")
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (h *ContentHandler) Get(c fiber.Ctx) error {
	id, err := parseObjectIDParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return translateErr(err, "Content not found")
	}
	return c.Status(fiber.StatusOK).JSON(doc)
}

func (h *ContentHandler) Update(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseObjectIDParam(c, "id")
	if err != nil {
		return err
	}

	var req updateContentRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}
	if req.Title == nil && req.Body == nil && req.Attachments == nil && req.Tags == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Nothing to update", nil)
	}

	doc, err := h.uc.Update(c.Context(), id, userID, repository.ContentUpdate{
		Title:       req.Title,
		Body:        req.Body,
		Attachments: req.Attachments,
		Tags:        req.Tags,
	})
	if err != nil {
		return translateErr(err, "Content not found")
	}
	return c.Status(fiber.StatusOK).JSON(doc)
}

func (h *ContentHandler) Delete(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseObjectIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), id, userID); err != nil {
		return translateErr(err, "Content not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
