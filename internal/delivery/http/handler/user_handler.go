package handler

import (
	"allumino/internal/delivery/http/middleware"
	"allumino/internal/pkg/response"
	"allumino/internal/repository"
	"allumino/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type UserHandler struct {
	uc usecase.UserUsecase
}

type updateProfileRequest struct {
	Preferences  map[string]any `json:"preferences"`
	CustomFields map[string]any `json:"customFields"`
}

func NewUserHandler(uc usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// RegisterRoutes mounts the profile routes; r is the /me group.
func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.GetMe)
	r.Put("/", h.UpdateMe)
	r.Get("/activity", h.GetActivity)
}

func (h *UserHandler) GetMe(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	view, err := h.uc.GetProfile(c.Context(), userID)
	if err != nil {
		return translateErr(err, "User not found")
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	}

	prof, err := h.uc.UpdateProfile(c.Context(), userID, repository.ProfileUpdate{
		Preferences:  req.Preferences,
		CustomFields: req.CustomFields,
	})
	if err != nil {
		return translateErr(err, "User not found")
	}
	return c.Status(fiber.StatusOK).JSON(prof)
}

func (h *UserHandler) GetActivity(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	p, err := parsePagination(c)
	if err != nil {
		return err
	}

	entries, block, err := h.uc.ListActivity(c.Context(), userID, p)
	if err != nil {
		return translateErr(err, "User not found")
	}
	return response.Paginated(c, entries, block)
}
