package handler

import (
	"errors"
	"strings"

	"allumino/internal/delivery/http/middleware"
	"allumino/internal/pkg/auth0"
	"allumino/internal/pkg/jwt"
	"allumino/internal/repository"
	"allumino/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	provider *auth0.Client
	tokens   jwt.Service
	users    usecase.UserUsecase
	returnTo string
}

type loginResponse struct {
	Token string          `json:"token"`
	User  repository.User `json:"user"`
}

type logoutResponse struct {
	LogoutURL string `json:"logoutUrl"`
}

func NewAuthHandler(provider *auth0.Client, tokens jwt.Service, users usecase.UserUsecase, returnTo string) *AuthHandler {
	return &AuthHandler{provider: provider, tokens: tokens, users: users, returnTo: returnTo}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/login", h.Login)
	r.Get("/callback", h.Callback)
	r.Post("/logout", h.Logout)
}

// Login starts the authorization-code flow at the identity provider.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	return c.Redirect().Status(fiber.StatusFound).To(h.provider.AuthorizeURL())
}

// Callback finishes the code flow: exchange the code, sync the user locally,
// mint a session token.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing authorization code", nil)
	}

	prof, err := h.provider.ExchangeCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, auth0.ErrExchangeFailed) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Authorization code exchange failed", err)
		}
		return translateErr(err, "User not found")
	}

	usr, err := h.users.CreateOrUpdateUser(c.Context(), prof, repository.ActivityMetadata{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return translateErr(err, "User not found")
	}

	token, err := h.tokens.GenerateToken(usr.ID, usr.Auth0ID, usr.Email, usr.Roles)
	if err != nil {
		return translateErr(err, "User not found")
	}

	return c.Status(fiber.StatusOK).JSON(loginResponse{Token: token, User: usr})
}

// Logout hands the client the provider's logout URL; session tokens are
// stateless, so there is nothing to revoke server-side.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(logoutResponse{LogoutURL: h.provider.LogoutURL(h.returnTo)})
}
