package middleware

import (
	"context"
	"errors"
	"strings"

	"allumino/internal/pkg/auth0"
	"allumino/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const CtxIdentityKey = "identity"

const (
	SourceAuth0   = "auth0"
	SourceService = "service"
)

const RoleAdmin = "admin"

// ErrNotApplicable signals that a verifier could not handle the presented
// credential and the guard should try the next one in the chain.
var ErrNotApplicable = errors.New("credential scheme not applicable")

// Identity is the authenticated principal attached to the request context.
// UserID is uuid.Nil for identity-provider tokens that never went through the
// login callback; routes that need a local user reject those.
type Identity struct {
	UserID  uuid.UUID
	Auth0ID string
	Email   string
	Roles   []string
	Source  string
}

func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Verifier is one credential scheme in the prioritized chain.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Auth0Verifier adapts the identity-provider JWKS verifier.
type Auth0Verifier struct {
	V *auth0.Verifier
}

func (a Auth0Verifier) Verify(ctx context.Context, token string) (Identity, error) {
	claims, err := a.V.Verify(ctx, token)
	if err != nil {
		return Identity{}, ErrNotApplicable
	}
	return Identity{
		Auth0ID: claims.Subject,
		Email:   claims.Email,
		Roles:   claims.Roles,
		Source:  SourceAuth0,
	}, nil
}

// ServiceVerifier adapts the HMAC session-token service.
type ServiceVerifier struct {
	JWT jwt.Service
}

func (s ServiceVerifier) Verify(_ context.Context, token string) (Identity, error) {
	claims, err := s.JWT.ValidateToken(token)
	if err != nil {
		return Identity{}, ErrNotApplicable
	}
	return Identity{
		UserID:  claims.UserID,
		Auth0ID: claims.Auth0ID,
		Email:   claims.Email,
		Roles:   claims.Roles,
		Source:  SourceService,
	}, nil
}

type AuthMiddleware struct {
	verifiers []Verifier
}

// NewAuthMiddleware builds the access guard. Verifiers are tried in order;
// the request proceeds with the first identity produced.
func NewAuthMiddleware(verifiers ...Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifiers: verifiers}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "No authorization token provided", nil)
		}

		for _, v := range m.verifiers {
			ident, err := v.Verify(c.Context(), token)
			if err == nil {
				c.Locals(CtxIdentityKey, ident)
				return c.Next()
			}
			if !errors.Is(err, ErrNotApplicable) {
				return NewAppError(fiber.StatusUnauthorized, "Invalid or expired token", err)
			}
		}

		return NewAppError(fiber.StatusUnauthorized, "Invalid or expired token", nil)
	}
}

// RequireRole gates a route on a verified identity holding the given role.
func RequireRole(role string) fiber.Handler {
	return func(c fiber.Ctx) error {
		ident, ok := IdentityFromCtx(c)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Authentication required", nil)
		}
		if !ident.HasRole(role) {
			return NewAppError(fiber.StatusForbidden, "Insufficient permissions", nil)
		}
		return c.Next()
	}
}

func IdentityFromCtx(c fiber.Ctx) (Identity, bool) {
	ident, ok := c.Locals(CtxIdentityKey).(Identity)
	return ident, ok
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
