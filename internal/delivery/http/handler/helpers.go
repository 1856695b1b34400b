package handler

import (
	"errors"

	"allumino/internal/delivery/http/middleware"
	"allumino/internal/infrastructure/ml"
	"allumino/internal/pkg/pagination"
	"allumino/internal/pkg/response"
	"allumino/internal/repository"
	"allumino/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// guardedChain orders a route's middleware ahead of its terminal handler.
// Fiber v3 executes route handlers in the order given, so the guard must
// come first for it to run at all.
func guardedChain(h fiber.Handler, mw []fiber.Handler) (any, []any) {
	if len(mw) == 0 {
		return h, nil
	}
	rest := make([]any, 0, len(mw))
	for _, m := range mw[1:] {
		rest = append(rest, m)
	}
	return mw[0], append(rest, h)
}

// requireUserID pulls the authenticated local user out of the request context.
// Identity-provider tokens that never went through the login callback carry no
// local user id and are rejected here.
func requireUserID(c fiber.Ctx) (uuid.UUID, error) {
	ident, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Authentication required", nil)
	}
	if ident.UserID == uuid.Nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unknown user, complete login first", nil)
	}
	return ident.UserID, nil
}

// parseUUIDParam format-validates an id path parameter before any store is
// touched.
func parseUUIDParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid ID format", err)
	}
	return id, nil
}

// parseObjectIDParam format-validates a document id path parameter, the
// counterpart of parseUUIDParam for mongo-backed resources.
func parseObjectIDParam(c fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return "", middleware.NewAppError(fiber.StatusBadRequest, "Invalid ID format", err)
	}
	return id, nil
}

func parsePagination(c fiber.Ctx) (pagination.Params, error) {
	p, err := pagination.Parse(c.Query("page"), c.Query("limit"))
	if err != nil {
		return pagination.Params{}, middleware.NewAppError(fiber.StatusBadRequest, "Invalid pagination parameters", err)
	}
	return p, nil
}

// translateErr maps service-layer errors onto the HTTP taxonomy.
func translateErr(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusForbidden, "Not allowed", err)
	case errors.Is(err, repository.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, notFoundMsg, err)
	case errors.Is(err, repository.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, "Resource already exists", err)
	case errors.Is(err, ml.ErrUpstream):
		return middleware.NewAppError(fiber.StatusInternalServerError, err.Error(), err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, err)
	}
}
