package middleware

import (
	"errors"
	"runtime/debug"

	"allumino/internal/pkg/logger"
	"allumino/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// AppError is the normalized error handlers hand back to the error middleware.
type AppError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Cause: cause}
}

type ErrorMiddleware struct {
	log *logger.Logger

	// development controls whether 5xx bodies carry detail and stack traces.
	development bool
}

func NewErrorMiddleware(log *logger.Logger, development bool) *ErrorMiddleware {
	return &ErrorMiddleware{log: log, development: development}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				m.log.Error("panic recovered",
					"method", c.Method(), "path", c.Path(), "panic", r, "stack", stack)
				if m.development {
					err = response.ErrorWithStack(c, fiber.StatusInternalServerError, response.MessageInternalServerError, stack)
					return
				}
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg := m.normalize(err)

		if status >= 500 {
			stack := string(debug.Stack())
			m.log.Error("request failed",
				"method", c.Method(), "path", c.Path(), "status", status, "error", err, "stack", stack)
			if !m.development {
				return response.Error(c, status, response.MessageInternalServerError)
			}
			return response.ErrorWithStack(c, status, msg, stack)
		}

		m.log.Debug("request rejected",
			"method", c.Method(), "path", c.Path(), "status", status, "error", err)
		return response.Error(c, status, msg)
	}
}

// normalize translates an error into a status and client-facing message.
// Logging stays in the handler above so it happens before translation.
func (m *ErrorMiddleware) normalize(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if status <= 0 {
			status = fiber.StatusInternalServerError
		}
		if status >= 500 {
			return status, appErr.Error()
		}
		return status, appErr.Message
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 {
			status = fiber.StatusInternalServerError
		}
		return status, fiberErr.Message
	}

	return fiber.StatusInternalServerError, err.Error()
}
