package response

import (
	"allumino/internal/pkg/pagination"

	"github.com/gofiber/fiber/v3"
)

// ErrorBody is the uniform error shape. Stack is only populated outside
// production deployments.
type ErrorBody struct {
	Error string `json:"error"`
	Stack string `json:"stack,omitempty"`
}

// ListBody is the envelope every list endpoint returns.
type ListBody struct {
	Data       any              `json:"data"`
	Pagination pagination.Block `json:"pagination"`
}

const (
	MessageBadRequest          = "bad request"
	MessageUnauthorized        = "unauthorized"
	MessageForbidden           = "forbidden"
	MessageNotFound            = "not found"
	MessageConflict            = "conflict"
	MessageInternalServerError = "internal server error"
)

func JSON(c fiber.Ctx, status int, body any) error {
	return c.Status(normalizeStatus(status)).JSON(body)
}

func Paginated(c fiber.Ctx, data any, block pagination.Block) error {
	return c.Status(fiber.StatusOK).JSON(ListBody{Data: data, Pagination: block})
}

func Error(c fiber.Ctx, status int, message string) error {
	st := normalizeStatus(status)
	if message == "" {
		message = defaultMessageForStatus(st)
	}
	return c.Status(st).JSON(ErrorBody{Error: message})
}

func ErrorWithStack(c fiber.Ctx, status int, message, stack string) error {
	st := normalizeStatus(status)
	if message == "" {
		message = defaultMessageForStatus(st)
	}
	return c.Status(st).JSON(ErrorBody{Error: message, Stack: stack})
}

func normalizeStatus(status int) int {
	if status < 100 || status > 599 {
		return fiber.StatusInternalServerError
	}
	return status
}

func defaultMessageForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return MessageBadRequest
	case fiber.StatusUnauthorized:
		return MessageUnauthorized
	case fiber.StatusForbidden:
		return MessageForbidden
	case fiber.StatusNotFound:
		return MessageNotFound
	case fiber.StatusConflict:
		return MessageConflict
	default:
		return MessageInternalServerError
	}
}
