package serverutils

import (
	"errors"

	"ai-coverletter-be/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
)

// statusCoder is implemented by domain errors that know their HTTP mapping
// (vendor call failures, precondition violations, rerank parse errors).
type statusCoder interface {
	HTTPStatus() int
}

// ErrorHandlerMiddleware converts errors bubbling out of controllers into
// JSON error responses. Unknown errors become a 500 without leaking internals.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message, nil))
		}

		if errors.Is(err, contract.ErrSessionNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse("session not found", nil))
		}

		var coder statusCoder
		if errors.As(err, &coder) {
			return ctx.Status(coder.HTTPStatus()).JSON(ErrorResponse(err.Error(), nil))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error", nil))
	}
}
