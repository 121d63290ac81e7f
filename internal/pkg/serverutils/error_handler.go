package serverutils

import (
	"errors"

	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/pkg/requestctx"
	"chat-archive/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps handler errors onto status codes and the
// BaseResponse envelope. Storage details never reach the client.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var (
			verr  *ValidationError
			ferr  *fiber.Error
			code  = fiber.StatusInternalServerError
			body  interface{}
			level = log.Error
		)

		switch {
		case errors.As(err, &verr):
			code = fiber.StatusUnprocessableEntity
			body = ErrorResponseWithData(code, verr.Message, verr.Fields)
			level = log.Warn
		case errors.Is(err, contract.ErrDuplicateMessage):
			code = fiber.StatusConflict
			body = ErrorResponse(code, "message already exists")
			level = log.Warn
		case contract.IsPersistenceError(err):
			code = fiber.StatusServiceUnavailable
			body = ErrorResponse(code, "storage unavailable")
		case errors.As(err, &ferr):
			code = ferr.Code
			body = ErrorResponse(code, ferr.Message)
			if code < fiber.StatusInternalServerError {
				level = log.Warn
			}
		default:
			body = ErrorResponse(code, "internal server error")
		}

		level("http", "request.failed", requestctx.Fields(ctx.UserContext(), map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"status": code,
			"error":  err.Error(),
		}))

		return ctx.Status(code).JSON(body)
	}
}
