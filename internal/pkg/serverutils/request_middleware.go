package serverutils

import (
	"math"
	"time"

	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/pkg/requestctx"

	"github.com/gofiber/fiber/v2"
)

// RequestContextMiddleware binds X-Request-ID and X-Client-ID (generated when
// absent) to the request's user context, echoes them on the response and logs
// one request.completed line per request.
func RequestContextMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		userCtx, requestID, clientID := requestctx.WithIDs(
			ctx.UserContext(),
			ctx.Get(requestctx.RequestIDHeader),
			ctx.Get(requestctx.ClientIDHeader),
		)
		ctx.SetUserContext(userCtx)
		ctx.Set(requestctx.RequestIDHeader, requestID)
		ctx.Set(requestctx.ClientIDHeader, clientID)

		err := ctx.Next()
		if err != nil {
			// Let the error handler write the response now so the status
			// below is the one the client sees.
			if herr := ctx.App().ErrorHandler(ctx, err); herr != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := ctx.Response().StatusCode()
		fields := requestctx.Fields(userCtx, map[string]interface{}{
			"method":     ctx.Method(),
			"path":       ctx.Path(),
			"status":     status,
			"elapsed_ms": math.Round(float64(time.Since(start).Microseconds())/10) / 100,
		})
		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("http", "request.completed", fields)
		case status >= fiber.StatusBadRequest:
			log.Warn("http", "request.completed", fields)
		default:
			log.Info("http", "request.completed", fields)
		}
		return nil
	}
}
