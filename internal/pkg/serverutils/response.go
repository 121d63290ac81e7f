package serverutils

import (
	"strconv"

	"chat-archive/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// BaseResponse is the envelope for every error body.
type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func ErrorResponse(code int, message string) BaseResponse[any] {
	return BaseResponse[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

func ErrorResponseWithData[T any](code int, message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: false,
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// Pagination headers used when a page has no items.
const (
	TotalCountHeader = "X-Total-Count"
	PageSizeHeader   = "X-Page-Size"
	PageHeader       = "X-Page"
)

// WritePage sends a non-empty page as JSON. An empty page is a 204 whose
// pagination metadata travels in headers, so clients can tell it apart from
// a malformed request.
func WritePage(ctx *fiber.Ctx, page *dto.MessagePage) error {
	if page.IsEmpty() {
		ctx.Set(TotalCountHeader, strconv.FormatInt(page.Total, 10))
		ctx.Set(PageSizeHeader, strconv.Itoa(page.PageSize))
		ctx.Set(PageHeader, strconv.Itoa(page.Page))
		return ctx.SendStatus(fiber.StatusNoContent)
	}
	return ctx.Status(fiber.StatusOK).JSON(page)
}
