package controller

import (
	"strconv"
	"time"

	"chat-archive/internal/dto"
	"chat-archive/internal/pkg/serverutils"
	"chat-archive/internal/service"

	"github.com/gofiber/fiber/v2"
)

const DeletedCountHeader = "X-Deleted-Count"

type IChatArchiveController interface {
	RegisterRoutes(r fiber.Router)
	StoreMessage(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	GetUserMessages(ctx *fiber.Ctx) error
	DeleteUser(ctx *fiber.Ctx) error
}

type chatArchiveController struct {
	service service.IChatArchiveService
}

func NewChatArchiveController(service service.IChatArchiveService) IChatArchiveController {
	return &chatArchiveController{service: service}
}

func (c *chatArchiveController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api/v1")
	h.Post("/messages", c.StoreMessage)
	h.Get("/messages", c.GetMessages)
	h.Get("/users/:user_id/messages", c.GetUserMessages)
	h.Delete("/users/:user_id", c.DeleteUser)
}

func (c *chatArchiveController) StoreMessage(ctx *fiber.Ctx) error {
	var req dto.StoreMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.StoreMessage(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(res)
}

// GetMessages serves either a single day (?day=) or an inclusive period
// (?start=&end=). Mixing the two forms is rejected.
func (c *chatArchiveController) GetMessages(ctx *fiber.Ctx) error {
	q := dto.MessagesQuery{PageSize: dto.DefaultPageSize}
	if err := ctx.QueryParser(&q); err != nil {
		return serverutils.NewValidationError("malformed query parameters")
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return err
	}

	hasRange := q.Start != "" || q.End != ""
	switch {
	case q.Day != "" && hasRange:
		return serverutils.NewValidationError("day cannot be combined with start/end")
	case q.Day != "":
		day, err := parseDate("day", q.Day)
		if err != nil {
			return err
		}
		page, err := c.service.GetMessagesByDay(ctx.UserContext(), day, q.PageSize, q.Page)
		if err != nil {
			return err
		}
		return serverutils.WritePage(ctx, page)
	case q.Start == "" || q.End == "":
		return serverutils.NewValidationError("either day or both start and end are required")
	}

	start, end, err := parseRange(q.Start, q.End)
	if err != nil {
		return err
	}
	page, err := c.service.GetMessagesByPeriod(ctx.UserContext(), start, end, q.PageSize, q.Page)
	if err != nil {
		return err
	}
	return serverutils.WritePage(ctx, page)
}

func (c *chatArchiveController) GetUserMessages(ctx *fiber.Ctx) error {
	userId := ctx.Params("user_id")

	q := dto.UserMessagesQuery{PageSize: dto.DefaultPageSize}
	if err := ctx.QueryParser(&q); err != nil {
		return serverutils.NewValidationError("malformed query parameters")
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return err
	}

	start, end, err := parseRange(q.Start, q.End)
	if err != nil {
		return err
	}

	page, err := c.service.GetMessagesByUser(ctx.UserContext(), userId, start, end, q.PageSize, q.Page)
	if err != nil {
		return err
	}
	return serverutils.WritePage(ctx, page)
}

func (c *chatArchiveController) DeleteUser(ctx *fiber.Ctx) error {
	userId := ctx.Params("user_id")

	deleted, err := c.service.DeleteUser(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	ctx.Set(DeletedCountHeader, strconv.FormatInt(deleted, 10))
	return ctx.SendStatus(fiber.StatusNoContent)
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return time.Time{}, serverutils.NewValidationError("%s must be a YYYY-MM-DD date", field)
	}
	return t, nil
}

func parseRange(startValue, endValue string) (time.Time, time.Time, error) {
	start, err := parseDate("start", startValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate("end", endValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, serverutils.NewValidationError("end must not be before start")
	}
	return start, end, nil
}
