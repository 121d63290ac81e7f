package contract

import (
	"context"
	"time"

	"chat-archive/internal/entity"
)

// ChatMessageRepository is the archive's storage contract. Find operations
// filter on UTC calendar days, inclusive on both ends, and order results by
// created_at DESC, id DESC. The returned total always counts the same
// predicate as the page.
type ChatMessageRepository interface {
	// Save assigns Id and CreatedAt when absent and writes the message into
	// the current unit of work. The message is updated in place.
	Save(ctx context.Context, message *entity.ChatMessage) error
	FindByUser(ctx context.Context, userId string, start, end time.Time, pageSize, page int) ([]*entity.ChatMessage, int64, error)
	FindByDay(ctx context.Context, day time.Time, pageSize, page int) ([]*entity.ChatMessage, int64, error)
	FindByPeriod(ctx context.Context, start, end time.Time, pageSize, page int) ([]*entity.ChatMessage, int64, error)
	// DeleteByUser removes every message owned by userId regardless of time
	// range and returns how many rows went away. Zero is not an error.
	DeleteByUser(ctx context.Context, userId string) (int64, error)
}
