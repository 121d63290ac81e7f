package memory

import (
	"context"
	"time"

	"chat-archive/internal/entity"
	"chat-archive/internal/repository/contract"

	"github.com/google/uuid"
)

// ChatMessageRepository implements contract.ChatMessageRepository over a
// ChatMessageStore. Inside a unit of work every change is journaled so that
// Rollback can revert it.
type ChatMessageRepository struct {
	store   *ChatMessageStore
	journal *journal
}

func NewChatMessageRepository(store *ChatMessageStore) contract.ChatMessageRepository {
	return &ChatMessageRepository{store: store}
}

func (r *ChatMessageRepository) Save(ctx context.Context, message *entity.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return contract.WrapPersistence("save chat message", err)
	}
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	message.CreatedAt = message.CreatedAt.UTC().Truncate(time.Microsecond)

	if !r.store.insert(message) {
		return contract.WrapPersistence("save chat message", contract.ErrDuplicateMessage)
	}
	saved := clone(message)
	r.journal.record(func() { r.store.remove(saved) })
	return nil
}

func (r *ChatMessageRepository) FindByUser(ctx context.Context, userId string, start, end time.Time, pageSize, page int) ([]*entity.ChatMessage, int64, error) {
	from, to := contract.DayBounds(start, end)
	return r.findPage(ctx, pageSize, page, func(m *entity.ChatMessage) bool {
		return m.UserId == userId && within(m.CreatedAt, from, to)
	})
}

func (r *ChatMessageRepository) FindByDay(ctx context.Context, day time.Time, pageSize, page int) ([]*entity.ChatMessage, int64, error) {
	from, to := contract.DayBounds(day, day)
	return r.findPage(ctx, pageSize, page, func(m *entity.ChatMessage) bool {
		return within(m.CreatedAt, from, to)
	})
}

func (r *ChatMessageRepository) FindByPeriod(ctx context.Context, start, end time.Time, pageSize, page int) ([]*entity.ChatMessage, int64, error) {
	from, to := contract.DayBounds(start, end)
	return r.findPage(ctx, pageSize, page, func(m *entity.ChatMessage) bool {
		return within(m.CreatedAt, from, to)
	})
}

func (r *ChatMessageRepository) DeleteByUser(ctx context.Context, userId string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, contract.WrapPersistence("delete chat messages", err)
	}
	removed := r.store.removeWhere(func(m *entity.ChatMessage) bool { return m.UserId == userId })
	r.journal.record(func() {
		for _, msg := range removed {
			r.store.restore(msg)
		}
	})
	return int64(len(removed)), nil
}

func (r *ChatMessageRepository) findPage(ctx context.Context, pageSize, page int, match func(*entity.ChatMessage) bool) ([]*entity.ChatMessage, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, contract.WrapPersistence("find chat messages", err)
	}
	all := r.store.selectWhere(match)
	total := int64(len(all))

	offset, ok := contract.Offset(pageSize, page)
	if !ok || offset >= len(all) {
		return []*entity.ChatMessage{}, total, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
