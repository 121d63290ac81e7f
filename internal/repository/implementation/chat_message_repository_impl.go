package implementation

import (
	"context"
	"time"

	"chat-archive/internal/entity"
	"chat-archive/internal/mapper"
	"chat-archive/internal/model"
	"chat-archive/internal/pkg/instrument"
	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/repository/contract"
	"chat-archive/internal/repository/scope"
	"chat-archive/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const module = "repository"

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	log    logger.ILogger
	mapper *mapper.ChatMapper
}

type messagePage struct {
	rows  []*entity.ChatMessage
	total int64
}

func NewChatMessageRepository(db *gorm.DB, log logger.ILogger) contract.ChatMessageRepository {
	if log == nil {
		log = logger.NewNop()
	}
	return &ChatMessageRepositoryImpl{
		db:     db,
		log:    log,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatMessageRepositoryImpl) Save(ctx context.Context, message *entity.ChatMessage) error {
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	// Postgres timestamptz keeps microseconds; truncating here keeps the
	// caller's copy equal to what a later read returns.
	message.CreatedAt = message.CreatedAt.UTC().Truncate(time.Microsecond)

	details := map[string]interface{}{"message_id": message.Id.String()}
	_, err := instrument.Time(ctx, r.log, module, "db.save", details, func(ctx context.Context) (struct{}, error) {
		m := r.mapper.ChatMessageToModel(message)
		if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
			return struct{}{}, contract.WrapPersistence("save chat message", err)
		}
		*message = *r.mapper.ChatMessageToEntity(m)
		return struct{}{}, nil
	})
	return err
}

func (r *ChatMessageRepositoryImpl) FindByUser(ctx context.Context, userId string, start, end time.Time, pageSize, page int) ([]*entity.ChatMessage, int64, error) {
	from, to := contract.DayBounds(start, end)
	details := map[string]interface{}{
		"user_id":   userId,
		"start":     from.Format(time.DateOnly),
		"end":       to.Format(time.DateOnly),
		"page_size": pageSize,
		"page":      page,
	}
	return r.findPage(ctx, "db.find_by_user", details, pageSize, page,
		specification.ByUserID{UserID: userId},
		specification.CreatedBetween{From: from, To: to},
	)
}

func (r *ChatMessageRepositoryImpl) FindByDay(ctx context.Context, day time.Time, pageSize, page int) ([]*entity.ChatMessage, int64, error) {
	from, to := contract.DayBounds(day, day)
	details := map[string]interface{}{
		"day":       from.Format(time.DateOnly),
		"page_size": pageSize,
		"page":      page,
	}
	return r.findPage(ctx, "db.find_by_day", details, pageSize, page,
		specification.CreatedBetween{From: from, To: to},
	)
}

func (r *ChatMessageRepositoryImpl) FindByPeriod(ctx context.Context, start, end time.Time, pageSize, page int) ([]*entity.ChatMessage, int64, error) {
	from, to := contract.DayBounds(start, end)
	details := map[string]interface{}{
		"start":     from.Format(time.DateOnly),
		"end":       to.Format(time.DateOnly),
		"page_size": pageSize,
		"page":      page,
	}
	return r.findPage(ctx, "db.find_by_period", details, pageSize, page,
		specification.CreatedBetween{From: from, To: to},
	)
}

// findPage counts and fetches with the same filter specs so the total always
// describes the pages a caller can walk.
func (r *ChatMessageRepositoryImpl) findPage(ctx context.Context, op string, details map[string]interface{}, pageSize, page int, filters ...specification.Specification) ([]*entity.ChatMessage, int64, error) {
	res, err := instrument.Time(ctx, r.log, module, op, details, func(ctx context.Context) (messagePage, error) {
		var total int64
		count := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatMessage{}), filters...)
		if err := count.Count(&total).Error; err != nil {
			return messagePage{}, contract.WrapPersistence(op, err)
		}

		offset, ok := contract.Offset(pageSize, page)
		if !ok || total == 0 || int64(offset) >= total {
			return messagePage{rows: []*entity.ChatMessage{}, total: total}, nil
		}

		var models []*model.ChatMessage
		query := r.applySpecifications(r.db.WithContext(ctx), filters...).
			Scopes(scope.NewestFirst)
		query = specification.Pagination{Limit: pageSize, Offset: offset}.Apply(query)
		if err := query.Find(&models).Error; err != nil {
			return messagePage{}, contract.WrapPersistence(op, err)
		}

		rows := make([]*entity.ChatMessage, len(models))
		for i, m := range models {
			rows[i] = r.mapper.ChatMessageToEntity(m)
		}
		return messagePage{rows: rows, total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return res.rows, res.total, nil
}

func (r *ChatMessageRepositoryImpl) DeleteByUser(ctx context.Context, userId string) (int64, error) {
	details := map[string]interface{}{"user_id": userId}
	return instrument.Time(ctx, r.log, module, "db.delete_by_user", details, func(ctx context.Context) (int64, error) {
		res := specification.ByUserID{UserID: userId}.Apply(r.db.WithContext(ctx)).Delete(&model.ChatMessage{})
		if res.Error != nil {
			return 0, contract.WrapPersistence("delete chat messages", res.Error)
		}
		return res.RowsAffected, nil
	})
}
