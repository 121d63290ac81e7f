package service

import (
	"context"
	"encoding/json"
	"time"

	"chat-archive/internal/dto"
	"chat-archive/internal/entity"
	"chat-archive/internal/mapper"
	"chat-archive/internal/pkg/instrument"
	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/pkg/requestctx"
	"chat-archive/internal/repository/contract"
	"chat-archive/internal/repository/unitofwork"
)

const module = "service"

type IChatArchiveService interface {
	StoreMessage(ctx context.Context, req *dto.StoreMessageRequest) (*dto.StoreMessageResponse, error)
	GetMessagesByUser(ctx context.Context, userId string, start, end time.Time, pageSize, page int) (*dto.MessagePage, error)
	GetMessagesByDay(ctx context.Context, day time.Time, pageSize, page int) (*dto.MessagePage, error)
	GetMessagesByPeriod(ctx context.Context, start, end time.Time, pageSize, page int) (*dto.MessagePage, error)
	DeleteUser(ctx context.Context, userId string) (int64, error)
}

type chatArchiveService struct {
	uowFactory unitofwork.RepositoryFactory
	events     IArchiveEventPublisher
	audit      IPublisherService
	log        logger.ILogger
	mapper     *mapper.ChatMapper
}

func NewChatArchiveService(
	uowFactory unitofwork.RepositoryFactory,
	events IArchiveEventPublisher,
	audit IPublisherService,
	log logger.ILogger,
) IChatArchiveService {
	return &chatArchiveService{
		uowFactory: uowFactory,
		events:     events,
		audit:      audit,
		log:        log,
		mapper:     mapper.NewChatMapper(),
	}
}

// inTransaction commits when fn succeeds and rolls back otherwise.
func (s *chatArchiveService) inTransaction(ctx context.Context, fn func(repo contract.ChatMessageRepository) error) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := fn(uow.ChatMessageRepository()); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			s.log.Error(module, "transaction.rollback_failed", requestctx.Fields(ctx, map[string]interface{}{"error": rbErr.Error()}))
		}
		return err
	}
	return uow.Commit()
}

func (s *chatArchiveService) StoreMessage(ctx context.Context, req *dto.StoreMessageRequest) (*dto.StoreMessageResponse, error) {
	details := map[string]interface{}{"user_id": req.UserId}
	return instrument.Track(ctx, s.log, module, "use_case.store_message", details, func(ctx context.Context) (*dto.StoreMessageResponse, error) {
		msg := entity.NewChatMessage(req.UserId, req.Name, req.Question, req.Answer)
		err := s.inTransaction(ctx, func(repo contract.ChatMessageRepository) error {
			return repo.Save(ctx, msg)
		})
		if err != nil {
			return nil, err
		}

		if s.events != nil {
			s.events.PublishMessageArchived(ctx, msg)
		}
		return s.mapper.ChatMessageToStoreResponse(msg), nil
	})
}

func (s *chatArchiveService) GetMessagesByUser(ctx context.Context, userId string, start, end time.Time, pageSize, page int) (*dto.MessagePage, error) {
	details := map[string]interface{}{
		"user_id":   userId,
		"start":     start.Format(dto.DateLayout),
		"end":       end.Format(dto.DateLayout),
		"page_size": pageSize,
		"page":      page,
	}
	return instrument.Track(ctx, s.log, module, "use_case.get_messages_by_user", details, func(ctx context.Context) (*dto.MessagePage, error) {
		rows, total, err := s.uowFactory.NewUnitOfWork(ctx).ChatMessageRepository().FindByUser(ctx, userId, start, end, pageSize, page)
		if err != nil {
			return nil, err
		}
		return s.mapper.ChatMessagesToPage(rows, total, pageSize, page), nil
	})
}

func (s *chatArchiveService) GetMessagesByDay(ctx context.Context, day time.Time, pageSize, page int) (*dto.MessagePage, error) {
	details := map[string]interface{}{
		"day":       day.Format(dto.DateLayout),
		"page_size": pageSize,
		"page":      page,
	}
	return instrument.Track(ctx, s.log, module, "use_case.get_messages_by_day", details, func(ctx context.Context) (*dto.MessagePage, error) {
		rows, total, err := s.uowFactory.NewUnitOfWork(ctx).ChatMessageRepository().FindByDay(ctx, day, pageSize, page)
		if err != nil {
			return nil, err
		}
		return s.mapper.ChatMessagesToPage(rows, total, pageSize, page), nil
	})
}

func (s *chatArchiveService) GetMessagesByPeriod(ctx context.Context, start, end time.Time, pageSize, page int) (*dto.MessagePage, error) {
	details := map[string]interface{}{
		"start":     start.Format(dto.DateLayout),
		"end":       end.Format(dto.DateLayout),
		"page_size": pageSize,
		"page":      page,
	}
	return instrument.Track(ctx, s.log, module, "use_case.get_messages_by_period", details, func(ctx context.Context) (*dto.MessagePage, error) {
		rows, total, err := s.uowFactory.NewUnitOfWork(ctx).ChatMessageRepository().FindByPeriod(ctx, start, end, pageSize, page)
		if err != nil {
			return nil, err
		}
		return s.mapper.ChatMessagesToPage(rows, total, pageSize, page), nil
	})
}

// DeleteUser erases every message of userId. Zero deletions is a success.
func (s *chatArchiveService) DeleteUser(ctx context.Context, userId string) (int64, error) {
	details := map[string]interface{}{"user_id": userId}
	return instrument.Track(ctx, s.log, module, "use_case.delete_user", details, func(ctx context.Context) (int64, error) {
		var deleted int64
		err := s.inTransaction(ctx, func(repo contract.ChatMessageRepository) error {
			n, err := repo.DeleteByUser(ctx, userId)
			deleted = n
			return err
		})
		if err != nil {
			return 0, err
		}

		if s.events != nil {
			s.events.PublishUserErased(ctx, userId, deleted)
		}
		s.recordErasure(ctx, userId, deleted)
		return deleted, nil
	})
}

func (s *chatArchiveService) recordErasure(ctx context.Context, userId string, deleted int64) {
	if s.audit == nil {
		return
	}
	payload, err := json.Marshal(dto.ErasureAuditRecord{
		UserId:       userId,
		DeletedCount: deleted,
		RequestId:    requestctx.RequestID(ctx),
		ClientId:     requestctx.ClientID(ctx),
		ErasedAt:     time.Now().UTC(),
	})
	if err == nil {
		err = s.audit.Publish(ctx, payload)
	}
	if err != nil {
		s.log.Error(module, "erasure_audit.publish_failed", requestctx.Fields(ctx, map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		}))
	}
}
