package service

import (
	"context"
	"encoding/json"

	"chat-archive/internal/dto"
	"chat-archive/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IErasureAuditService interface {
	Consume(ctx context.Context) error
}

// erasureAuditService drains erasure records from the in-process bus into the
// isolated audit log, away from the service log.
type erasureAuditService struct {
	subscriber message.Subscriber
	topicName  string
	audit      logger.ILogger
	log        logger.ILogger
}

func NewErasureAuditService(subscriber message.Subscriber, topicName string, audit, log logger.ILogger) IErasureAuditService {
	return &erasureAuditService{
		subscriber: subscriber,
		topicName:  topicName,
		audit:      audit,
		log:        log,
	}
}

func (s *erasureAuditService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return nil
}

func (s *erasureAuditService) processMessage(msg *message.Message) {
	var record dto.ErasureAuditRecord
	if err := json.Unmarshal(msg.Payload, &record); err != nil {
		s.log.Error(module, "erasure_audit.invalid_payload", map[string]interface{}{
			"message_uuid": msg.UUID,
			"error":        err.Error(),
		})
		// Redelivering a malformed payload cannot succeed.
		msg.Ack()
		return
	}

	s.audit.Info("erasure_audit", "user.erased", map[string]interface{}{
		"user_id":       record.UserId,
		"deleted_count": record.DeletedCount,
		"request_id":    record.RequestId,
		"client_id":     record.ClientId,
		"erased_at":     record.ErasedAt.UTC().Format(dto.TimestampLayout),
	})
	msg.Ack()
}
