package service

import (
	"context"
	"time"

	"chat-archive/internal/dto"
	"chat-archive/internal/entity"
	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/pkg/requestctx"
	"chat-archive/pkg/events"
)

// IArchiveEventPublisher announces archive changes to other services.
// Publishing is best effort: failures are logged and never returned.
type IArchiveEventPublisher interface {
	PublishMessageArchived(ctx context.Context, msg *entity.ChatMessage)
	PublishUserErased(ctx context.Context, userId string, deletedCount int64)
}

// DefaultPublishTimeout bounds a single publish when no timeout is configured.
const DefaultPublishTimeout = 2 * time.Second

type archiveEventPublisher struct {
	publisher events.Publisher
	log       logger.ILogger
	timeout   time.Duration
}

// NewArchiveEventPublisher wraps an event bus. A nil publisher turns every
// call into a no-op. Each publish gets at most `timeout` (DefaultPublishTimeout
// when <= 0), so an unreachable bus cannot stall the request that caused it.
func NewArchiveEventPublisher(publisher events.Publisher, log logger.ILogger, timeout time.Duration) IArchiveEventPublisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &archiveEventPublisher{
		publisher: publisher,
		log:       log,
		timeout:   timeout,
	}
}

// PublishMessageArchived carries identifiers only; name, question and answer
// stay in the archive.
func (p *archiveEventPublisher) PublishMessageArchived(ctx context.Context, msg *entity.ChatMessage) {
	p.publish(ctx, events.BaseEvent{
		Type: events.MessageArchived,
		Data: map[string]interface{}{
			"message_id": msg.Id.String(),
			"user_id":    msg.UserId,
			"created_at": dto.FormatTimestamp(msg.CreatedAt),
		},
		OccurredAt: time.Now(),
	})
}

func (p *archiveEventPublisher) PublishUserErased(ctx context.Context, userId string, deletedCount int64) {
	p.publish(ctx, events.BaseEvent{
		Type: events.UserErased,
		Data: map[string]interface{}{
			"user_id":       userId,
			"deleted_count": deletedCount,
		},
		OccurredAt: time.Now(),
	})
}

func (p *archiveEventPublisher) publish(ctx context.Context, evt events.BaseEvent) {
	if p.publisher == nil {
		return
	}

	// the change is already committed; a client disconnect must not drop the event
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.publisher.Publish(pubCtx, evt); err != nil {
		p.log.Warn(module, "event.publish_failed", requestctx.Fields(ctx, map[string]interface{}{
			"event": evt.Type,
			"error": err.Error(),
		}))
	}
}
