package mapper

import (
	"chat-archive/internal/dto"
	"chat-archive/internal/entity"
	"chat-archive/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:        msg.Id,
		UserId:    msg.UserId,
		Name:      msg.Name,
		Question:  msg.Question,
		Answer:    msg.Answer,
		CreatedAt: msg.CreatedAt.UTC(),
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	return &model.ChatMessage{
		Id:        msg.Id,
		UserId:    msg.UserId,
		Name:      msg.Name,
		Question:  msg.Question,
		Answer:    msg.Answer,
		CreatedAt: msg.CreatedAt,
	}
}

// Projection Mappers
//
// MessageItem deliberately has no owner fields: user_id and name never leave
// the archive through a read path.

func (m *ChatMapper) ChatMessageToItem(msg *entity.ChatMessage) dto.MessageItem {
	return dto.MessageItem{
		Question:  msg.Question,
		Answer:    msg.Answer,
		CreatedAt: dto.FormatTimestamp(msg.CreatedAt),
	}
}

func (m *ChatMapper) ChatMessagesToPage(msgs []*entity.ChatMessage, total int64, pageSize, page int) *dto.MessagePage {
	items := make([]dto.MessageItem, 0, len(msgs))
	for _, msg := range msgs {
		items = append(items, m.ChatMessageToItem(msg))
	}
	return &dto.MessagePage{
		Items:    items,
		Total:    total,
		PageSize: pageSize,
		Page:     page,
	}
}

func (m *ChatMapper) ChatMessageToStoreResponse(msg *entity.ChatMessage) *dto.StoreMessageResponse {
	return &dto.StoreMessageResponse{
		Id:        msg.Id,
		CreatedAt: dto.FormatTimestamp(msg.CreatedAt),
	}
}
