package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one archived question/answer exchange. It is immutable once
// stored; the only lifecycle transition after Save is erasure by owner.
type ChatMessage struct {
	Id        uuid.UUID
	UserId    string
	Name      string
	Question  string
	Answer    string
	CreatedAt time.Time
}

// NewChatMessage builds a message whose Id and CreatedAt are left for the
// repository to assign.
func NewChatMessage(userId, name, question, answer string) *ChatMessage {
	return &ChatMessage{
		UserId:   userId,
		Name:     name,
		Question: question,
		Answer:   answer,
	}
}

// NewerThan reports whether m precedes other in result order
// (created_at DESC, id DESC).
func (m *ChatMessage) NewerThan(other *ChatMessage) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.After(other.CreatedAt)
	}
	return m.Id.String() > other.Id.String()
}
