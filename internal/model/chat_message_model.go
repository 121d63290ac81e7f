package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage maps the range-partitioned chat_messages table. created_at is
// part of the primary key because Postgres requires the partition key in
// every unique constraint. The parent table, its monthly partitions and the
// server-side defaults are created by internal/migration, not AutoMigrate.
type ChatMessage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;index:ix_chat_messages_user_created,priority:3,sort:desc;index:ix_chat_messages_created,priority:2,sort:desc"`
	CreatedAt time.Time `gorm:"primaryKey;not null;index:ix_chat_messages_user_created,priority:2,sort:desc;index:ix_chat_messages_created,priority:1,sort:desc"`
	UserId    string    `gorm:"type:text;not null;index:ix_chat_messages_user_created,priority:1"`
	Name      string    `gorm:"type:text;not null"`
	Question  string    `gorm:"type:text;not null"`
	Answer    string    `gorm:"type:text;not null"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
