package dto

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout renders created_at as ISO-8601 with an explicit numeric offset.
const TimestampLayout = "2006-01-02T15:04:05.999999-07:00"

// DateLayout is the calendar-date format accepted in query parameters.
const DateLayout = "2006-01-02"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

type StoreMessageRequest struct {
	UserId   string `json:"user_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

type StoreMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	CreatedAt string    `json:"created_at"`
}

// MessageItem is the privacy-filtered projection of a stored message.
type MessageItem struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"created_at"`
}

// MessagePage is the response shape shared by every read path.
type MessagePage struct {
	Items    []MessageItem `json:"items"`
	Total    int64         `json:"total"`
	PageSize int           `json:"page_size"`
	Page     int           `json:"page"`
}

func (p *MessagePage) IsEmpty() bool {
	return len(p.Items) == 0
}

// Query DTOs. Dates stay strings until validated so that malformed input is
// reported as a validation error rather than a parser error.

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

type MessagesQuery struct {
	Day      string `query:"day" validate:"omitempty,datetime=2006-01-02"`
	Start    string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string `query:"end" validate:"omitempty,datetime=2006-01-02"`
	PageSize int    `query:"page_size" validate:"min=1,max=100"`
	Page     int    `query:"page" validate:"min=0"`
}

type UserMessagesQuery struct {
	Start    string `query:"start" validate:"required,datetime=2006-01-02"`
	End      string `query:"end" validate:"required,datetime=2006-01-02"`
	PageSize int    `query:"page_size" validate:"min=1,max=100"`
	Page     int    `query:"page" validate:"min=0"`
}

// ErasureAuditRecord travels over the in-process bus after a user erasure
// and ends up in the isolated audit log. It carries no message content.
type ErasureAuditRecord struct {
	UserId       string    `json:"user_id"`
	DeletedCount int64     `json:"deleted_count"`
	RequestId    string    `json:"request_id,omitempty"`
	ClientId     string    `json:"client_id,omitempty"`
	ErasedAt     time.Time `json:"erased_at"`
}
