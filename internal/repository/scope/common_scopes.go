package scope

import (
	"chat-archive/internal/repository/specification"

	"gorm.io/gorm"
)

// NewestFirst is the archive's total order. id breaks ties between messages
// written in the same instant, matching both DESC indexes.
func NewestFirst(db *gorm.DB) *gorm.DB {
	db = specification.OrderBy{Field: "created_at", Desc: true}.Apply(db)
	return specification.OrderBy{Field: "id", Desc: true}.Apply(db)
}
