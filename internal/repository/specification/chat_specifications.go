package specification

import "gorm.io/gorm"

// ByUserID filters by message owner. Leading column of ix_chat_messages_user_created.
type ByUserID struct {
	UserID string
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}
