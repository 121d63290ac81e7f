package unitofwork

import (
	"context"
	"errors"

	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/repository/contract"
	"chat-archive/internal/repository/implementation"

	"gorm.io/gorm"
)

var (
	ErrTxAlreadyStarted = errors.New("transaction already started")
	ErrNoTransaction    = errors.New("no active transaction")
)

type UnitOfWorkImpl struct {
	db  *gorm.DB
	tx  *gorm.DB // nil outside Begin/Commit
	log logger.ILogger
}

func NewUnitOfWork(db *gorm.DB, log logger.ILogger) UnitOfWork {
	return &UnitOfWorkImpl{
		db:  db,
		log: log,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTxAlreadyStarted
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return contract.WrapPersistence("begin transaction", tx.Error)
	}
	u.tx = tx
	return nil
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return contract.WrapPersistence("commit transaction", err)
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return contract.WrapPersistence("rollback transaction", err)
}

// Repository Accessors

func (u *UnitOfWorkImpl) ChatMessageRepository() contract.ChatMessageRepository {
	return implementation.NewChatMessageRepository(u.getDB(), u.log)
}
