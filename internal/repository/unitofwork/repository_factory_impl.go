package unitofwork

import (
	"context"

	"chat-archive/internal/pkg/logger"

	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	db  *gorm.DB
	log logger.ILogger
}

func NewRepositoryFactory(db *gorm.DB, log logger.ILogger) RepositoryFactory {
	return &RepositoryFactoryImpl{
		db:  db,
		log: log,
	}
}

// NewUnitOfWork hands out a short-lived unit per use case. The context is
// bound later, in Begin or on each repository call.
func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db, f.log)
}
