package unitofwork

import (
	"context"

	"chat-archive/internal/repository/contract"
)

// UnitOfWork scopes repository calls to one transaction. Repositories never
// commit on their own; the caller decides between Commit and Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatMessageRepository() contract.ChatMessageRepository
}
