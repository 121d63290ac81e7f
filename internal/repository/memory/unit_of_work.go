package memory

import (
	"context"
	"sync"

	"chat-archive/internal/repository/contract"
	"chat-archive/internal/repository/unitofwork"
)

// journal collects undo actions for the changes made inside one unit of work.
// A nil journal records nothing.
type journal struct {
	mu   sync.Mutex
	undo []func()
}

func (j *journal) record(undo func()) {
	if j == nil {
		return
	}
	j.mu.Lock()
	j.undo = append(j.undo, undo)
	j.mu.Unlock()
}

func (j *journal) revert() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

// UnitOfWork applies changes immediately and reverts them on Rollback. It
// gives atomicity for a single caller, not isolation from concurrent readers.
type UnitOfWork struct {
	store   *ChatMessageStore
	journal *journal
}

func NewUnitOfWork(store *ChatMessageStore) unitofwork.UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.journal != nil {
		return unitofwork.ErrTxAlreadyStarted
	}
	u.journal = &journal{}
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.journal == nil {
		return unitofwork.ErrNoTransaction
	}
	u.journal = nil
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.journal == nil {
		return unitofwork.ErrNoTransaction
	}
	u.journal.revert()
	u.journal = nil
	return nil
}

func (u *UnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &ChatMessageRepository{store: u.store, journal: u.journal}
}

type RepositoryFactory struct {
	store *ChatMessageStore
}

func NewRepositoryFactory(store *ChatMessageStore) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return NewUnitOfWork(f.store)
}
