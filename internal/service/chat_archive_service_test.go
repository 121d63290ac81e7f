package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"chat-archive/internal/dto"
	"chat-archive/internal/entity"
	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/pkg/requestctx"
	"chat-archive/internal/repository/contract"
	"chat-archive/internal/repository/memory"
	"chat-archive/internal/repository/unitofwork"
	"chat-archive/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) Publish(ctx context.Context, event events.Event) error {
	return m.Called(ctx, event).Error(0)
}

type mockAuditPublisher struct {
	mock.Mock
}

func (m *mockAuditPublisher) Publish(ctx context.Context, payload []byte) error {
	return m.Called(ctx, payload).Error(0)
}

func newService(t *testing.T, bus *mockEventBus, audit *mockAuditPublisher) (IChatArchiveService, *memory.ChatMessageStore) {
	t.Helper()
	store := memory.NewChatMessageStore()
	log := logger.NewNop()
	var auditPub IPublisherService
	if audit != nil {
		auditPub = audit
	}
	var eventBus events.Publisher
	if bus != nil {
		eventBus = bus
	}
	svc := NewChatArchiveService(memory.NewRepositoryFactory(store), NewArchiveEventPublisher(eventBus, log, 0), auditPub, log)
	return svc, store
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func storeReq(userId string) *dto.StoreMessageRequest {
	return &dto.StoreMessageRequest{UserId: userId, Name: "Ann Example", Question: "what?", Answer: "that."}
}

func TestStoreMessage_PublishesIdentifiersOnly(t *testing.T) {
	bus := &mockEventBus{}
	bus.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		p := e.Payload()
		_, hasName := p["name"]
		_, hasQuestion := p["question"]
		_, hasAnswer := p["answer"]
		return e.EventType() == events.MessageArchived && p["user_id"] == "u1" && !hasName && !hasQuestion && !hasAnswer
	})).Return(nil).Once()

	svc, store := newService(t, bus, nil)
	resp, err := svc.StoreMessage(context.Background(), storeReq("u1"))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Id)
	_, err = time.Parse(dto.TimestampLayout, resp.CreatedAt)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	bus.AssertExpectations(t)
}

func TestStoreMessage_EventFailureIsNotReturned(t *testing.T) {
	bus := &mockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	svc, store := newService(t, bus, nil)
	_, err := svc.StoreMessage(context.Background(), storeReq("u1"))
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestGetMessagesByUser_ProjectsAndPaginates(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, nil, nil)
	repo := memory.NewChatMessageRepository(store)

	for i := 0; i < 5; i++ {
		msg := entity.NewChatMessage("u1", "Ann", "q", "a")
		msg.CreatedAt = date(2025, time.June, 15).Add(10*time.Hour + time.Duration(i)*time.Minute)
		require.NoError(t, repo.Save(ctx, msg))
	}

	page, err := svc.GetMessagesByUser(ctx, "u1", date(2025, time.June, 1), date(2025, time.June, 30), 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, 0, page.Page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "2025-06-15T10:04:00+00:00", page.Items[0].CreatedAt)

	raw, err := json.Marshal(page)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "user_id")
	assert.NotContains(t, string(raw), "Ann")

	page, err = svc.GetMessagesByUser(ctx, "u1", date(2025, time.June, 1), date(2025, time.June, 30), 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "2025-06-15T10:00:00+00:00", page.Items[0].CreatedAt)
}

func TestGetMessagesByDayAndPeriod_EmptyIsNotAnError(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, nil, nil)

	page, err := svc.GetMessagesByDay(ctx, date(2025, time.June, 16), 50, 0)
	require.NoError(t, err)
	assert.True(t, page.IsEmpty())
	assert.NotNil(t, page.Items)
	assert.Zero(t, page.Total)

	page, err = svc.GetMessagesByPeriod(ctx, date(2025, time.June, 1), date(2025, time.June, 30), 50, 3)
	require.NoError(t, err)
	assert.True(t, page.IsEmpty())
	assert.Equal(t, 3, page.Page)
}

func TestDeleteUser_PublishesEventAndAuditRecord(t *testing.T) {
	ctx, _, _ := requestctx.WithIDs(context.Background(), "req-1", "cli-1")

	bus := &mockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything).Return(nil)
	audit := &mockAuditPublisher{}
	audit.On("Publish", mock.Anything, mock.MatchedBy(func(payload []byte) bool {
		var rec dto.ErasureAuditRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return false
		}
		return rec.UserId == "u1" && rec.DeletedCount == 2 && rec.RequestId == "req-1" && rec.ClientId == "cli-1"
	})).Return(nil).Once()

	svc, store := newService(t, bus, audit)
	_, err := svc.StoreMessage(ctx, storeReq("u1"))
	require.NoError(t, err)
	_, err = svc.StoreMessage(ctx, storeReq("u1"))
	require.NoError(t, err)
	_, err = svc.StoreMessage(ctx, storeReq("u2"))
	require.NoError(t, err)

	deleted, err := svc.DeleteUser(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
	assert.Equal(t, 1, store.Len())

	audit.AssertExpectations(t)
	bus.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.EventType() == events.UserErased && e.Payload()["deleted_count"] == int64(2)
	}))
}

func TestDeleteUser_UnknownUserSucceedsWithZero(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	deleted, err := svc.DeleteUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

// failingRepo rejects writes so the rollback path can be observed.
type failingRepo struct {
	contract.ChatMessageRepository
	err error
}

func (r failingRepo) Save(ctx context.Context, msg *entity.ChatMessage) error {
	return r.err
}

type trackingUoW struct {
	unitofwork.UnitOfWork
	repo       contract.ChatMessageRepository
	committed  bool
	rolledBack bool
}

func (u *trackingUoW) Begin(ctx context.Context) error { return nil }
func (u *trackingUoW) Commit() error                   { u.committed = true; return nil }
func (u *trackingUoW) Rollback() error                 { u.rolledBack = true; return nil }
func (u *trackingUoW) ChatMessageRepository() contract.ChatMessageRepository {
	return u.repo
}

type singleFactory struct{ uow *trackingUoW }

func (f singleFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func TestStoreMessage_RollsBackOnPersistenceError(t *testing.T) {
	storeErr := contract.WrapPersistence("save chat message", errors.New("connection refused"))
	uow := &trackingUoW{repo: failingRepo{err: storeErr}}
	bus := &mockEventBus{}

	svc := NewChatArchiveService(singleFactory{uow: uow}, NewArchiveEventPublisher(bus, logger.NewNop(), 0), nil, logger.NewNop())
	_, err := svc.StoreMessage(context.Background(), storeReq("u1"))

	require.Error(t, err)
	assert.True(t, contract.IsPersistenceError(err))
	assert.True(t, uow.rolledBack)
	assert.False(t, uow.committed)
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
