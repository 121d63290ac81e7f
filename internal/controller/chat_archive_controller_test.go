package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-archive/internal/dto"
	"chat-archive/internal/entity"
	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/pkg/serverutils"
	"chat-archive/internal/repository/memory"
	"chat-archive/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	app   *fiber.App
	store *memory.ChatMessageStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	store := memory.NewChatMessageStore()
	svc := service.NewChatArchiveService(memory.NewRepositoryFactory(store), service.NewArchiveEventPublisher(nil, log, 0), nil, log)

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandlerMiddleware(log)})
	app.Use(serverutils.RequestContextMiddleware(log))
	NewChatArchiveController(svc).RegisterRoutes(app)
	return &fixture{app: app, store: store}
}

func (f *fixture) seed(t *testing.T, userId string, at time.Time) {
	t.Helper()
	msg := entity.NewChatMessage(userId, "Secret Name", "q", "a")
	msg.CreatedAt = at
	require.NoError(t, memory.NewChatMessageRepository(f.store).Save(context.Background(), msg))
}

func (f *fixture) do(t *testing.T, method, target, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func at(day string, clock string) time.Time {
	ts, _ := time.Parse(time.DateTime, day+" "+clock)
	return ts
}

func TestStoreMessage_Created(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, "POST", "/api/v1/messages", `{"user_id":"u1","name":"Ann","question":"q","answer":"a"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.StoreMessageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Id)
	assert.True(t, strings.HasSuffix(body.CreatedAt, "+00:00"))
	assert.Equal(t, 1, f.store.Len())
}

func TestStoreMessage_MissingFields(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "POST", "/api/v1/messages", `{"user_id":"u1"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp = f.do(t, "POST", "/api/v1/messages", `{not json`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Zero(t, f.store.Len())
}

func TestGetMessages_ByDay(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u1", at("2025-06-15", "09:00:00"))
	f.seed(t, "u2", at("2025-06-15", "18:30:00"))

	resp := f.do(t, "GET", "/api/v1/messages?day=2025-06-15", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "user_id")
	assert.NotContains(t, string(raw), "Secret Name")

	var page dto.MessagePage
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, dto.DefaultPageSize, page.PageSize)
	assert.Equal(t, "2025-06-15T18:30:00+00:00", page.Items[0].CreatedAt)
}

func TestGetMessages_EmptyPageIsNoContent(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u1", at("2025-06-15", "09:00:00"))

	resp := f.do(t, "GET", "/api/v1/messages?start=2025-06-01&end=2025-06-30&page_size=10&page=4", "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(serverutils.TotalCountHeader))
	assert.Equal(t, "10", resp.Header.Get(serverutils.PageSizeHeader))
	assert.Equal(t, "4", resp.Header.Get(serverutils.PageHeader))
}

func TestGetMessages_QueryValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name  string
		query string
	}{
		{"nothing", ""},
		{"day with start", "?day=2025-06-15&start=2025-06-01"},
		{"start only", "?start=2025-06-01"},
		{"end only", "?end=2025-06-01"},
		{"end before start", "?start=2025-06-30&end=2025-06-01"},
		{"malformed day", "?day=yesterday"},
		{"page size zero", "?day=2025-06-15&page_size=0"},
		{"page size too big", "?day=2025-06-15&page_size=101"},
		{"negative page", "?day=2025-06-15&page=-1"},
		{"non numeric page", "?day=2025-06-15&page=abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, "GET", "/api/v1/messages"+tt.query, "")
			assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		})
	}
}

func TestGetUserMessages(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.seed(t, "u1", at("2025-06-15", fmt.Sprintf("10:%02d:00", i)))
	}
	f.seed(t, "u2", at("2025-06-15", "11:00:00"))

	resp := f.do(t, "GET", "/api/v1/users/u1/messages?start=2025-06-15&end=2025-06-15&page_size=2&page=2", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var page dto.MessagePage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "2025-06-15T10:00:00+00:00", page.Items[0].CreatedAt)

	resp = f.do(t, "GET", "/api/v1/users/u1/messages?start=2025-06-15", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u1", at("2025-06-15", "09:00:00"))
	f.seed(t, "u1", at("2026-01-02", "09:00:00"))

	resp := f.do(t, "DELETE", "/api/v1/users/u1", "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get(DeletedCountHeader))
	assert.Zero(t, f.store.Len())

	resp = f.do(t, "DELETE", "/api/v1/users/u1", "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get(DeletedCountHeader))
}
