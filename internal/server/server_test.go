package server

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"chat-archive/internal/bootstrap"
	"chat-archive/internal/config"
	"chat-archive/internal/controller"
	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/pkg/requestctx"
	"chat-archive/internal/repository/memory"
	"chat-archive/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(health error) *Server {
	log := logger.NewNop()
	svc := service.NewChatArchiveService(memory.NewRepositoryFactory(memory.NewChatMessageStore()), service.NewArchiveEventPublisher(nil, log, 0), nil, log)
	container := &bootstrap.Container{
		ChatArchiveController: controller.NewChatArchiveController(svc),
		ChatArchiveService:    svc,
		HealthCheck:           func(context.Context) error { return health },
	}
	cfg := &config.Config{App: config.AppConfig{Port: "0", CorsAllowedOrigins: "*", Environment: "test"}}
	return New(cfg, container, log)
}

func TestHealth(t *testing.T) {
	resp, err := newTestServer(nil).GetApp().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestctx.RequestIDHeader))

	resp, err = newTestServer(errors.New("db down")).GetApp().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
}

func TestRoutesMounted(t *testing.T) {
	app := newTestServer(nil).GetApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/messages?day=2025-06-15", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
