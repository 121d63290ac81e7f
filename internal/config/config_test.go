package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "DATABASE_URL", "SQL_ECHO", "NATS_URL", "PARTITION_START_YEAR", "DB_MAX_OPEN_CONNS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()
	assert.Equal(t, "8000", cfg.App.Port)
	assert.Empty(t, cfg.App.NatsURL)
	assert.False(t, cfg.Database.SQLEcho)
	assert.Equal(t, 2025, cfg.Partition.StartYear)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.Equal(t, 12, cfg.Partition.EndMonth)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("SQL_ECHO", "True")
	t.Setenv("PARTITION_END_YEAR", "2030")
	t.Setenv("DB_MAX_IDLE_CONNS", "not-a-number")
	t.Setenv("GO_ENV", "production")

	cfg := Load()
	assert.Equal(t, "9000", cfg.App.Port)
	assert.True(t, cfg.Database.SQLEcho)
	assert.Equal(t, 2030, cfg.Partition.EndYear)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.True(t, cfg.App.IsProduction())
}

func TestGetEnvAsBool(t *testing.T) {
	tests := map[string]bool{"1": true, "yes": true, "off": false, "FALSE": false}
	for in, want := range tests {
		t.Setenv("FLAG_UNDER_TEST", in)
		assert.Equal(t, want, getEnvAsBool("FLAG_UNDER_TEST", !want), in)
	}
	t.Setenv("FLAG_UNDER_TEST", "maybe")
	assert.True(t, getEnvAsBool("FLAG_UNDER_TEST", true))
}

func TestAppConfig_JSONLogs(t *testing.T) {
	tests := []struct {
		format, env string
		want        bool
	}{
		{"json", "development", true},
		{"JSON", "", true},
		{"console", "production", false},
		{"text", "production", false},
		{"", "production", true},
		{"", "development", false},
		{"yaml", "development", false},
	}
	for _, tt := range tests {
		cfg := AppConfig{LogFormat: tt.format, Environment: tt.env}
		assert.Equal(t, tt.want, cfg.JSONLogs(), "LOG_FORMAT=%q GO_ENV=%q", tt.format, tt.env)
	}
}

func TestLoad_LogFormatAndPublishTimeout(t *testing.T) {
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("GO_ENV", "production")
	t.Setenv("NATS_PUBLISH_TIMEOUT_MS", "250")

	cfg := Load()
	assert.False(t, cfg.App.JSONLogs())
	assert.Equal(t, 250*time.Millisecond, cfg.App.NatsPublishTimeout)

	t.Setenv("NATS_PUBLISH_TIMEOUT_MS", "")
	os.Unsetenv("NATS_PUBLISH_TIMEOUT_MS")
	assert.Equal(t, 2*time.Second, Load().App.NatsPublishTimeout)
}
