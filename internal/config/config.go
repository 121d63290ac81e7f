package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Partition PartitionConfig
	Telemetry TelemetryConfig
	Keys      TopicKeys
}

type AppConfig struct {
	Port                string
	Environment         string
	LogLevel            string
	LogFormat           string // json or console; empty follows Environment
	LogFilePath         string
	ErasureAuditLogPath string
	CorsAllowedOrigins  string
	NatsURL             string // empty disables domain events
	NatsPublishTimeout  time.Duration
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// JSONLogs reports whether console logs are JSON. LOG_FORMAT wins; without it
// production logs JSON and everything else uses the console encoder.
func (a AppConfig) JSONLogs() bool {
	switch strings.ToLower(strings.TrimSpace(a.LogFormat)) {
	case "json":
		return true
	case "console", "text":
		return false
	default:
		return a.IsProduction()
	}
}

type DatabaseConfig struct {
	Connection   string
	SQLEcho      bool
	MaxIdleConns int
	MaxOpenConns int
}

// PartitionConfig bounds the monthly partitions created by the migration.
type PartitionConfig struct {
	StartYear  int
	StartMonth int
	EndYear    int
	EndMonth   int
}

type TelemetryConfig struct {
	Enabled      bool
	OtlpEndpoint string
}

type TopicKeys struct {
	ErasureAuditTopic string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                getEnv("APP_PORT", "8000"),
			Environment:         getEnv("GO_ENV", "development"),
			LogLevel:            getEnv("LOG_LEVEL", "info"),
			LogFormat:           getEnv("LOG_FORMAT", ""),
			LogFilePath:         getEnv("LOG_FILE_PATH", "logs/chat-archive.log"),
			ErasureAuditLogPath: getEnv("ERASURE_AUDIT_LOG_PATH", "logs/erasure-audit.log"),
			CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:             getEnv("NATS_URL", ""),
			NatsPublishTimeout:  time.Duration(getEnvAsInt("NATS_PUBLISH_TIMEOUT_MS", 2000)) * time.Millisecond,
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DATABASE_URL", ""),
			SQLEcho:      getEnvAsBool("SQL_ECHO", false),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		},
		Partition: PartitionConfig{
			StartYear:  getEnvAsInt("PARTITION_START_YEAR", 2025),
			StartMonth: getEnvAsInt("PARTITION_START_MONTH", 6),
			EndYear:    getEnvAsInt("PARTITION_END_YEAR", 2029),
			EndMonth:   getEnvAsInt("PARTITION_END_MONTH", 12),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OtlpEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Keys: TopicKeys{
			ErasureAuditTopic: getEnv("ERASURE_AUDIT_TOPIC", "CHAT_ARCHIVE_ERASURE_AUDIT"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(getEnv(key, ""))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
