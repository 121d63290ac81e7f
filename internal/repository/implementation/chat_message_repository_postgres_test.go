package implementation

import (
	"context"
	"os"
	"testing"
	"time"

	"chat-archive/internal/entity"
	"chat-archive/internal/migration"
	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/repository/contract"
	"chat-archive/pkg/database"
	"chat-archive/pkg/partition"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func postgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_POSTGRES_DSN not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, database.Options{MaxOpenConns: 4})
	require.NoError(t, err)

	plan, err := partition.Plan(migration.TableName, partition.Month{Year: 2025, Month: time.June}, partition.Month{Year: 2025, Month: time.July})
	require.NoError(t, err)
	m := migration.NewMigrator(db, logger.NewNop(), migration.ChatArchive(plan))

	ctx := context.Background()
	_, _ = m.Down(ctx)
	_, err = m.Up(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = m.Down(ctx) })
	return db
}

func TestPostgres_RoundTripAcrossPartitions(t *testing.T) {
	db := postgresDB(t)
	ctx := context.Background()
	repo := NewChatMessageRepository(db, logger.NewNop())

	june := entity.NewChatMessage("u1", "Ann", "q1", "a1")
	june.CreatedAt = time.Date(2025, 6, 30, 23, 59, 59, 123456789, time.UTC)
	require.NoError(t, repo.Save(ctx, june))
	assert.Equal(t, 123456000, june.CreatedAt.Nanosecond())

	later := entity.NewChatMessage("u1", "Ann", "q2", "a2")
	later.CreatedAt = time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, later))

	var where string
	require.NoError(t, db.Raw("SELECT tableoid::regclass::text FROM chat_messages WHERE id = ?", later.Id).Scan(&where).Error)
	assert.Equal(t, "chat_messages_default", where)

	rows, total, err := repo.FindByUser(ctx, "u1", june.CreatedAt, june.CreatedAt, 50, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.True(t, june.CreatedAt.Equal(rows[0].CreatedAt))

	_, total, err = repo.FindByPeriod(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2031, 12, 31, 0, 0, 0, 0, time.UTC), 50, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	n, err := repo.DeleteByUser(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestPostgres_DuplicateKey(t *testing.T) {
	db := postgresDB(t)
	ctx := context.Background()
	repo := NewChatMessageRepository(db, logger.NewNop())

	msg := entity.NewChatMessage("u1", "Ann", "q", "a")
	msg.Id = uuid.New()
	msg.CreatedAt = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, msg))

	dup := *msg
	err := repo.Save(ctx, &dup)
	assert.ErrorIs(t, err, contract.ErrDuplicateMessage)
}
