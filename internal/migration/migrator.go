package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-archive/internal/pkg/logger"

	"gorm.io/gorm"
)

const module = "migration"

// Migration is one revision: statements to apply and to revert it.
type Migration struct {
	Version     string
	Description string
	Up          []string
	Down        []string
}

// SchemaMigration records an applied revision.
type SchemaMigration struct {
	Version   string    `gorm:"primaryKey;type:varchar(32)"`
	AppliedAt time.Time `gorm:"not null"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

type Migrator struct {
	db         *gorm.DB
	log        logger.ILogger
	migrations []Migration
}

func NewMigrator(db *gorm.DB, log logger.ILogger, migrations []Migration) *Migrator {
	return &Migrator{db: db, log: log, migrations: migrations}
}

// Applied lists the recorded versions, oldest first.
func (m *Migrator) Applied(ctx context.Context) ([]string, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaMigration{}); err != nil {
		return nil, fmt.Errorf("prepare schema_migrations: %w", err)
	}
	var rows []SchemaMigration
	if err := m.db.WithContext(ctx).Order("version").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	versions := make([]string, len(rows))
	for i, r := range rows {
		versions[i] = r.Version
	}
	return versions, nil
}

// Up applies every pending migration, each in its own transaction together
// with its schema_migrations row. Already applied versions are skipped.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	var ran []string
	for _, mig := range m.migrations {
		if done[mig.Version] {
			m.log.Debug(module, "migration.skipped", map[string]interface{}{"version": mig.Version})
			continue
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, stmt := range mig.Up {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return tx.Create(&SchemaMigration{Version: mig.Version, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return ran, fmt.Errorf("migration %s up: %w", mig.Version, err)
		}
		m.log.Info(module, "migration.applied", map[string]interface{}{
			"version":     mig.Version,
			"description": mig.Description,
			"statements":  len(mig.Up),
		})
		ran = append(ran, mig.Version)
	}
	return ran, nil
}

// Down reverts applied migrations newest first.
func (m *Migrator) Down(ctx context.Context) ([]string, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	var reverted []string
	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if !done[mig.Version] {
			continue
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, stmt := range mig.Down {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
			res := tx.Where("version = ?", mig.Version).Delete(&SchemaMigration{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errors.New("schema_migrations row vanished")
			}
			return nil
		})
		if err != nil {
			return reverted, fmt.Errorf("migration %s down: %w", mig.Version, err)
		}
		m.log.Info(module, "migration.reverted", map[string]interface{}{"version": mig.Version})
		reverted = append(reverted, mig.Version)
	}
	return reverted, nil
}
