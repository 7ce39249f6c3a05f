package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"todo/internal/logger"
	"todo/internal/models"
)

// Migration is one versioned schema change.
type Migration struct {
	ID   string
	Up   func(tx *gorm.DB) error
	Down func(tx *gorm.DB) error
}

type schemaMigration struct {
	ID        string `gorm:"primaryKey;type:varchar(255)"`
	AppliedAt time.Time
}

func (schemaMigration) TableName() string { return "migrations" }

// Migrations lists every schema change in the order it must be applied.
var Migrations = []Migration{
	{
		ID: "1723098730457_create_users_table",
		Up: func(tx *gorm.DB) error {
			if tx.Migrator().HasTable(&models.User{}) {
				return nil
			}
			return tx.Migrator().CreateTable(&models.User{})
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&models.User{})
		},
	},
	{
		// Also creates tasks.userId -> users.id with ON DELETE/UPDATE CASCADE.
		ID: "1723104280515_create_tasks_table",
		Up: func(tx *gorm.DB) error {
			if tx.Migrator().HasTable(&models.Task{}) {
				return nil
			}
			return tx.Migrator().CreateTable(&models.Task{})
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&models.Task{})
		},
	},
}

// Migrate applies every migration that has not run yet and returns their ids.
func Migrate(ctx context.Context, db *gorm.DB) ([]string, error) {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return nil, fmt.Errorf("failed to prepare migrations table: %w", err)
	}

	done, err := appliedIDs(db)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, m := range Migrations {
		if done[m.ID] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{ID: m.ID, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration %s failed: %w", m.ID, err)
		}
		logger.Info("migration applied", "id", m.ID)
		applied = append(applied, m.ID)
	}
	return applied, nil
}

// Rollback reverts the most recently applied migration and returns its id.
// It returns an empty id when nothing has been applied.
func Rollback(ctx context.Context, db *gorm.DB) (string, error) {
	db = db.WithContext(ctx)
	if !db.Migrator().HasTable(&schemaMigration{}) {
		return "", nil
	}

	done, err := appliedIDs(db)
	if err != nil {
		return "", err
	}

	for i := len(Migrations) - 1; i >= 0; i-- {
		m := Migrations[i]
		if !done[m.ID] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&schemaMigration{ID: m.ID}).Error
		})
		if err != nil {
			return "", fmt.Errorf("rollback of %s failed: %w", m.ID, err)
		}
		logger.Info("migration rolled back", "id", m.ID)
		return m.ID, nil
	}
	return "", nil
}

func appliedIDs(db *gorm.DB) (map[string]bool, error) {
	var rows []schemaMigration
	if err := db.Find(&rows).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	done := make(map[string]bool, len(rows))
	for _, r := range rows {
		done[r.ID] = true
	}
	return done, nil
}
