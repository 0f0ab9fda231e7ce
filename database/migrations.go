package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/utils"
)

// Migration is one schema step. Steps only ever move forward.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// Migrations is applied in order; append new steps at the end.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "create tables, order items and products",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.Table{}, &models.OrderItem{}, &models.Product{})
		},
	},
	{
		Version: 2,
		Name:    "derive product option type from size flag",
		Up: func(tx *gorm.DB) error {
			if err := tx.Model(&models.Product{}).
				Where("(option_type IS NULL OR option_type = '') AND has_size_option = ?", true).
				Update("option_type", models.OptionSizePG).Error; err != nil {
				return err
			}
			return tx.Model(&models.Product{}).
				Where("option_type IS NULL OR option_type = ''").
				Update("option_type", models.OptionPlain).Error
		},
	},
	{
		Version: 3,
		Name:    "derive launch status of active tables",
		Up: func(tx *gorm.DB) error {
			pending := tx.Model(&models.OrderItem{}).Select("table_id").
				Where("cancelled = ? AND launched = ?", false, false)
			withItems := tx.Model(&models.OrderItem{}).Select("table_id")
			unset := tx.Model(&models.Table{}).
				Where("status <> ?", models.TableClosed).
				Where("launch_status IS NULL OR launch_status = ''")

			if err := unset.Session(&gorm.Session{}).
				Where("id IN (?)", pending).
				Update("launch_status", models.AwaitingLaunch).Error; err != nil {
				return err
			}
			return unset.Session(&gorm.Session{}).
				Where("id IN (?)", withItems).
				Update("launch_status", models.Launched).Error
		},
	},
	{
		Version: 4,
		Name:    "fill missing product last use",
		Up: func(tx *gorm.DB) error {
			return tx.Model(&models.Product{}).
				Where("last_used_at IS NULL").
				Update("last_used_at", time.Now().UTC()).Error
		},
	},
}

// Migrate applies every step newer than the recorded schema version, each in
// its own transaction. It returns how many steps ran.
func Migrate(db *gorm.DB) (int, error) {
	return migrate(db, Migrations)
}

func migrate(db *gorm.DB, steps []Migration) (int, error) {
	if err := db.AutoMigrate(&models.SchemaVersion{}); err != nil {
		return 0, fmt.Errorf("schema_versions: %w", err)
	}

	var current int
	if err := db.Model(&models.SchemaVersion{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&current).Error; err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	applied := 0
	for _, step := range steps {
		if step.Version <= current {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := step.Up(tx); err != nil {
				return err
			}
			return tx.Create(&models.SchemaVersion{
				Version:   step.Version,
				Name:      step.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", step.Version, step.Name, err)
		}
		utils.InfoLogger.Printf("Applied migration %d: %s", step.Version, step.Name)
		applied++
	}
	return applied, nil
}
