package services

import (
	"gorm.io/gorm"

	"github.com/yeremiapane/garcom-app/models"
)

// recomputeLaunchStatus derives a table's launch status from its items: the
// table awaits launch while any non-cancelled item is not launched.
// It reads items and writes the table, never the other way around.
func recomputeLaunchStatus(tx *gorm.DB, tableID string) (models.LaunchStatus, error) {
	var pending int64
	if err := tx.Model(&models.OrderItem{}).
		Where("table_id = ? AND cancelled = ? AND launched = ?", tableID, false, false).
		Count(&pending).Error; err != nil {
		return models.LaunchUnset, err
	}

	status := models.Launched
	if pending > 0 {
		status = models.AwaitingLaunch
	}
	if err := tx.Model(&models.Table{}).
		Where("id = ?", tableID).
		Update("launch_status", status).Error; err != nil {
		return models.LaunchUnset, err
	}
	return status, nil
}

func findTable(tx *gorm.DB, id string) (*models.Table, error) {
	var table models.Table
	if err := tx.First(&table, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "table", id)
	}
	return &table, nil
}

func findItem(tx *gorm.DB, id string) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := tx.First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "item", id)
	}
	return &item, nil
}
