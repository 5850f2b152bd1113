package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/sol/internal/models"
)

// AppendTimeline adds one localized entry to an order's history.
func AppendTimeline(tx *gorm.DB, orderID uuid.UUID, status models.TimelineStatus, lang Lang, note string) (*models.OrderTimeline, error) {
	entry := models.OrderTimeline{
		OrderID:     orderID,
		Status:      status,
		Description: Describe("timeline."+string(status), lang),
		Note:        note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// LoadTimeline returns an order's history, oldest first.
func LoadTimeline(db *gorm.DB, orderID uuid.UUID) ([]models.OrderTimeline, error) {
	var entries []models.OrderTimeline
	err := db.Where("order_id = ?", orderID).Order("created_at asc, id asc").Find(&entries).Error
	return entries, err
}
