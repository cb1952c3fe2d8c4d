package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/dealsense/dealsense/pkg/model"
)

// InventoryRepository reads the inventory table owned by the external
// inventory system.
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) ListByVendor(ctx context.Context, vendorID string) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Find(&items).Error
	return items, err
}
