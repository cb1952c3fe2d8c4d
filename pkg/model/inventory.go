package model

import "time"

// InventoryItem is owned by the external inventory system; the pipeline only
// reads it when building suggestion context.
type InventoryItem struct {
	ID             uint    `gorm:"primaryKey"`
	VendorID       string  `gorm:"not null;uniqueIndex:idx_vendor_sku"`
	SKU            string  `gorm:"column:sku;not null;uniqueIndex:idx_vendor_sku"`
	ProductName    string  `gorm:"not null"`
	Description    string  `gorm:"type:text"`
	Price          float64 `gorm:"not null"`
	QuantityOnHand int     `gorm:"not null;default:0"`
	Category       string
	Supplier       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (InventoryItem) TableName() string {
	return "inventory"
}
