package domain

import "time"

type InventoryStatus string

const (
	InventoryInStock    InventoryStatus = "In Stock"
	InventoryLowStock   InventoryStatus = "Low Stock"
	InventoryOutOfStock InventoryStatus = "Out of Stock"
)

// LowStockThreshold — ниже этого остатка позиция считается дефицитной
const LowStockThreshold = 10

type InventoryItem struct {
	ID        string          `json:"id"`
	Item      string          `json:"item" validate:"required,max=200"`
	Category  string          `json:"category" validate:"required,max=100"`
	Quantity  int             `json:"quantity" validate:"gte=0"`
	Unit      string          `json:"unit" validate:"required,max=30"`
	Status    InventoryStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// StatusForQuantity вычисляет статус позиции по остатку.
func StatusForQuantity(q int) InventoryStatus {
	switch {
	case q <= 0:
		return InventoryOutOfStock
	case q < LowStockThreshold:
		return InventoryLowStock
	default:
		return InventoryInStock
	}
}
