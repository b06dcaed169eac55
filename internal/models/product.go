package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	CategoryID        *uuid.UUID `json:"category_id" db:"category_id"`
	Name              string     `json:"name" db:"name"`
	Slug              string     `json:"slug" db:"slug"`
	SKU               string     `json:"sku" db:"sku"`
	Description       string     `json:"description" db:"description"`
	Price             float64    `json:"price" db:"price"`
	StockQuantity     int        `json:"stock_quantity" db:"stock_quantity"`
	LowStockThreshold int        `json:"low_stock_threshold" db:"low_stock_threshold"`
	ImageKey          *string    `json:"image_key,omitempty" db:"image_key"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// ProductSearchFilter holds search and filter criteria for catalog queries.
type ProductSearchFilter struct {
	Query      string     `json:"query,omitempty"`       // Matches name, SKU, description
	CategoryID *uuid.UUID `json:"category_id,omitempty"` // Filter by category
	MinPrice   *float64   `json:"min_price,omitempty"`
	MaxPrice   *float64   `json:"max_price,omitempty"`
	InStock    bool       `json:"in_stock,omitempty"` // Only products with stock_quantity > 0
	SortBy     string     `json:"sort_by,omitempty"`  // name, created_at, price, stock_quantity
	SortOrder  string     `json:"sort_order,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}
