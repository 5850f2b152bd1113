package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Category struct {
	BaseModel
	Name     string    `json:"name"`
	NameAr   string    `json:"name_ar"`
	Slug     string    `gorm:"uniqueIndex" json:"slug"`
	Products []Product `json:"products,omitempty"`
}

type Brand struct {
	BaseModel
	Name     string    `json:"name"`
	Country  string    `json:"country"`
	Products []Product `json:"products,omitempty"`
}

// Product is the live catalog entry. Catalog CRUD lives elsewhere; checkout
// only reads it and moves StockQuantity through the inventory ledger.
type Product struct {
	BaseModel
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Images        pq.StringArray   `gorm:"type:text[]" json:"images"`
	BasePrice     decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"base_price"`
	StockQuantity int              `gorm:"not null;default:0;check:chk_products_stock,stock_quantity >= 0" json:"stock_quantity"`
	IsActive      bool             `gorm:"not null" json:"is_active"`
	BrandID       *uuid.UUID       `gorm:"type:uuid" json:"brand_id"`
	Brand         *Brand           `json:"brand,omitempty"`
	CategoryID    *uuid.UUID       `gorm:"type:uuid" json:"category_id"`
	Category      *Category        `json:"category,omitempty"`
	Variants      []ProductVariant `json:"variants,omitempty"`
}

// ProductVariant is a sellable SKU. When an order line names a variant, the
// variant's StockQuantity is the one that moves.
type ProductVariant struct {
	BaseModel
	ProductID     uuid.UUID       `gorm:"type:uuid;index" json:"product_id"`
	SKU           string          `gorm:"uniqueIndex" json:"sku"`
	Name          string          `json:"name"`
	Color         string          `json:"color"`
	Size          string          `json:"size"`
	Material      string          `json:"material"`
	PriceDelta    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price_delta"`
	StockQuantity int             `gorm:"not null;default:0;check:chk_variants_stock,stock_quantity >= 0" json:"stock_quantity"`
	IsActive      bool            `gorm:"not null" json:"is_active"`
}
