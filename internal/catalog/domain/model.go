// Package domain contains the product catalog models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ProductCategory selects which cost formula applies to a product.
type ProductCategory string

const (
	CategoryPackaging  ProductCategory = "PACKAGING"
	CategoryWideFormat ProductCategory = "WIDE_FORMAT"
	CategoryLeaflets   ProductCategory = "LEAFLETS"
	CategoryFinished   ProductCategory = "FINISHED"
)

// Normalize maps an unknown or legacy category onto the FINISHED fallback.
// Unknown categories must not abort the costing pipeline.
func (c ProductCategory) Normalize() ProductCategory {
	switch c {
	case CategoryPackaging, CategoryWideFormat, CategoryLeaflets, CategoryFinished:
		return c
	default:
		return CategoryFinished
	}
}

// Product is a catalog entry. Once referenced by a booked invoice line its
// prices are immutable; historical costs must not change retroactively.
type Product struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name" gorm:"type:text;not null"`
	Category        ProductCategory `json:"category" gorm:"type:text;not null"`
	BasePrice       decimal.Decimal `json:"base_price" gorm:"type:numeric;not null"`
	CostPerAreaUnit decimal.Decimal `json:"cost_per_area_unit" gorm:"type:numeric;not null"`
	Active          bool            `json:"active" gorm:"not null;default:true"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }
