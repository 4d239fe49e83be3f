package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Name          string           `gorm:"not null" json:"name"`
	Price         decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	OriginalPrice *decimal.Decimal `gorm:"type:numeric(12,2)" json:"original_price"`
	Discount      *float64         `json:"discount"` // percentage, e.g. 12.5
	Category      string           `gorm:"index" json:"category"`
	Sub           string           `gorm:"index" json:"sub"` // subcategory
	Description   string           `json:"description"`
	Image         string           `json:"image"`
	Images        []string         `gorm:"type:text;serializer:json" json:"images"`
	Highlights    []string         `gorm:"type:text;serializer:json" json:"highlights"`
	Features      []string         `gorm:"type:text;serializer:json" json:"features"`
	Rating        float64          `gorm:"not null;default:0" json:"rating"`
	ReviewCount   int              `gorm:"not null;default:0" json:"review_count"`
	InStock       bool             `gorm:"not null" json:"in_stock"`
	StockQuantity int              `gorm:"not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"`
	IsFeatured    bool             `gorm:"not null" json:"is_featured"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeSave keeps the in-stock flag consistent with the stock count.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.InStock = p.StockQuantity > 0
	return nil
}
