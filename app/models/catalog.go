package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend's numeric columns are JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category groups products. Products reference it by name.
type Category struct {
	ID          int64     `gorm:"primaryKey"             json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text"              json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Category) TableName() string { return "categories" }

// Product is a catalog entry. Inactive products are never listed.
type Product struct {
	ID          int64           `gorm:"primaryKey"                      json:"id"`
	Name        string          `gorm:"size:255;not null;index"         json:"name"`
	Description string          `gorm:"type:text"                       json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"     json:"price"`
	Category    string          `gorm:"size:100;index"                  json:"category"`
	ImageURL    string          `gorm:"size:512"                        json:"image_url"`
	Stock       int             `gorm:"not null;default:0"              json:"stock"`
	IsActive    bool            `gorm:"not null;index"                  json:"is_active"`
	CreatedAt   time.Time       `gorm:"index"                           json:"created_at"`
}

func (Product) TableName() string { return "products" }
