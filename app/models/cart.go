package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one row of a user's cart. Product is the joined catalog row
// (the "products" relation on reads); it is nil on write results.
type CartItem struct {
	ID        int64     `gorm:"primaryKey"           json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	ProductID int64     `gorm:"not null;index"       json:"product_id"`
	Quantity  int       `gorm:"not null"             json:"quantity"`
	CreatedAt time.Time `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"products,omitempty"`
}

func (CartItem) TableName() string { return "cart" }

// LineTotal is unit price times quantity, or zero without a joined product.
func (c CartItem) LineTotal() decimal.Decimal {
	if c.Product == nil {
		return decimal.Zero
	}
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartTotal sums LineTotal over items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// CartQuantity sums quantities over items.
func CartQuantity(items []CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
