package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// Order is a placed order. Items is the nested "order_items" relation and
// is only populated by ListUserOrders.
type Order struct {
	ID              int64           `gorm:"primaryKey"                  json:"id"`
	UserID          string          `gorm:"size:36;not null;index"      json:"user_id"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	ShippingAddress string          `gorm:"type:text"                   json:"shipping_address"`
	Status          string          `gorm:"size:20;not null"            json:"status"`
	CreatedAt       time.Time       `gorm:"index"                       json:"created_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"order_items,omitempty"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is a line of an order, priced when the order was placed.
type OrderItem struct {
	ID         int64           `gorm:"primaryKey"                  json:"id"`
	OrderID    int64           `gorm:"not null;index"              json:"order_id"`
	ProductID  int64           `gorm:"not null"                    json:"product_id"`
	Quantity   int             `gorm:"not null"                    json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"products,omitempty"`
}

func (OrderItem) TableName() string { return "order_items" }

// NewOrderItems prices a cart snapshot into order lines for orderID.
func NewOrderItems(orderID int64, cart []CartItem) []OrderItem {
	items := make([]OrderItem, 0, len(cart))
	for _, c := range cart {
		unit := decimal.Zero
		if c.Product != nil {
			unit = c.Product.Price
		}
		items = append(items, OrderItem{
			OrderID:    orderID,
			ProductID:  c.ProductID,
			Quantity:   c.Quantity,
			UnitPrice:  unit,
			TotalPrice: c.LineTotal(),
		})
	}
	return items
}

var statusLabels = map[string]string{
	StatusPending:    "Pending",
	StatusProcessing: "Processing",
	StatusShipped:    "Shipped",
	StatusDelivered:  "Delivered",
	StatusCancelled:  "Cancelled",
}

// StatusLabel is the display text of status; unknown values are returned as is.
func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}
