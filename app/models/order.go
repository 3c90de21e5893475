package models

import "time"

// Order statuses. Transitions are validated against this set only; any
// listed status may be assigned by a seller or admin. Buyers can cancel
// while the order is still pending or confirmed.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// OrderStatuses is the full set of valid statuses.
var OrderStatuses = []string{
	OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled,
}

// ValidOrderStatus reports whether s is a recognised order status.
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Order is a buyer's purchase. Items snapshot product data at purchase
// time, so later edits to the listing do not rewrite order history.
type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	BuyerID         uint        `gorm:"not null;index" json:"buyer_id"`
	TotalAmount     float64     `gorm:"not null" json:"total_amount"`
	Status          string      `gorm:"size:20;not null;default:pending;index" json:"status"`
	ShippingAddress Address     `gorm:"type:text" json:"shipping_address"`
	BillingAddress  *Address    `gorm:"type:text" json:"billing_address,omitempty"`
	Notes           string      `gorm:"type:text" json:"notes,omitempty"`
	TrackingNumber  string      `gorm:"size:100" json:"tracking_number,omitempty"`
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem is one line of an order. Price, ProductTitle and SellerID are
// copied from the product at purchase time.
type OrderItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;index" json:"order_id"`
	ProductID    uint      `gorm:"not null;index" json:"product_id"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	Price        float64   `gorm:"not null" json:"price"`
	ProductTitle string    `gorm:"size:255;not null" json:"product_title"`
	SellerID     uint      `gorm:"not null;index" json:"seller_id"`
	CreatedAt    time.Time `json:"created_at"`
}
