package models

import "time"

// Product listing statuses. Soft deletion parks a listing on inactive;
// sold marks stock that moved out of the catalogue for good.
const (
	ProductActive   = "active"
	ProductInactive = "inactive"
	ProductSold     = "sold"
)

// Product is a seller's catalogue listing.
type Product struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SellerID    uint       `gorm:"not null;index" json:"seller_id"`
	Title       string     `gorm:"size:255;not null;index" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Price       float64    `gorm:"not null" json:"price"`
	Stock       int        `gorm:"not null;default:0" json:"stock"`
	Category    string     `gorm:"size:100;not null;index" json:"category"`
	Images      StringList `gorm:"type:text" json:"images"`
	Tags        StringList `gorm:"type:text" json:"tags"`
	Status      string     `gorm:"size:20;not null;default:active;index" json:"status"`
	Rating      float64    `gorm:"not null;default:0" json:"rating"`
	Views       int        `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Review is a buyer's rating of a product. The product's denormalised
// Rating column is recomputed from these rows.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"` // 1..5
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
