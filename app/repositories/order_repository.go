package repositories

import (
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
)

// OrderRepository handles order placement and lifecycle. Placement and
// cancellation run inside transactions so stock and order rows never
// disagree.
type OrderRepository struct {
	db       *gorm.DB
	products *ProductRepository
}

func NewOrderRepository(db *gorm.DB, products *ProductRepository) *OrderRepository {
	return &OrderRepository{db: db, products: products}
}

// OrderLine is one requested item at placement time.
type OrderLine struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gte=1"`
}

// OrderFilter narrows order listings. From is inclusive; To covers the
// whole of its calendar day.
type OrderFilter struct {
	Status string
	From   time.Time
	To     time.Time
	Page   int
	Limit  int
}

func (f OrderFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To.AddDate(0, 0, 1))
	}
	return q
}

// OrderStats aggregates a buyer's or seller's order history.
type OrderStats struct {
	TotalOrders     int64   `json:"total_orders"`
	TotalSpent      float64 `json:"total_spent"`
	PendingOrders   int64   `json:"pending_orders"`
	DeliveredOrders int64   `json:"delivered_orders"`
	CancelledOrders int64   `json:"cancelled_orders"`
}

// Create places an order for the buyer. Each line is checked against the
// live product row and stock is decremented conditionally inside the same
// transaction; any failing line rolls the whole order back.
func (r *OrderRepository) Create(buyerID uint, lines []OrderLine, shipping models.Address, billing *models.Address, notes string) (models.Order, error) {
	if len(lines) == 0 {
		return models.Order{}, ErrEmptyOrder
	}

	var order models.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var items []models.OrderItem
		var total float64

		for _, line := range lines {
			var product models.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return ErrProductUnavailable
				}
				return err
			}
			if product.Status != models.ProductActive {
				return ErrProductUnavailable
			}
			if product.Stock < line.Quantity {
				return ErrInsufficientStock
			}
			if err := r.products.DecrementStock(tx, product.ID, line.Quantity); err != nil {
				return err
			}

			items = append(items, models.OrderItem{
				ProductID:    product.ID,
				Quantity:     line.Quantity,
				Price:        product.Price,
				ProductTitle: product.Title,
				SellerID:     product.SellerID,
			})
			total += product.Price * float64(line.Quantity)
		}

		order = models.Order{
			BuyerID:         buyerID,
			TotalAmount:     total,
			Status:          models.OrderPending,
			ShippingAddress: shipping,
			BillingAddress:  billing,
			Notes:           notes,
			Items:           items,
		}
		return tx.Create(&order).Error
	})
	return order, err
}

// ByID returns an order with its items.
func (r *OrderRepository) ByID(id uint) (models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").First(&order, id).Error
	return order, err
}

// ByBuyer returns a page of the buyer's orders, newest first.
func (r *OrderRepository) ByBuyer(buyerID uint, f OrderFilter) ([]models.Order, Pagination, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit, 100)

	q := f.apply(r.db.Model(&models.Order{}).Where("buyer_id = ?", buyerID))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var orders []models.Order
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&orders).Error
	return orders, paginate(f.Page, f.Limit, total), err
}

// BySeller returns a page of orders containing at least one of the
// seller's items, newest first.
func (r *OrderRepository) BySeller(sellerID uint, f OrderFilter) ([]models.Order, Pagination, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit, 100)

	q := f.apply(r.db.Model(&models.Order{}).
		Where("id IN (?)", r.db.Model(&models.OrderItem{}).
			Select("order_id").
			Where("seller_id = ?", sellerID)))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var orders []models.Order
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&orders).Error
	return orders, paginate(f.Page, f.Limit, total), err
}

// Cancel cancels the buyer's own order and returns stock to the shelf.
// Only pending and confirmed orders can be cancelled.
func (r *OrderRepository) Cancel(id, buyerID uint) (models.Order, error) {
	var order models.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").
			Where("id = ? AND buyer_id = ?", id, buyerID).
			First(&order).Error; err != nil {
			return err
		}
		if order.Status != models.OrderPending && order.Status != models.OrderConfirmed {
			return ErrCannotCancel
		}
		for _, item := range order.Items {
			if err := r.products.IncrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		order.Status = models.OrderCancelled
		return tx.Model(&models.Order{}).
			Where("id = ?", id).
			Update("status", models.OrderCancelled).Error
	})
	return order, err
}

// UpdateStatus moves the order to a new lifecycle status. Unknown statuses
// are rejected; a tracking number may be attached alongside.
func (r *OrderRepository) UpdateStatus(id uint, status, tracking string) (models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return models.Order{}, ErrInvalidStatus
	}

	fields := map[string]interface{}{"status": status}
	if tracking != "" {
		fields["tracking_number"] = tracking
	}

	res := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.Order{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.Order{}, gorm.ErrRecordNotFound
	}
	return r.ByID(id)
}

// Stats aggregates the buyer's order history.
func (r *OrderRepository) Stats(buyerID uint) (OrderStats, error) {
	var stats OrderStats
	err := r.db.Model(&models.Order{}).
		Select(
			"COUNT(*) AS total_orders, "+
				"COALESCE(SUM(CASE WHEN status <> ? THEN total_amount ELSE 0 END), 0) AS total_spent, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS pending_orders, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS delivered_orders, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS cancelled_orders",
			models.OrderCancelled, models.OrderPending, models.OrderDelivered, models.OrderCancelled,
		).
		Where("buyer_id = ?", buyerID).
		Scan(&stats).Error
	return stats, err
}

// BuyerOf returns the buyer id owning order id.
func (r *OrderRepository) BuyerOf(id uint) (uint, error) {
	var order models.Order
	err := r.db.Select("buyer_id").First(&order, id).Error
	return order.BuyerID, err
}
