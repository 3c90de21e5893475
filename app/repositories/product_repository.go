package repositories

import (
	"strings"

	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
)

// ProductRepository handles catalogue reads and writes.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ProductFilter narrows catalogue searches. Zero values mean "no filter".
type ProductFilter struct {
	Category  string
	Search    string
	MinPrice  float64
	MaxPrice  float64
	Tags      []string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// ProductUpdate carries the seller-editable listing fields. A nil pointer
// means "leave unchanged".
type ProductUpdate struct {
	Title       *string            `json:"title" validate:"nullable,min=2,max=255"`
	Description *string            `json:"description"`
	Price       *float64           `json:"price" validate:"nullable,gt=0"`
	Stock       *int               `json:"stock" validate:"nullable,gte=0"`
	Category    *string            `json:"category" validate:"nullable,min=2,max=100"`
	Images      *models.StringList `json:"images"`
	Tags        *models.StringList `json:"tags"`
	Status      *string            `json:"status" validate:"nullable,in=active,inactive,sold"`
}

// ProductDetail is a product joined with its seller's public name.
type ProductDetail struct {
	models.Product
	SellerName string `json:"seller_name"`
}

// CategoryCount is one row of the category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// sortColumns is the allow-list for search ordering. Anything else falls
// back to created_at.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price",
	"rating":     "rating",
	"views":      "views",
	"title":      "title",
}

// Create inserts a new listing.
func (r *ProductRepository) Create(p *models.Product) error {
	return r.db.Create(p).Error
}

// FindByID returns a listing by primary key. Sold listings are out of the
// catalogue for good and stay hidden.
func (r *ProductRepository) FindByID(id uint) (models.Product, error) {
	var p models.Product
	err := r.db.Where("id = ? AND status IN ?", id,
		[]string{models.ProductActive, models.ProductInactive}).
		First(&p).Error
	return p, err
}

// FindDetail returns a listing joined with its seller's name.
func (r *ProductRepository) FindDetail(id uint) (ProductDetail, error) {
	var d ProductDetail
	err := r.db.Model(&models.Product{}).
		Select("products.*, users.name AS seller_name").
		Joins("JOIN users ON users.id = products.seller_id").
		Where("products.id = ? AND products.status IN ?", id,
			[]string{models.ProductActive, models.ProductInactive}).
		Take(&d).Error
	return d, err
}

// Search returns a page of active listings matching the filter.
func (r *ProductRepository) Search(f ProductFilter) ([]models.Product, Pagination, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit, 100)

	q := r.db.Model(&models.Product{}).Where("status = ?", models.ProductActive)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinPrice > 0 {
		q = q.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price <= ?", f.MaxPrice)
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", needle, needle)
	}
	if len(f.Tags) > 0 {
		// Tags are stored as a JSON array in a text column; a quoted LIKE
		// match gives cross-driver tag overlap without JSON functions.
		or := r.db
		for i, tag := range f.Tags {
			pattern := `%"` + tag + `"%`
			if i == 0 {
				or = r.db.Where("tags LIKE ?", pattern)
			} else {
				or = or.Or("tags LIKE ?", pattern)
			}
		}
		q = q.Where(or)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}

	var products []models.Product
	err := q.Order(col + " " + dir).
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&products).Error
	return products, paginate(f.Page, f.Limit, total), err
}

// BySeller returns a page of the seller's own listings, every status
// unless a specific one is requested.
func (r *ProductRepository) BySeller(sellerID uint, status string, page, limit int) ([]models.Product, Pagination, error) {
	page, limit = clampPage(page, limit, 100)

	q := r.db.Model(&models.Product{}).Where("seller_id = ?", sellerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var products []models.Product
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&products).Error
	return products, paginate(page, limit, total), err
}

// Update applies the allow-listed listing fields and returns the fresh row.
func (r *ProductRepository) Update(id uint, upd ProductUpdate) (models.Product, error) {
	fields := map[string]interface{}{}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Price != nil {
		fields["price"] = *upd.Price
	}
	if upd.Stock != nil {
		fields["stock"] = *upd.Stock
	}
	if upd.Category != nil {
		fields["category"] = *upd.Category
	}
	if upd.Images != nil {
		fields["images"] = *upd.Images
	}
	if upd.Tags != nil {
		fields["tags"] = *upd.Tags
	}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if len(fields) == 0 {
		return models.Product{}, ErrNoFields
	}

	res := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return models.Product{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.Product{}, gorm.ErrRecordNotFound
	}

	// Plain fetch: the update may have just parked the row on sold.
	var p models.Product
	err := r.db.First(&p, id).Error
	return p, err
}

// SoftDelete pulls the listing from the public catalogue by parking it on
// inactive. Order item snapshots keep referencing it, so the row is never
// removed and the seller can relist later.
func (r *ProductRepository) SoftDelete(id uint) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Update("status", models.ProductInactive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock atomically reduces stock by qty, refusing to go negative.
// The stock floor lives in the WHERE clause, so two concurrent buyers
// cannot both take the last unit.
func (r *ProductRepository) DecrementStock(db *gorm.DB, id uint, qty int) error {
	res := db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// IncrementStock returns qty units to the shelf (order cancellation).
func (r *ProductRepository) IncrementStock(db *gorm.DB, id uint, qty int) error {
	return db.Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

// IncrementViews bumps the listing's view counter.
func (r *ProductRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

// RecalculateRating recomputes the denormalised rating from reviews.
func (r *ProductRepository) RecalculateRating(id uint) error {
	return r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Update("rating", gorm.Expr(
			"(SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE product_id = ?)", id,
		)).Error
}

// AddReview stores a review and refreshes the product rating.
func (r *ProductRepository) AddReview(review *models.Review) error {
	if err := r.db.Create(review).Error; err != nil {
		return err
	}
	return r.RecalculateRating(review.ProductID)
}

// Featured returns highly rated active listings, best first.
func (r *ProductRepository) Featured(limit int) ([]models.Product, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	var products []models.Product
	err := r.db.Where("status = ? AND rating >= ?", models.ProductActive, 4.0).
		Order("rating DESC, views DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// Categories returns the active catalogue grouped by category, largest first.
func (r *ProductRepository) Categories() ([]CategoryCount, error) {
	var out []CategoryCount
	err := r.db.Model(&models.Product{}).
		Select("category, COUNT(*) AS count").
		Where("status = ?", models.ProductActive).
		Group("category").
		Order("count DESC").
		Scan(&out).Error
	return out, err
}

// SellerStats aggregates a seller's catalogue and sales.
type SellerStats struct {
	TotalProducts  int64   `json:"total_products"`
	ActiveProducts int64   `json:"active_products"`
	SoldProducts   int64   `json:"sold_products"`
	UnitsSold      int64   `json:"units_sold"`
	Revenue        float64 `json:"revenue"`
}

// StatsBySeller reports the seller's catalogue size and lifetime sales.
// Revenue comes from order item snapshots so later price edits don't
// rewrite history.
func (r *ProductRepository) StatsBySeller(sellerID uint) (SellerStats, error) {
	var stats SellerStats
	err := r.db.Model(&models.Product{}).
		Select(
			"COUNT(*) AS total_products, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS active_products, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS sold_products",
			models.ProductActive, models.ProductSold,
		).
		Where("seller_id = ?", sellerID).
		Scan(&stats).Error
	if err != nil {
		return stats, err
	}

	err = r.db.Table("order_items").
		Select("COALESCE(SUM(quantity), 0) AS units_sold, COALESCE(SUM(price * quantity), 0) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.seller_id = ? AND orders.status <> ?", sellerID, models.OrderCancelled).
		Scan(&stats).Error
	return stats, err
}

// SellerOf returns the seller id owning product id, whatever its status.
func (r *ProductRepository) SellerOf(id uint) (uint, error) {
	var p models.Product
	err := r.db.Select("seller_id").
		Where("id = ?", id).
		First(&p).Error
	return p.SellerID, err
}
