package controllers

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/collection"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
)

// Catalogue cache keys. Mutations drop both so readers never see stale
// featured or category lists for long.
const (
	cacheKeyFeatured   = "products:featured"
	cacheKeyCategories = "products:categories"
	catalogueCacheTTL  = 5 * time.Minute
	featuredMax        = 50
)

// ProductController serves the public catalogue and seller listing
// management.
type ProductController struct {
	products *repositories.ProductRepository
}

func NewProductController(products *repositories.ProductRepository) *ProductController {
	return &ProductController{products: products}
}

// ProductInput is the seller's create payload.
type ProductInput struct {
	Title       string            `json:"title" validate:"required,min=2,max=255"`
	Description string            `json:"description"`
	Price       float64           `json:"price" validate:"required,gt=0"`
	Stock       int               `json:"stock" validate:"gte=0"`
	Category    string            `json:"category" validate:"required,min=2,max=100"`
	Images      models.StringList `json:"images"`
	Tags        models.StringList `json:"tags"`
}

func dropCatalogueCache() {
	if err := cache.Del(cacheKeyFeatured, cacheKeyCategories); err != nil {
		logger.Warn("catalogue cache invalidation failed", "error", err)
	}
}

// List is the public catalogue search.
func (p *ProductController) List(c *ctx.Context) {
	filter := repositories.ProductFilter{
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		MinPrice:  c.QueryFloat("min_price", 0),
		MaxPrice:  c.QueryFloat("max_price", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 20),
	}
	if tags := c.Query("tags"); tags != "" {
		filter.Tags = collection.Unique(collection.Filter(
			collection.Map(strings.Split(tags, ","), strings.TrimSpace),
			func(t string) bool { return t != "" },
		))
	}

	products, page, err := p.products.Search(filter)
	if err != nil {
		logger.WithCtx(c.Context()).Error("product search failed", "error", err)
		c.Internal()
		return
	}
	c.Success(map[string]any{"products": products, "pagination": page})
}

// Show returns one listing with its seller's name and bumps the view
// counter. The bump is best effort.
func (p *ProductController) Show(c *ctx.Context) {
	id, err := c.ParamUint("id")
	if err != nil {
		c.BadRequest("Invalid product id")
		return
	}

	detail, err := p.products.FindDetail(id)
	if err != nil {
		c.NotFound("Product not found")
		return
	}

	if err := p.products.IncrementViews(id); err != nil {
		logger.Warn("view counter bump failed", "error", err, "product_id", id)
	}
	c.Success(map[string]any{"product": detail})
}

// Featured returns the highly rated storefront picks. The cache holds the
// full list under one key so every limit shares the same entry and a
// single Del invalidates it; the requested cap is applied per request.
func (p *ProductController) Featured(c *ctx.Context) {
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > featuredMax {
		limit = 10
	}
	products, err := cache.Remember(cacheKeyFeatured, catalogueCacheTTL, func() ([]models.Product, error) {
		return p.products.Featured(featuredMax)
	})
	if err != nil {
		logger.WithCtx(c.Context()).Error("featured lookup failed", "error", err)
		c.Internal()
		return
	}
	c.Success(map[string]any{"products": collection.Take(products, limit)})
}

// Categories returns the category breakdown of the active catalogue,
// served from cache.
func (p *ProductController) Categories(c *ctx.Context) {
	categories, err := cache.Remember(cacheKeyCategories, catalogueCacheTTL, func() ([]repositories.CategoryCount, error) {
		return p.products.Categories()
	})
	if err != nil {
		logger.WithCtx(c.Context()).Error("category breakdown failed", "error", err)
		c.Internal()
		return
	}
	c.Success(map[string]any{"categories": categories})
}

// Create publishes a new listing for the authenticated seller.
func (p *ProductController) Create(c *ctx.Context) {
	var input ProductInput
	if !c.BindJSON(&input) {
		return
	}

	product := models.Product{
		SellerID:    middleware.UserIDFromCtx(c.Context()),
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    input.Category,
		Images:      input.Images,
		Tags:        input.Tags,
		Status:      models.ProductActive,
	}
	if err := p.products.Create(&product); err != nil {
		logger.WithCtx(c.Context()).Error("product create failed", "error", err)
		c.Internal()
		return
	}

	dropCatalogueCache()
	c.Created(map[string]any{"product": product})
}

// Update patches a listing. Ownership is enforced by middleware before
// this runs.
func (p *ProductController) Update(c *ctx.Context) {
	id, err := c.ParamUint("id")
	if err != nil {
		c.BadRequest("Invalid product id")
		return
	}

	var input repositories.ProductUpdate
	if !c.BindJSON(&input) {
		return
	}

	product, err := p.products.Update(id, input)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNoFields):
			c.BadRequest("No fields to update")
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.NotFound("Product not found")
		default:
			logger.WithCtx(c.Context()).Error("product update failed", "error", err, "product_id", id)
			c.Internal()
		}
		return
	}

	dropCatalogueCache()
	c.Success(map[string]any{"product": product})
}

// Delete removes a listing from the catalogue. The row survives so order
// item snapshots keep resolving.
func (p *ProductController) Delete(c *ctx.Context) {
	id, err := c.ParamUint("id")
	if err != nil {
		c.BadRequest("Invalid product id")
		return
	}

	if err := p.products.SoftDelete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.NotFound("Product not found")
			return
		}
		logger.WithCtx(c.Context()).Error("product delete failed", "error", err, "product_id", id)
		c.Internal()
		return
	}

	dropCatalogueCache()
	c.Success(map[string]string{"message": "Product deleted"})
}

// MyListings returns the authenticated seller's own products, any status.
func (p *ProductController) MyListings(c *ctx.Context) {
	products, page, err := p.products.BySeller(
		middleware.UserIDFromCtx(c.Context()),
		c.Query("status"),
		c.QueryInt("page", 1),
		c.QueryInt("limit", 20),
	)
	if err != nil {
		logger.WithCtx(c.Context()).Error("seller listings failed", "error", err)
		c.Internal()
		return
	}
	c.Success(map[string]any{"products": products, "pagination": page})
}

// SellerStats reports the authenticated seller's catalogue and sales
// summary.
func (p *ProductController) SellerStats(c *ctx.Context) {
	stats, err := p.products.StatsBySeller(middleware.UserIDFromCtx(c.Context()))
	if err != nil {
		logger.WithCtx(c.Context()).Error("seller stats failed", "error", err)
		c.Internal()
		return
	}
	c.Success(map[string]any{"stats": stats})
}
