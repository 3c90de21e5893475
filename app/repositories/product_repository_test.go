package repositories_test

import (
	"testing"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProductSearchFilters(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)

	cheap := models.Product{
		SellerID: seller.ID, Title: "Budget Mouse", Description: "wired optical mouse",
		Price: 9.99, Stock: 5, Category: "electronics",
		Tags: models.StringList{"mouse", "wired"}, Status: models.ProductActive,
	}
	fancy := models.Product{
		SellerID: seller.ID, Title: "Gaming Mouse", Description: "wireless rgb",
		Price: 79.99, Stock: 5, Category: "electronics",
		Tags: models.StringList{"mouse", "wireless"}, Status: models.ProductActive,
	}
	book := models.Product{
		SellerID: seller.ID, Title: "Go in Practice", Description: "programming book",
		Price: 35.00, Stock: 5, Category: "books", Status: models.ProductActive,
	}
	hidden := models.Product{
		SellerID: seller.ID, Title: "Hidden Mouse", Price: 5.00, Stock: 0,
		Category: "electronics", Status: models.ProductInactive,
	}
	for _, p := range []*models.Product{&cheap, &fancy, &book, &hidden} {
		require.NoError(t, products.Create(p))
	}

	// Inactive listings never surface in search.
	all, page, err := products.Search(repositories.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.EqualValues(t, 3, page.Total)

	byCategory, _, err := products.Search(repositories.ProductFilter{Category: "books"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Go in Practice", byCategory[0].Title)

	// Case-insensitive text match over title and description.
	byText, _, err := products.Search(repositories.ProductFilter{Search: "MOUSE"})
	require.NoError(t, err)
	assert.Len(t, byText, 2)

	byPrice, _, err := products.Search(repositories.ProductFilter{MinPrice: 10, MaxPrice: 50})
	require.NoError(t, err)
	require.Len(t, byPrice, 1)
	assert.Equal(t, "Go in Practice", byPrice[0].Title)

	byTag, _, err := products.Search(repositories.ProductFilter{Tags: []string{"wireless"}})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Gaming Mouse", byTag[0].Title)

	sorted, _, err := products.Search(repositories.ProductFilter{SortBy: "price", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	assert.Equal(t, "Budget Mouse", sorted[0].Title)
	assert.Equal(t, "Gaming Mouse", sorted[2].Title)

	// Unknown sort column falls back instead of erroring.
	_, _, err = products.Search(repositories.ProductFilter{SortBy: "password"})
	require.NoError(t, err)
}

func TestProductUpdateAllowList(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	p := seedProduct(t, db, seller.ID, "Desk", 120.00, 3)

	price := 99.00
	stock := 8
	updated, err := products.Update(p.ID, repositories.ProductUpdate{
		Price: &price,
		Stock: &stock,
	})
	require.NoError(t, err)
	assert.InDelta(t, 99.00, updated.Price, 0.001)
	assert.Equal(t, 8, updated.Stock)
	assert.Equal(t, "Desk", updated.Title)
	assert.Equal(t, seller.ID, updated.SellerID)

	_, err = products.Update(p.ID, repositories.ProductUpdate{})
	require.ErrorIs(t, err, repositories.ErrNoFields)

	_, err = products.Update(9999, repositories.ProductUpdate{Price: &price})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductSoftDelete(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	p := seedProduct(t, db, seller.ID, "Chair", 45.00, 2)

	require.NoError(t, products.SoftDelete(p.ID))

	// The row survives as inactive: gone from search, still fetchable by
	// id, and the seller can relist it later.
	found, _, err := products.Search(repositories.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, found)

	fresh, err := products.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductInactive, fresh.Status)

	active := models.ProductActive
	_, err = products.Update(p.ID, repositories.ProductUpdate{Status: &active})
	require.NoError(t, err)
	found, _, err = products.Search(repositories.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestProductSoldStatus(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	p := seedProduct(t, db, seller.ID, "One-off Print", 120.00, 1)

	sold := models.ProductSold
	updated, err := products.Update(p.ID, repositories.ProductUpdate{Status: &sold})
	require.NoError(t, err)
	assert.Equal(t, models.ProductSold, updated.Status)

	// Sold listings leave the catalogue entirely but still count in the
	// seller's stats.
	_, err = products.FindByID(p.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	mine, _, err := products.BySeller(seller.ID, models.ProductSold, 1, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	stats, err := products.StatsBySeller(seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.Equal(t, int64(0), stats.ActiveProducts)
	assert.Equal(t, int64(1), stats.SoldProducts)
}

func TestProductStockFloor(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	p := seedProduct(t, db, seller.ID, "Limited", 10.00, 2)

	require.NoError(t, products.DecrementStock(db, p.ID, 2))

	// Stock never goes below zero: the conditional update matches no row.
	err := products.DecrementStock(db, p.ID, 1)
	require.ErrorIs(t, err, repositories.ErrInsufficientStock)

	fresh, err := products.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Stock)

	require.NoError(t, products.IncrementStock(db, p.ID, 5))
	fresh, err = products.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.Stock)
}

func TestProductRatingRecalculation(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	p := seedProduct(t, db, seller.ID, "Speaker", 60.00, 10)

	require.NoError(t, products.AddReview(&models.Review{
		ProductID: p.ID, UserID: buyer.ID, Rating: 5, Comment: "great",
	}))
	require.NoError(t, products.AddReview(&models.Review{
		ProductID: p.ID, UserID: buyer.ID, Rating: 2,
	}))

	fresh, err := products.FindByID(p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, fresh.Rating, 0.001)
}

func TestProductFeatured(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)

	for _, row := range []struct {
		title  string
		rating float64
		status string
	}{
		{"Top Rated", 4.8, models.ProductActive},
		{"Good Enough", 4.0, models.ProductActive},
		{"Mediocre", 3.9, models.ProductActive},
		{"Hidden Gem", 5.0, models.ProductInactive},
	} {
		p := models.Product{
			SellerID: seller.ID, Title: row.title, Price: 10, Stock: 1,
			Category: "misc", Rating: row.rating, Status: row.status,
		}
		require.NoError(t, products.Create(&p))
	}

	featured, err := products.Featured(10)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, "Top Rated", featured[0].Title)
	assert.Equal(t, "Good Enough", featured[1].Title)

	one, err := products.Featured(1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "Top Rated", one[0].Title)
}

func TestProductCategories(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)

	for _, cat := range []string{"books", "books", "electronics"} {
		p := models.Product{
			SellerID: seller.ID, Title: "Item", Price: 10, Stock: 1,
			Category: cat, Status: models.ProductActive,
		}
		require.NoError(t, products.Create(&p))
	}
	inactive := models.Product{
		SellerID: seller.ID, Title: "Item", Price: 10, Stock: 1,
		Category: "books", Status: models.ProductInactive,
	}
	require.NoError(t, products.Create(&inactive))

	cats, err := products.Categories()
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "books", cats[0].Category)
	assert.EqualValues(t, 2, cats[0].Count)
	assert.Equal(t, "electronics", cats[1].Category)
}

func TestProductDetailAndViews(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	p := seedProduct(t, db, seller.ID, "Tablet", 300.00, 4)

	require.NoError(t, products.IncrementViews(p.ID))
	require.NoError(t, products.IncrementViews(p.ID))

	detail, err := products.FindDetail(p.ID)
	require.NoError(t, err)
	assert.Equal(t, seller.Name, detail.SellerName)
	assert.Equal(t, 2, detail.Views)
}

func TestProductSellerStats(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	p := seedProduct(t, db, seller.ID, "Charger", 20.00, 50)
	retired := seedProduct(t, db, seller.ID, "Retired", 5.00, 1)
	require.NoError(t, products.SoftDelete(retired.ID))

	_, err := orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: p.ID, Quantity: 3}},
		testAddress(), nil, "")
	require.NoError(t, err)
	dead, err := orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: p.ID, Quantity: 2}},
		testAddress(), nil, "")
	require.NoError(t, err)
	_, err = orders.Cancel(dead.ID, buyer.ID)
	require.NoError(t, err)

	stats, err := products.StatsBySeller(seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.ActiveProducts)
	// Cancelled orders do not count toward units sold or revenue.
	assert.EqualValues(t, 3, stats.UnitsSold)
	assert.InDelta(t, 60.00, stats.Revenue, 0.001)
}
