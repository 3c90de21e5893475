package repositories_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testDB opens an isolated in-memory sqlite database named after the test,
// with the full schema migrated.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := database.OpenDSN("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user := models.User{
		Name:     strings.Split(email, "@")[0],
		Email:    email,
		Password: hash,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, repositories.NewUserRepository(db).Create(&user))
	return user
}

func testAddress() models.Address {
	return models.Address{
		FullName:   "Pat Buyer",
		Line1:      "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

func seedProduct(t *testing.T, db *gorm.DB, sellerID uint, title string, price float64, stock int) models.Product {
	t.Helper()

	p := models.Product{
		SellerID: sellerID,
		Title:    title,
		Price:    price,
		Stock:    stock,
		Category: "electronics",
		Status:   models.ProductActive,
	}
	require.NoError(t, repositories.NewProductRepository(db).Create(&p))
	return p
}
