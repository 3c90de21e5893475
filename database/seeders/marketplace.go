package seeders

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
)

func init() {
	Register("users", SeedUsers)
	Register("products", SeedProducts)
}

// SeedUsers creates one account per role for local development. Skips
// silently when the admin account already exists.
func SeedUsers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", "admin@bazaar.test").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("password123")
	if err != nil {
		return err
	}

	users := []models.User{
		{Name: "Admin", Email: "admin@bazaar.test", Password: hash, Role: models.RoleAdmin, IsActive: true, EmailVerified: true},
		{Name: "Sam Seller", Email: "seller@bazaar.test", Password: hash, Role: models.RoleSeller, IsActive: true, EmailVerified: true},
		{Name: "Bea Buyer", Email: "buyer@bazaar.test", Password: hash, Role: models.RoleUser, IsActive: true, EmailVerified: true},
	}
	return db.Create(&users).Error
}

// SeedProducts stocks the seller account with a starter catalogue.
func SeedProducts(db *gorm.DB) error {
	var seller models.User
	if err := db.Where("email = ?", "seller@bazaar.test").First(&seller).Error; err != nil {
		return fmt.Errorf("seed users first: %w", err)
	}

	var count int64
	if err := db.Model(&models.Product{}).Where("seller_id = ?", seller.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []models.Product{
		{SellerID: seller.ID, Title: "Walnut Desk Organizer", Price: 39.99, Stock: 25, Category: "home", Tags: models.StringList{"wood", "office"}, Status: models.ProductActive, Rating: 4.6},
		{SellerID: seller.ID, Title: "Ceramic Pour-Over Set", Price: 54.00, Stock: 12, Category: "kitchen", Tags: models.StringList{"coffee", "ceramic"}, Status: models.ProductActive, Rating: 4.8},
		{SellerID: seller.ID, Title: "Linen Throw Blanket", Price: 89.50, Stock: 8, Category: "home", Tags: models.StringList{"linen", "cozy"}, Status: models.ProductActive, Rating: 4.2},
		{SellerID: seller.ID, Title: "Brass Bookends (Pair)", Price: 120.00, Stock: 3, Category: "home", Tags: models.StringList{"brass"}, Status: models.ProductActive},
		{SellerID: seller.ID, Title: "Prototype Lamp", Price: 200.00, Stock: 0, Category: "lighting", Status: models.ProductInactive},
	}
	return db.Create(&products).Error
}
