package repositories

import (
	"fmt"

	"github.com/shashiranjanraj/bazaar/pkg/middleware"
)

// AuthAdapter bridges the repositories to the middleware gates. It loads
// active accounts for token validation and resolves resource ownership.
type AuthAdapter struct {
	users    *UserRepository
	products *ProductRepository
	orders   *OrderRepository
}

func NewAuthAdapter(users *UserRepository, products *ProductRepository, orders *OrderRepository) *AuthAdapter {
	return &AuthAdapter{users: users, products: products, orders: orders}
}

// ActiveUser implements middleware.UserSource.
func (a *AuthAdapter) ActiveUser(id uint) (middleware.AuthUser, error) {
	user, err := a.users.FindActiveByID(id)
	if err != nil {
		return middleware.AuthUser{}, err
	}
	return middleware.AuthUser{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	}, nil
}

// OwnerOf implements middleware.OwnerSource. Products are owned by their
// seller, orders by their buyer.
func (a *AuthAdapter) OwnerOf(resource string, id uint) (uint, error) {
	switch resource {
	case "product":
		return a.products.SellerOf(id)
	case "order":
		return a.orders.BuyerOf(id)
	default:
		return 0, fmt.Errorf("unknown ownership resource %q", resource)
	}
}
