// Package repositories is the data-access layer. Every repository holds an
// injected *gorm.DB handle; nothing in this package reaches for a global
// connection, so tests run each case against an isolated in-memory database.
package repositories

import "errors"

// Domain errors surfaced by the repositories. Controllers translate these
// into HTTP status codes; everything else is a 500.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrNoFields           = errors.New("no updatable fields provided")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrCannotCancel       = errors.New("order can no longer be cancelled")
	ErrEmptyOrder         = errors.New("order must contain at least one item")
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func paginate(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

func clampPage(page, limit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
