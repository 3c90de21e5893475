package repositories

import (
	"errors"
	"strings"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"gorm.io/gorm"
)

// UserRepository handles database operations for accounts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// ProfileUpdate carries the only profile fields a user may change. A nil
// pointer means "leave unchanged".
type ProfileUpdate struct {
	Name      *string `json:"name" validate:"nullable,min=2,max=100"`
	Phone     *string `json:"phone" validate:"nullable,max=50"`
	AvatarURL *string `json:"avatar_url" validate:"nullable,url"`
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role   string
	Active *bool
	Search string
	Page   int
	Limit  int
}

// UserStats aggregates a user's marketplace activity.
type UserStats struct {
	ActiveProducts int64   `json:"active_products"`
	OrdersPlaced   int64   `json:"orders_placed"`
	TotalSpent     float64 `json:"total_spent"`
	ReviewsWritten int64   `json:"reviews_written"`
}

// Create inserts a new account. A duplicate email maps to ErrEmailTaken.
func (r *UserRepository) Create(user *models.User) error {
	err := r.db.Create(user).Error
	if err == nil {
		return nil
	}
	if isDuplicate(err) {
		return ErrEmailTaken
	}
	return err
}

// isDuplicate detects unique-constraint violations across drivers. GORM's
// TranslateError covers postgres/mysql; sqlite surfaces the raw message.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// FindByEmail looks up an active account by email.
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	err := r.db.Where("email = ? AND is_active = ?", email, true).First(&user).Error
	return user, err
}

// FindByID looks up an account by primary key, active or not.
func (r *UserRepository) FindByID(id uint) (models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	return user, err
}

// FindActiveByID looks up an active account by primary key.
func (r *UserRepository) FindActiveByID(id uint) (models.User, error) {
	var user models.User
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&user).Error
	return user, err
}

// UpdateProfile applies the allow-listed profile fields and returns the
// fresh row. Returns ErrNoFields when nothing was provided.
func (r *UserRepository) UpdateProfile(id uint, upd ProfileUpdate) (models.User, error) {
	fields := map[string]interface{}{}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Phone != nil {
		fields["phone"] = *upd.Phone
	}
	if upd.AvatarURL != nil {
		fields["avatar_url"] = *upd.AvatarURL
	}
	if len(fields) == 0 {
		return models.User{}, ErrNoFields
	}

	res := r.db.Model(&models.User{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(fields)
	if res.Error != nil {
		return models.User{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return r.FindByID(id)
}

// ChangePassword verifies the current password before storing the new hash.
func (r *UserRepository) ChangePassword(id uint, current, next string) error {
	user, err := r.FindActiveByID(id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, current) {
		return ErrWrongPassword
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("password", hash).Error
}

// Deactivate soft-disables the account. Data is retained; the account can
// no longer authenticate.
func (r *UserRepository) Deactivate(id uint) error {
	res := r.db.Model(&models.User{}).Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// VerifyEmail marks the account's email as verified.
func (r *UserRepository) VerifyEmail(id uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("email_verified", true).Error
}

// List returns a filtered page of accounts (admin listing).
func (r *UserRepository) List(f UserFilter) ([]models.User, Pagination, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit, 100)

	q := r.db.Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", needle, needle)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var users []models.User
	err := q.Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&users).Error
	return users, paginate(f.Page, f.Limit, total), err
}

// Stats aggregates the user's marketplace activity across products,
// orders, and reviews.
func (r *UserRepository) Stats(id uint) (UserStats, error) {
	var s UserStats

	if err := r.db.Model(&models.Product{}).
		Where("seller_id = ? AND status = ?", id, models.ProductActive).
		Count(&s.ActiveProducts).Error; err != nil {
		return s, err
	}

	if err := r.db.Model(&models.Order{}).
		Where("buyer_id = ?", id).
		Count(&s.OrdersPlaced).Error; err != nil {
		return s, err
	}

	row := r.db.Model(&models.Order{}).
		Where("buyer_id = ? AND status <> ?", id, models.OrderCancelled).
		Select("COALESCE(SUM(total_amount), 0)").Row()
	if err := row.Scan(&s.TotalSpent); err != nil {
		return s, err
	}

	err := r.db.Model(&models.Review{}).
		Where("user_id = ?", id).
		Count(&s.ReviewsWritten).Error
	return s, err
}
