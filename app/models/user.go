package models

import "time"

// User roles.
const (
	RoleUser   = "user"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User is a marketplace account. Password holds the bcrypt hash and is
// never serialised.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Email         string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password      string    `gorm:"size:255;not null" json:"-"`
	Role          string    `gorm:"size:20;not null;default:user;index" json:"role"`
	Phone         string    `gorm:"size:50" json:"phone,omitempty"`
	AvatarURL     string    `gorm:"size:512" json:"avatar_url,omitempty"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Session is the single refresh-token session per user. The unique index on
// UserID makes the login upsert atomic: a second login replaces the row
// instead of racing an insert against it.
type Session struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	RefreshToken string    `gorm:"size:512;not null;index" json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
