package repositories

import (
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository manages refresh-token sessions. Each user holds at most
// one row, keyed by the unique user_id index.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Upsert stores the user's refresh token, replacing any previous session in
// a single atomic statement. Two concurrent logins cannot race the unique
// index into an error: the later write wins.
func (r *SessionRepository) Upsert(userID uint, token string, expiresAt time.Time) error {
	session := models.Session{
		UserID:       userID,
		RefreshToken: token,
		ExpiresAt:    expiresAt,
		IsActive:     true,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"refresh_token", "expires_at", "is_active", "updated_at",
		}),
	}).Create(&session).Error
}

// FindActive returns the session holding token, provided it is still active
// and unexpired.
func (r *SessionRepository) FindActive(token string) (models.Session, error) {
	var session models.Session
	err := r.db.Where("refresh_token = ? AND is_active = ? AND expires_at > ?",
		token, true, time.Now()).First(&session).Error
	return session, err
}

// Revoke deactivates the session holding token. Revoking an unknown token
// is not an error: logout is idempotent.
func (r *SessionRepository) Revoke(token string) error {
	return r.db.Model(&models.Session{}).
		Where("refresh_token = ?", token).
		Update("is_active", false).Error
}

// RevokeAll deactivates every session belonging to userID.
func (r *SessionRepository) RevokeAll(userID uint) error {
	return r.db.Model(&models.Session{}).
		Where("user_id = ?", userID).
		Update("is_active", false).Error
}

// PurgeExpired deletes sessions whose expiry has passed. Run on a schedule.
func (r *SessionRepository) PurgeExpired() (int64, error) {
	res := r.db.Where("expires_at <= ?", time.Now()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
