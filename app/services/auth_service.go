package services

import (
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
)

// AuthService issues and rotates token pairs. Exactly one refresh session
// exists per user; issuing a new pair replaces the previous session row.
type AuthService struct {
	sessions *repositories.SessionRepository
	users    *repositories.UserRepository
}

func NewAuthService(sessions *repositories.SessionRepository, users *repositories.UserRepository) *AuthService {
	return &AuthService{sessions: sessions, users: users}
}

// TokenPair is what login, register and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Issue mints a fresh access/refresh pair for the user and persists the
// refresh token as the user's single active session.
func (s *AuthService) Issue(user models.User) (TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return TokenPair{}, err
	}

	expires := time.Now().Add(config.JWTRefreshExpire())
	if err := s.sessions.Upsert(user.ID, refresh, expires); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh validates the presented refresh token against both its signature
// and the stored session, then rotates the pair. The old refresh token is
// dead after this returns.
func (s *AuthService) Refresh(token string) (TokenPair, models.User, error) {
	claims, err := auth.ValidateRefreshToken(token)
	if err != nil {
		return TokenPair{}, models.User{}, repositories.ErrInvalidToken
	}

	session, err := s.sessions.FindActive(token)
	if err != nil || session.UserID != claims.UserID {
		return TokenPair{}, models.User{}, repositories.ErrInvalidToken
	}

	user, err := s.users.FindActiveByID(claims.UserID)
	if err != nil {
		return TokenPair{}, models.User{}, repositories.ErrInvalidToken
	}

	pair, err := s.Issue(user)
	return pair, user, err
}

// Revoke kills the session holding this refresh token. Unknown tokens are
// a no-op so logout is idempotent.
func (s *AuthService) Revoke(token string) error {
	return s.sessions.Revoke(token)
}

// RevokeAll kills every session the user holds (password change,
// deactivation).
func (s *AuthService) RevokeAll(userID uint) error {
	return s.sessions.RevokeAll(userID)
}
