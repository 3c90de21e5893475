package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*services.AuthService, *repositories.UserRepository, models.User) {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())
	db, err := database.OpenDSN("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Session{}))

	users := repositories.NewUserRepository(db)
	sessions := repositories.NewSessionRepository(db)
	svc := services.NewAuthService(sessions, users)

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{
		Name:     "Pat",
		Email:    "pat@example.com",
		Password: hash,
		Role:     models.RoleUser,
		IsActive: true,
	}
	require.NoError(t, users.Create(&user))

	return svc, users, user
}

func TestIssueProducesValidPair(t *testing.T) {
	svc, _, user := setup(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := auth.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)

	rc, err := auth.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, rc.UserID)
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, user := setup(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	// Tokens embed second-granularity timestamps; span a tick so the
	// rotated token differs from the original.
	time.Sleep(1100 * time.Millisecond)

	rotated, fresh, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, fresh.ID)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The original refresh token died with the rotation.
	_, _, err = svc.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, repositories.ErrInvalidToken)

	// The rotated token keeps working.
	_, _, err = svc.Refresh(rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _, user := setup(t)

	_, _, err := svc.Refresh("not-a-jwt")
	require.ErrorIs(t, err, repositories.ErrInvalidToken)

	// A well-formed token that was never persisted as a session fails too.
	orphan, err := auth.GenerateRefreshToken(user.ID, user.Email, user.Role)
	require.NoError(t, err)
	_, _, err = svc.Refresh(orphan)
	require.ErrorIs(t, err, repositories.ErrInvalidToken)
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	svc, users, user := setup(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)
	require.NoError(t, users.Deactivate(user.ID))

	_, _, err = svc.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, repositories.ErrInvalidToken)
}

func TestRevoke(t *testing.T) {
	svc, _, user := setup(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(pair.RefreshToken))

	_, _, err = svc.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, repositories.ErrInvalidToken)

	// Revoking again is a no-op.
	require.NoError(t, svc.Revoke(pair.RefreshToken))
}

func TestRevokeAll(t *testing.T) {
	svc, _, user := setup(t)

	pair, err := svc.Issue(user)
	require.NoError(t, err)
	require.NoError(t, svc.RevokeAll(user.ID))

	_, _, err = svc.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, repositories.ErrInvalidToken)
}
