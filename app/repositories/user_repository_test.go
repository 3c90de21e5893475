package repositories_test

import (
	"testing"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := testDB(t)
	users := repositories.NewUserRepository(db)

	seedUser(t, db, "dup@example.com", models.RoleUser)

	second := models.User{
		Name:     "Second",
		Email:    "dup@example.com",
		Password: "irrelevant",
		Role:     models.RoleUser,
		IsActive: true,
	}
	err := users.Create(&second)
	require.ErrorIs(t, err, repositories.ErrEmailTaken)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "dup@example.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUserPasswordHashRoundTrip(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "hash@example.com", models.RoleUser)

	assert.NotEqual(t, "password123", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "password123"))
	assert.False(t, auth.CheckPassword(user.Password, "password124"))
}

func TestUserUpdateProfileAllowList(t *testing.T) {
	db := testDB(t)
	users := repositories.NewUserRepository(db)
	user := seedUser(t, db, "profile@example.com", models.RoleSeller)

	name := "New Name"
	phone := "+1 555 0100"
	updated, err := users.UpdateProfile(user.ID, repositories.ProfileUpdate{
		Name:  &name,
		Phone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "+1 555 0100", updated.Phone)

	// Untouched fields survive the partial update.
	assert.Equal(t, user.Email, updated.Email)
	assert.Equal(t, user.Role, updated.Role)
	assert.Equal(t, user.Password, updated.Password)
	assert.True(t, updated.IsActive)
}

func TestUserUpdateProfileNoFields(t *testing.T) {
	db := testDB(t)
	users := repositories.NewUserRepository(db)
	user := seedUser(t, db, "empty@example.com", models.RoleUser)

	_, err := users.UpdateProfile(user.ID, repositories.ProfileUpdate{})
	require.ErrorIs(t, err, repositories.ErrNoFields)
}

func TestUserChangePassword(t *testing.T) {
	db := testDB(t)
	users := repositories.NewUserRepository(db)
	user := seedUser(t, db, "pw@example.com", models.RoleUser)

	err := users.ChangePassword(user.ID, "wrong-password", "next-password")
	require.ErrorIs(t, err, repositories.ErrWrongPassword)

	require.NoError(t, users.ChangePassword(user.ID, "password123", "next-password"))

	fresh, err := users.FindByID(user.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(fresh.Password, "next-password"))
	assert.False(t, auth.CheckPassword(fresh.Password, "password123"))
}

func TestUserDeactivate(t *testing.T) {
	db := testDB(t)
	users := repositories.NewUserRepository(db)
	user := seedUser(t, db, "gone@example.com", models.RoleUser)

	require.NoError(t, users.Deactivate(user.ID))

	// Row is retained but no longer authenticates or resolves as active.
	_, err := users.FindActiveByID(user.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = users.FindByEmail("gone@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	kept, err := users.FindByID(user.ID)
	require.NoError(t, err)
	assert.False(t, kept.IsActive)

	// Deactivating twice reports not found, not success.
	require.ErrorIs(t, users.Deactivate(user.ID), gorm.ErrRecordNotFound)
}

func TestUserList(t *testing.T) {
	db := testDB(t)
	users := repositories.NewUserRepository(db)

	seedUser(t, db, "alice@example.com", models.RoleSeller)
	bob := seedUser(t, db, "bob@example.com", models.RoleUser)
	require.NoError(t, users.Deactivate(bob.ID))

	sellers, page, err := users.List(repositories.UserFilter{Role: models.RoleSeller})
	require.NoError(t, err)
	require.Len(t, sellers, 1)
	assert.Equal(t, "alice@example.com", sellers[0].Email)
	assert.EqualValues(t, 1, page.Total)

	active := true
	got, _, err := users.List(repositories.UserFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice@example.com", got[0].Email)

	found, _, err := users.List(repositories.UserFilter{Search: "BOB"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bob@example.com", found[0].Email)
}

func TestUserStats(t *testing.T) {
	db := testDB(t)
	users := repositories.NewUserRepository(db)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	p := seedProduct(t, db, seller.ID, "Widget", 10.00, 100)

	_, err := orders.Create(buyer.ID, []repositories.OrderLine{{ProductID: p.ID, Quantity: 2}},
		testAddress(), nil, "")
	require.NoError(t, err)

	stats, err := users.Stats(buyer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.OrdersPlaced)
	assert.InDelta(t, 20.00, stats.TotalSpent, 0.001)
	assert.EqualValues(t, 0, stats.ActiveProducts)

	stats, err = users.Stats(seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.ActiveProducts)
}
