package controllers_test

import (
	"net/http"
	"testing"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLoginFlow(t *testing.T) {
	a := newAPI(t)

	id, access, refresh := a.register(t, "pat@example.com", "user")
	assert.NotZero(t, id)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	// Access token works against an authenticated endpoint.
	code, body := a.do(t, http.MethodGet, "/api/users/profile", access, nil)
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "pat@example.com", user["email"])
	assert.Equal(t, models.RoleUser, user["role"])

	// The password hash never leaks through the JSON surface.
	_, leaked := user["password"]
	assert.False(t, leaked)

	code, body = a.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "pat@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["tokens"].(map[string]interface{})["access_token"])
}

func TestRegisterValidation(t *testing.T) {
	a := newAPI(t)

	code, body := a.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "x", "email": "not-an-email", "password": "short",
	})
	require.Equal(t, http.StatusBadRequest, code)
	fields := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	// Admin accounts cannot be self-registered.
	code, _ = a.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Eve", "email": "eve@example.com", "password": "password123", "role": "admin",
	})
	require.Equal(t, http.StatusBadRequest, code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a := newAPI(t)
	a.register(t, "taken@example.com", "user")

	code, body := a.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Again", "email": "taken@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Conflict", body["error"])
}

func TestLoginDoesNotLeakAccountExistence(t *testing.T) {
	a := newAPI(t)
	a.register(t, "real@example.com", "user")

	code, wrongPw := a.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "real@example.com", "password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, code)

	code, noAccount := a.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "ghost@example.com", "password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, code)

	// Identical body for wrong password and unknown email.
	assert.Equal(t, wrongPw["message"], noAccount["message"])
}

func TestRefreshAndLogout(t *testing.T) {
	a := newAPI(t)
	_, _, refresh := a.register(t, "rot@example.com", "user")

	code, body := a.do(t, http.MethodPost, "/api/users/refresh-token", "", map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, code)
	rotated := body["tokens"].(map[string]interface{})["refresh_token"].(string)

	code, _ = a.do(t, http.MethodPost, "/api/users/logout", "", map[string]string{
		"refresh_token": rotated,
	})
	require.Equal(t, http.StatusOK, code)

	// The revoked token no longer refreshes.
	code, _ = a.do(t, http.MethodPost, "/api/users/refresh-token", "", map[string]string{
		"refresh_token": rotated,
	})
	require.Equal(t, http.StatusUnauthorized, code)

	// Logout stays 200 even with garbage input.
	code, _ = a.do(t, http.MethodPost, "/api/users/logout", "", map[string]string{})
	require.Equal(t, http.StatusOK, code)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	a := newAPI(t)

	code, body := a.do(t, http.MethodPost, "/api/users/refresh-token", "", map[string]string{
		"refresh_token": "not-a-token",
	})
	require.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired refresh token", body["message"])
}

func TestUpdateProfile(t *testing.T) {
	a := newAPI(t)
	_, access, _ := a.register(t, "edit@example.com", "user")

	code, body := a.do(t, http.MethodPut, "/api/users/profile", access, map[string]string{
		"name": "Edited", "phone": "+1 555 0100",
	})
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Edited", user["name"])
	assert.Equal(t, "edit@example.com", user["email"])

	code, _ = a.do(t, http.MethodPut, "/api/users/profile", access, map[string]string{})
	require.Equal(t, http.StatusBadRequest, code)

	// Email and role are not part of the allow-list; sending them alone
	// counts as an empty update.
	code, _ = a.do(t, http.MethodPut, "/api/users/profile", access, map[string]string{
		"email": "new@example.com", "role": "admin",
	})
	require.Equal(t, http.StatusBadRequest, code)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	a := newAPI(t)
	_, access, refresh := a.register(t, "cp@example.com", "user")

	code, _ := a.do(t, http.MethodPut, "/api/users/change-password", access, map[string]string{
		"current_password": "wrong", "new_password": "password456",
	})
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(t, http.MethodPut, "/api/users/change-password", access, map[string]string{
		"current_password": "password123", "new_password": "password456",
	})
	require.Equal(t, http.StatusOK, code)

	// Every refresh session died with the old password.
	code, _ = a.do(t, http.MethodPost, "/api/users/refresh-token", "", map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "cp@example.com", "password": "password456",
	})
	require.Equal(t, http.StatusOK, code)
}

func TestDeactivateClosesTheDoor(t *testing.T) {
	a := newAPI(t)
	_, access, refresh := a.register(t, "bye@example.com", "user")

	code, _ := a.do(t, http.MethodDelete, "/api/users/deactivate", access, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "bye@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(t, http.MethodPost, "/api/users/refresh-token", "", map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusUnauthorized, code)

	// The stale access token stops working too: the gate reloads the
	// account on every request.
	code, _ = a.do(t, http.MethodGet, "/api/users/profile", access, nil)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminEndpointsAreGated(t *testing.T) {
	a := newAPI(t)
	buyerID, buyerAccess, _ := a.register(t, "mortal@example.com", "user")
	adminID, _, _ := a.register(t, "root@example.com", "user")
	adminToken := a.promote(t, adminID, "root@example.com")

	code, _ := a.do(t, http.MethodGet, "/api/users/admin/all", buyerAccess, nil)
	require.Equal(t, http.StatusForbidden, code)

	code, body := a.do(t, http.MethodGet, "/api/users/admin/all", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["users"].([]interface{}), 2)

	code, body = a.do(t, http.MethodGet, "/api/users/admin/1", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, buyerID, body["user"].(map[string]interface{})["id"].(float64))

	// No token at all.
	code, _ = a.do(t, http.MethodGet, "/api/users/admin/all", "", nil)
	require.Equal(t, http.StatusUnauthorized, code)
}
