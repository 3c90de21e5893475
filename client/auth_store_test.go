package client_test

import (
	"testing"
	"time"

	"github.com/shashiranjanraj/bazaar/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	app := client.NewApp(startServer(t), client.NewMemoryStorage())

	res := app.Auth.Register(client.RegisterInput{
		Name: "Pat", Email: "pat@example.com", Password: "password123",
	})
	require.True(t, res.Success, res.Error)

	state := app.Auth.State()
	assert.True(t, state.Authenticated)
	require.NotNil(t, state.User)
	assert.Equal(t, "pat@example.com", state.User.Email)
	assert.Equal(t, "user", state.User.Role)
	assert.NotEmpty(t, state.Tokens.AccessToken)
	assert.NotEmpty(t, state.Tokens.RefreshToken)

	res = app.Auth.Logout()
	require.True(t, res.Success)
	assert.False(t, app.Auth.State().Authenticated)

	res = app.Auth.Login("pat@example.com", "password123")
	require.True(t, res.Success, res.Error)
	assert.True(t, app.Auth.State().Authenticated)
}

func TestAuthLoginFailureIsAValue(t *testing.T) {
	app := client.NewApp(startServer(t), client.NewMemoryStorage())

	res := app.Auth.Login("ghost@example.com", "wrong")
	require.False(t, res.Success)
	assert.Equal(t, "Invalid email or password", res.Error)

	state := app.Auth.State()
	assert.False(t, state.Authenticated)
	assert.Equal(t, "Invalid email or password", state.Err)

	app.Auth.ClearError()
	assert.Empty(t, app.Auth.State().Err)
}

func TestAuthSessionSurvivesRestart(t *testing.T) {
	base := startServer(t)
	storage := client.NewMemoryStorage()

	first := client.NewApp(base, storage)
	res := first.Auth.Register(client.RegisterInput{
		Name: "Sam", Email: "sam@example.com", Password: "password123",
	})
	require.True(t, res.Success, res.Error)

	// A new App over the same storage rehydrates the session.
	second := client.NewApp(base, storage)
	state := second.Auth.State()
	require.True(t, state.Authenticated)
	assert.Equal(t, "sam@example.com", state.User.Email)

	// And the rehydrated tokens still work against the server.
	res = second.Auth.UpdateProfile(map[string]any{"name": "Sam Updated"})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Sam Updated", second.Auth.State().User.Name)
}

func TestAuthRefreshRotation(t *testing.T) {
	app := client.NewApp(startServer(t), client.NewMemoryStorage())

	res := app.Auth.Register(client.RegisterInput{
		Name: "Rot", Email: "rot@example.com", Password: "password123",
	})
	require.True(t, res.Success, res.Error)

	res = app.Auth.Refresh()
	require.True(t, res.Success, res.Error)
	assert.True(t, app.Auth.State().Authenticated)
	assert.NotEmpty(t, app.Auth.State().Tokens.RefreshToken)
}

func TestAuthRefreshWithDeadTokenClearsSession(t *testing.T) {
	storage := client.NewMemoryStorage()
	app := client.NewApp(startServer(t), storage)

	res := app.Auth.Register(client.RegisterInput{
		Name: "Dead", Email: "dead@example.com", Password: "password123",
	})
	require.True(t, res.Success, res.Error)

	// Password change revokes every session server-side and logs out
	// locally.
	res = app.Auth.ChangePassword("password123", "password456")
	require.True(t, res.Success, res.Error)
	assert.False(t, app.Auth.State().Authenticated)

	// Nothing to refresh once the session is gone.
	res = app.Auth.Refresh()
	require.False(t, res.Success)

	// The persisted blob is gone too.
	_, err := storage.Load("auth")
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestAuthRefreshRejectedByServer(t *testing.T) {
	base := startServer(t)
	storage := client.NewMemoryStorage()

	app := client.NewApp(base, storage)
	res := app.Auth.Register(client.RegisterInput{
		Name: "Two", Email: "two@example.com", Password: "password123",
	})
	require.True(t, res.Success, res.Error)

	// A second device logs in, replacing the single refresh session.
	// Token timestamps have second granularity; span a tick so the new
	// session's token differs from the first device's.
	time.Sleep(1100 * time.Millisecond)
	other := client.NewApp(base, client.NewMemoryStorage())
	res = other.Auth.Login("two@example.com", "password123")
	require.True(t, res.Success, res.Error)

	// The first device's refresh token is now dead; the store clears
	// its session instead of limping on.
	res = app.Auth.Refresh()
	require.False(t, res.Success)
	assert.False(t, app.Auth.State().Authenticated)
}
