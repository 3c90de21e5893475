package controllers

import (
	"errors"

	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
)

// UserController serves account registration, authentication and profile
// management.
type UserController struct {
	users *repositories.UserRepository
	auth  *services.AuthService
}

func NewUserController(users *repositories.UserRepository, auth *services.AuthService) *UserController {
	return &UserController{users: users, auth: auth}
}

// RegisterInput is the signup payload. Admin accounts cannot be
// self-registered.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"nullable,in=user,seller"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// Register creates an account and signs the caller straight in.
func (u *UserController) Register(c *ctx.Context) {
	var input RegisterInput
	if !c.BindJSON(&input) {
		return
	}
	if input.Role == "" {
		input.Role = models.RoleUser
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		logger.Error("password hash failed", "error", err)
		c.Internal()
		return
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hash,
		Role:     input.Role,
		IsActive: true,
	}
	if err := u.users.Create(&user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			c.Conflict("Email already registered")
			return
		}
		logger.WithCtx(c.Context()).Error("user create failed", "error", err)
		c.Internal()
		return
	}

	tokens, err := u.auth.Issue(user)
	if err != nil {
		logger.WithCtx(c.Context()).Error("token issue failed", "error", err, "user_id", user.ID)
		c.Internal()
		return
	}

	if err := queue.Dispatch(&jobs.WelcomeEmail{UserID: user.ID}); err != nil {
		logger.Warn("welcome email dispatch failed", "error", err, "user_id", user.ID)
	}
	event.FireAsync("user.registered", user.ID)

	c.Created(map[string]any{"user": user, "tokens": tokens})
}

// Login verifies credentials and issues a token pair. Wrong email and wrong
// password produce the same message so the endpoint leaks nothing about
// which accounts exist.
func (u *UserController) Login(c *ctx.Context) {
	var input loginInput
	if !c.BindJSON(&input) {
		return
	}

	user, err := u.users.FindByEmail(input.Email)
	if err != nil || !auth.CheckPassword(user.Password, input.Password) {
		c.Unauthorized("Invalid email or password")
		return
	}
	if !user.IsActive {
		c.Forbidden("Account is deactivated")
		return
	}

	tokens, err := u.auth.Issue(user)
	if err != nil {
		logger.WithCtx(c.Context()).Error("token issue failed", "error", err, "user_id", user.ID)
		c.Internal()
		return
	}

	c.Success(map[string]any{"user": user, "tokens": tokens})
}

// Refresh rotates the token pair bound to the presented refresh token.
func (u *UserController) Refresh(c *ctx.Context) {
	var input refreshInput
	if !c.BindJSON(&input) {
		return
	}

	tokens, user, err := u.auth.Refresh(input.RefreshToken)
	if err != nil {
		c.Unauthorized("Invalid or expired refresh token")
		return
	}

	c.Success(map[string]any{"user": user, "tokens": tokens})
}

// Logout revokes the presented refresh token. Already-revoked and unknown
// tokens still get a 200, so clients can always clear local state.
func (u *UserController) Logout(c *ctx.Context) {
	var input refreshInput
	if errs, err := c.ShouldBindJSON(&input); err != nil || len(errs) > 0 {
		c.Success(map[string]string{"message": "Logged out"})
		return
	}

	if err := u.auth.Revoke(input.RefreshToken); err != nil {
		logger.WithCtx(c.Context()).Error("session revoke failed", "error", err)
	}
	c.Success(map[string]string{"message": "Logged out"})
}

// LogoutAll revokes every session the caller holds, on any device.
func (u *UserController) LogoutAll(c *ctx.Context) {
	userID := middleware.UserIDFromCtx(c.Context())
	if err := u.auth.RevokeAll(userID); err != nil {
		logger.WithCtx(c.Context()).Error("session revoke failed", "error", err, "user_id", userID)
		c.Internal()
		return
	}
	c.Success(map[string]string{"message": "Logged out everywhere"})
}

// Profile returns the authenticated user's account.
func (u *UserController) Profile(c *ctx.Context) {
	user, err := u.users.FindByID(middleware.UserIDFromCtx(c.Context()))
	if err != nil {
		c.NotFound("User not found")
		return
	}
	c.Success(map[string]any{"user": user})
}

// UpdateProfile patches the caller's editable profile fields.
func (u *UserController) UpdateProfile(c *ctx.Context) {
	var input repositories.ProfileUpdate
	if !c.BindJSON(&input) {
		return
	}

	user, err := u.users.UpdateProfile(middleware.UserIDFromCtx(c.Context()), input)
	if err != nil {
		if errors.Is(err, repositories.ErrNoFields) {
			c.BadRequest("No fields to update")
			return
		}
		logger.WithCtx(c.Context()).Error("profile update failed", "error", err)
		c.Internal()
		return
	}
	c.Success(map[string]any{"user": user})
}

// ChangePassword swaps the caller's password and kills every session, so
// stolen refresh tokens die with the old password.
func (u *UserController) ChangePassword(c *ctx.Context) {
	var input changePasswordInput
	if !c.BindJSON(&input) {
		return
	}

	userID := middleware.UserIDFromCtx(c.Context())
	if err := u.users.ChangePassword(userID, input.CurrentPassword, input.NewPassword); err != nil {
		if errors.Is(err, repositories.ErrWrongPassword) {
			c.Unauthorized("Current password is incorrect")
			return
		}
		logger.WithCtx(c.Context()).Error("password change failed", "error", err)
		c.Internal()
		return
	}
	if err := u.auth.RevokeAll(userID); err != nil {
		logger.WithCtx(c.Context()).Error("session revoke failed", "error", err, "user_id", userID)
	}
	c.Success(map[string]string{"message": "Password changed, please log in again"})
}

// Deactivate soft-disables the account and revokes its sessions.
func (u *UserController) Deactivate(c *ctx.Context) {
	userID := middleware.UserIDFromCtx(c.Context())
	if err := u.users.Deactivate(userID); err != nil {
		logger.WithCtx(c.Context()).Error("deactivate failed", "error", err, "user_id", userID)
		c.Internal()
		return
	}
	if err := u.auth.RevokeAll(userID); err != nil {
		logger.WithCtx(c.Context()).Error("session revoke failed", "error", err, "user_id", userID)
	}
	c.Success(map[string]string{"message": "Account deactivated"})
}

// VerifyEmail marks the caller's email as verified.
func (u *UserController) VerifyEmail(c *ctx.Context) {
	if err := u.users.VerifyEmail(middleware.UserIDFromCtx(c.Context())); err != nil {
		c.Internal()
		return
	}
	c.Success(map[string]string{"message": "Email verified"})
}

// Stats returns the caller's marketplace activity summary.
func (u *UserController) Stats(c *ctx.Context) {
	stats, err := u.users.Stats(middleware.UserIDFromCtx(c.Context()))
	if err != nil {
		logger.WithCtx(c.Context()).Error("user stats failed", "error", err)
		c.Internal()
		return
	}
	c.Success(map[string]any{"stats": stats})
}

// Show is the admin view of a single account.
func (u *UserController) Show(c *ctx.Context) {
	id, err := c.ParamUint("id")
	if err != nil {
		c.BadRequest("Invalid user id")
		return
	}

	user, err := u.users.FindByID(id)
	if err != nil {
		c.NotFound("User not found")
		return
	}
	c.Success(map[string]any{"user": user})
}

// List is the admin user index with role/active/search filters.
func (u *UserController) List(c *ctx.Context) {
	filter := repositories.UserFilter{
		Role:   c.Query("role"),
		Search: c.Query("search"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 20),
	}
	if v := c.Query("active"); v != "" {
		active := v == "true" || v == "1"
		filter.Active = &active
	}

	users, page, err := u.users.List(filter)
	if err != nil {
		logger.WithCtx(c.Context()).Error("user list failed", "error", err)
		c.Internal()
		return
	}
	c.Success(map[string]any{"users": users, "pagination": page})
}
