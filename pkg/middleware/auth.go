package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

// AuthUser is the authenticated account attached to the request context.
type AuthUser struct {
	ID            uint
	Email         string
	Name          string
	Role          string
	EmailVerified bool
}

// UserSource loads the active account backing a validated token. Any error
// is treated as "account gone or deactivated" and fails the gate.
type UserSource interface {
	ActiveUser(id uint) (AuthUser, error)
}

// OwnerSource resolves the owning user id of a resource instance, e.g.
// OwnerOf("product", 42) → seller id. Implemented by the repository layer.
type OwnerSource interface {
	OwnerOf(resource string, id uint) (uint, error)
}

type userCtxKey struct{}

// UserFromCtx returns the AuthUser stashed by Authenticate or OptionalAuth.
func UserFromCtx(ctx context.Context) (AuthUser, bool) {
	u, ok := ctx.Value(userCtxKey{}).(AuthUser)
	return u, ok
}

// UserIDFromCtx returns the authenticated user id, or 0 when anonymous.
func UserIDFromCtx(ctx context.Context) uint {
	u, _ := UserFromCtx(ctx)
	return u.ID
}

// RoleFromCtx returns the authenticated user's role, or "" when anonymous.
func RoleFromCtx(ctx context.Context) string {
	u, _ := UserFromCtx(ctx)
	return u.Role
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// Authenticate validates the bearer access token and confirms the account
// still exists and is active. The loaded AuthUser is stored in the request
// context for handlers and later gates.
func Authenticate(users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Unauthorized(w, "Access token required")
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			user, err := users.ActiveUser(claims.UserID)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present but never
// rejects the request. Used on endpoints that personalise for logged-in
// callers and degrade for anonymous ones.
func OptionalAuth(users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if user, err := users.ActiveUser(claims.UserID); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authorize allows only the listed roles through. Must run after Authenticate.
func Authorize(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w, "Access token required")
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireVerifiedEmail blocks accounts that have not verified their email.
// Must run after Authenticate.
func RequireVerifiedEmail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromCtx(r.Context())
		if !ok {
			response.Unauthorized(w, "Access token required")
			return
		}
		if !user.EmailVerified {
			response.Forbidden(w, "Email verification required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// VerifyOwnership lets a request through only when the authenticated user
// owns the resource addressed by the URL parameter, or is an admin.
// resource names a lookup understood by the OwnerSource ("product", "order").
func VerifyOwnership(resource, param string, owners OwnerSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w, "Access token required")
				return
			}
			if user.Role == "admin" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.ParseUint(chi.URLParam(r, param), 10, 64)
			if err != nil {
				response.BadRequest(w, "Invalid resource id")
				return
			}

			owner, err := owners.OwnerOf(resource, uint(id))
			if err != nil {
				response.NotFound(w, "Resource not found")
				return
			}
			if owner != user.ID {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
