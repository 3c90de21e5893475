// Package auth issues and validates the two JWT families used by the API:
// short-lived access tokens and long-lived refresh tokens. The families are
// signed with independent secrets so a leaked access secret cannot mint
// refresh tokens.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shashiranjanraj/bazaar/config"
	"golang.org/x/crypto/bcrypt"
)

// Claims holds the typed JWT payload.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func accessSecret() []byte  { return []byte(config.JWTSecret()) }
func refreshSecret() []byte { return []byte(config.JWTRefreshSecret()) }

// GenerateToken creates a signed access JWT for the given user.
func GenerateToken(userID uint, email, role string) (string, error) {
	return sign(userID, email, role, config.JWTExpire(), accessSecret())
}

// GenerateRefreshToken creates the longer-lived token used to rotate the pair.
func GenerateRefreshToken(userID uint, email, role string) (string, error) {
	return sign(userID, email, role, config.JWTRefreshExpire(), refreshSecret())
}

func sign(userID uint, email, role string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateToken parses and validates an access token.
func ValidateToken(t string) (*Claims, error) {
	return parse(t, accessSecret())
}

// ValidateRefreshToken parses and validates a refresh token.
func ValidateRefreshToken(t string) (*Claims, error) {
	return parse(t, refreshSecret())
}

func parse(t string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// HashPassword returns a bcrypt hash of the plain-text password, using the
// configured cost (default 12).
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), config.BcryptCost())
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
