// Package auth authenticates console accounts and resolves the acting
// user for every request. Sessions are stateless JWT pairs: a short-lived
// access token and a longer refresh token signed with separate secrets.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	SchoolID string `json:"school_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenGenerator creates tokens and validates them back into claims.
type TokenGenerator interface {
	GenerateAccessToken(claims Claims) (string, error)
	GenerateRefreshToken(claims Claims) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// ServiceAPI is what the HTTP handler needs from the auth service.
type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
