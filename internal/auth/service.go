package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/scolaris/school-management/internal"
	"github.com/scolaris/school-management/internal/sysuser"
)

// Service is the main auth service with dependencies
type Service struct {
	users          sysuser.RepositoryAPI
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
	now            func() time.Time
}

// NewService creates a new auth service
func NewService(users sysuser.RepositoryAPI, tokenGen TokenGenerator, cfg internal.SecurityConfig, logger *slog.Logger) *Service {
	cost := cfg.BCryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
		bcryptCost:     cost,
		logger:         logger,
		now:            time.Now,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(cfg internal.SecurityConfig) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(cfg.AccessTokenSecret),
		RefreshTokenSecret: []byte(cfg.RefreshTokenSecret),
		AccessTokenTTL:     cfg.AccessTokenDuration,
		RefreshTokenTTL:    cfg.RefreshTokenDuration,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	user, err := s.users.GetByEmail(dto.Email)
	if err != nil || user == nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !user.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	claims := Claims{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		SchoolID: user.SchoolID,
	}

	tokens, err := s.issueTokens(claims)
	if err != nil {
		return AuthTokens{}, err
	}

	// Best effort: a failed timestamp update never blocks the login.
	loginAt := s.now()
	user.LastLoginAt = &loginAt
	if err := s.users.Save(user); err != nil {
		s.logger.Warn("could not record last login time", "user_id", user.ID, "error", err)
	}

	return tokens, nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil || user == nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if !user.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issueTokens(Claims{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		SchoolID: user.SchoolID,
	})
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

func (s *Service) issueTokens(claims Claims) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(claims)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(claims)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(claims Claims) (string, error) {
	return j.sign(claims, j.AccessTokenTTL, j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(claims Claims) (string, error) {
	return j.sign(claims, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(claims Claims, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Subject:   claims.UserID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(secret)
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		// Refresh tokens outlive the access TTL, so their remaining
		// lifetime tells the secrets apart.
		if claims, ok := token.Claims.(*Claims); ok {
			if time.Until(claims.ExpiresAt.Time) > j.AccessTokenTTL {
				return j.RefreshTokenSecret, nil
			}
		}
		return j.AccessTokenSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
