package auth

import (
	"errors"
	"time"

	"github.com/fjod/go_inventory/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

type JWTConfig struct {
	SecretKey     string
	TokenDuration time.Duration
	Issuer        string
}

// Claims identifies the signed-in user and the sections they may open.
type Claims struct {
	Username    string             `json:"username"`
	AccountType domain.AccountType `json:"account_type"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates session tokens.
type JWTManager struct {
	config JWTConfig
}

func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{
		config: config,
	}
}

func (m *JWTManager) GenerateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Username:    user.Username,
		AccountType: user.AccountType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.SecretKey))
}

func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// TokenDuration returns the token lifetime in seconds.
func (m *JWTManager) TokenDuration() int64 {
	return int64(m.config.TokenDuration.Seconds())
}
