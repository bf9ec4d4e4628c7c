package auth

import (
	"errors"
	"os"
	"strings"
	"time"

	"powerpay-gateway/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret = errors.New("JWT_SECRET is not set")
	ErrInvalidToken  = errors.New("invalid token")
)

const (
	AccessTokenTTL  = 6 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims carried by gateway tokens. Type is "access" or "refresh".
type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

func secret() ([]byte, error) {
	s := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if s == "" {
		return nil, ErrMissingSecret
	}
	return []byte(s), nil
}

// GenerateAccessToken issues a short-lived token carrying the user's role.
func GenerateAccessToken(user *models.User) (string, error) {
	return generate(user, "access", AccessTokenTTL)
}

// GenerateRefreshToken issues a long-lived token usable only at the refresh
// endpoint.
func GenerateRefreshToken(user *models.User) (string, error) {
	return generate(user, "refresh", RefreshTokenTTL)
}

func generate(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ValidateToken checks signature and registered claims and returns the
// parsed claims.
func ValidateToken(tokenString string) (*Claims, error) {
	key, err := secret()
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
