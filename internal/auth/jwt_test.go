package auth

import (
	"testing"

	"powerpay-gateway/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &models.User{Username: "operator1", Role: models.RoleOperator}
	user.ID = 42

	token, err := GenerateAccessToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "operator1", claims.Username)
	assert.Equal(t, models.RoleOperator, claims.Role)
	assert.Equal(t, "access", claims.Type)
}

func TestRefreshTokenType(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &models.User{Username: "operator1", Role: models.RoleOperator}
	token, err := GenerateRefreshToken(user)
	assert.NoError(t, err)

	claims, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "refresh", claims.Type)
}

func TestValidateRejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &models.User{Username: "operator1", Role: models.RoleOperator}
	token, err := GenerateAccessToken(user)
	assert.NoError(t, err)

	_, err = ValidateToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	user := &models.User{Username: "operator1"}
	_, err := GenerateAccessToken(user)
	assert.ErrorIs(t, err, ErrMissingSecret)
}
