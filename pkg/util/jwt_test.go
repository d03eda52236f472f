package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func issuePair(t *testing.T, userID uint, accessExpiry, refreshExpiry time.Duration) *TokenPair {
	pair, err := GenerateTokenPair(userID, "ada@example.com", "customer", testSecret, accessExpiry, refreshExpiry)
	require.NoError(t, err)
	require.NotNil(t, pair)
	return pair
}

func TestGenerateTokenPair_TypedClaims(t *testing.T) {
	pair := issuePair(t, 42, 15*time.Minute, 7*24*time.Hour)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := ValidateToken(pair.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, access.TokenType)
	assert.Equal(t, uint(42), access.UserID)
	assert.Equal(t, "ada@example.com", access.Email)
	assert.Equal(t, "customer", access.Role)
	assert.Equal(t, "42", access.Subject)

	refresh, err := ValidateToken(pair.RefreshToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt.Time))
}

func TestGenerateTokenPair_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		pair := issuePair(t, 7, time.Minute, time.Hour)
		for _, raw := range []string{pair.AccessToken, pair.RefreshToken} {
			claims, err := ValidateToken(raw, testSecret)
			require.NoError(t, err)
			require.NotEmpty(t, claims.ID)
			assert.False(t, seen[claims.ID], "jti reused: %s", claims.ID)
			seen[claims.ID] = true
		}
	}
	assert.Len(t, seen, 10)
}

func TestValidateToken_Rejections(t *testing.T) {
	pair := issuePair(t, 1, 15*time.Minute, time.Hour)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, TokenType: TokenTypeAccess}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{"wrong secret", pair.AccessToken, "another-secret", ErrInvalidToken},
		{"garbage", "invalid.token.format", testSecret, ErrInvalidToken},
		{"empty", "", testSecret, ErrInvalidToken},
		{"unsigned", noneToken, testSecret, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestValidateToken_Expired(t *testing.T) {
	pair := issuePair(t, 1, -time.Minute, time.Hour)

	claims, err := ValidateToken(pair.AccessToken, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)

	// the refresh half of the same pair is still good
	refresh, err := ValidateToken(pair.RefreshToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
}

func TestTokenTTL(t *testing.T) {
	pair := issuePair(t, 1, 15*time.Minute, time.Hour)
	claims, err := ValidateToken(pair.AccessToken, testSecret)
	require.NoError(t, err)

	ttl := TokenTTL(claims)
	assert.Greater(t, ttl, 14*time.Minute)
	assert.LessOrEqual(t, ttl, 15*time.Minute)

	expired := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Second)),
	}}
	assert.Zero(t, TokenTTL(expired))
	assert.Zero(t, TokenTTL(&Claims{}))
	assert.Zero(t, TokenTTL(nil))
}
