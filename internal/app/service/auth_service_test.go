package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/pkg/redis"
	"github.com/virginiacakes/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret"

// blacklistStore records revoked tokens
type blacklistStore struct {
	redis.NoopStore
	revoked map[string]time.Duration
}

func (b *blacklistStore) BlacklistToken(_ context.Context, token string, expiry time.Duration) error {
	b.revoked[token] = expiry
	return nil
}

func (b *blacklistStore) IsTokenBlacklisted(_ context.Context, token string) (bool, error) {
	_, ok := b.revoked[token]
	return ok, nil
}

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB, *blacklistStore) {
	testDB := setupServiceDB(t)
	store := &blacklistStore{revoked: map[string]time.Duration{}}
	svc := NewAuthService(
		repository.NewUserRepository(testDB),
		repository.NewAdminRepository(testDB),
		store,
		testJWTSecret,
		15*time.Minute,
		7*24*time.Hour,
	)
	return svc, testDB, store
}

func TestAuthService_Register(t *testing.T) {
	svc, _, _ := setupAuthServiceTest(t)

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{
			name:  "valid registration",
			input: RegisterInput{Email: "Ada@Example.com ", Password: "password123", Name: "Ada", Phone: "0803"},
		},
		{
			name:    "duplicate email",
			input:   RegisterInput{Email: "ada@example.com", Password: "password123"},
			wantErr: ErrEmailAlreadyExists,
		},
		{
			name:    "short password",
			input:   RegisterInput{Email: "short@example.com", Password: "abc"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "bad email",
			input:   RegisterInput{Email: "not-an-email", Password: "password123"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing password",
			input:   RegisterInput{Email: "nopass@example.com"},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := svc.Register(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ada@example.com", user.Email)
			assert.Equal(t, model.RoleCustomer, user.Role)
			assert.NotEqual(t, "password123", user.PasswordHash)
			assert.NotEmpty(t, tokens.AccessToken)
			assert.NotEmpty(t, tokens.RefreshToken)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, _, _ := setupAuthServiceTest(t)
	registered, _, err := svc.Register(RegisterInput{Email: "login@example.com", Password: "password123"})
	require.NoError(t, err)

	user, tokens, err := svc.Login("LOGIN@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := util.ValidateToken(tokens.AccessToken, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, util.TokenTypeAccess, claims.TokenType)

	_, _, err = svc.Login("login@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Refresh(t *testing.T) {
	svc, testDB, _ := setupAuthServiceTest(t)
	user, tokens, err := svc.Register(RegisterInput{Email: "refresh@example.com", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	claims, err := util.ValidateToken(refreshed.AccessToken, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// an access token cannot refresh
	_, err = svc.Refresh(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	_, err = svc.Refresh("garbage")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	require.NoError(t, testDB.Delete(&model.User{}, user.ID).Error)
	_, err = svc.Refresh(tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, store := setupAuthServiceTest(t)
	_, tokens, err := svc.Register(RegisterInput{Email: "logout@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), tokens.AccessToken))
	ttl, revoked := store.revoked[tokens.AccessToken]
	assert.True(t, revoked)
	assert.True(t, ttl > 0 && ttl <= 15*time.Minute)

	// nothing to revoke for junk
	require.NoError(t, svc.Logout(context.Background(), "junk"))
	assert.Len(t, store.revoked, 1)
}

func TestAuthService_GetProfile(t *testing.T) {
	svc, testDB, _ := setupAuthServiceTest(t)
	user, _, err := svc.Register(RegisterInput{Email: "me@example.com", Password: "password123", Name: "Me"})
	require.NoError(t, err)

	profile, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", profile.Email)
	assert.False(t, profile.IsAdmin)

	require.NoError(t, repository.NewAdminRepository(testDB).Add(user.ID))
	profile, err = svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsAdmin)

	_, err = svc.GetProfile(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
