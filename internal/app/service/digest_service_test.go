package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
)

func TestDigestService_SendStalePending(t *testing.T) {
	testDB := setupServiceDB(t)
	notifier := newRecordingNotifier()
	svc := NewDigestService(
		repository.NewOrderRepository(testDB),
		repository.NewBankTransferRepository(testDB),
		notifier,
		24*time.Hour,
	)

	placePendingOrder(t, testDB, "fresh@example.com")

	result, err := svc.SendStalePending(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Orders)
	assert.Equal(t, 0, result.Transfers)
	assert.Equal(t, 0, notifier.digestInvocations)

	// two days later everything placed above is stale
	result, err = svc.SendStalePending(time.Now().Add(48 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Orders)
	assert.Equal(t, 1, result.Transfers)
	assert.Equal(t, 1, notifier.digestInvocations)

	// paid orders drop out of the digest
	require.NoError(t, testDB.Model(&model.Order{}).Where("1 = 1").Update("status", model.OrderStatusPaid).Error)
	result, err = svc.SendStalePending(time.Now().Add(48 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Orders)
	assert.Equal(t, 1, result.Transfers)
}

func TestPasswordResetService_PurgeExpired(t *testing.T) {
	testDB := setupServiceDB(t)
	resetRepo := repository.NewPasswordResetRepository(testDB)
	svc := NewPasswordResetService(resetRepo, repository.NewUserRepository(testDB), newRecordingNotifier(), "https://virginiacakes.com")

	require.NoError(t, resetRepo.Create(&model.PasswordReset{Email: "a@example.com", Token: "old", ExpiresAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, resetRepo.Create(&model.PasswordReset{Email: "b@example.com", Token: "new", ExpiresAt: time.Now().Add(time.Hour)}))

	n, err := svc.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), countRows(t, testDB, &model.PasswordReset{}))
}
