package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"github.com/virginiacakes/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

const (
	ResetTokenExpiry = 1 * time.Hour
	ResetTokenLength = 32
)

type PasswordResetService interface {
	// RequestReset emails a reset link. It succeeds for unknown emails too.
	RequestReset(email string) error
	ResetPassword(token, newPassword string) error
	PurgeExpired() (int64, error)
}

type passwordResetService struct {
	resetRepo   repository.PasswordResetRepository
	userRepo    repository.UserRepository
	notifier    NotificationService
	frontendURL string
}

func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
	frontendURL string,
) PasswordResetService {
	return &passwordResetService{
		resetRepo:   resetRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (s *passwordResetService) resetLink(token string) string {
	return s.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
}

func (s *passwordResetService) RequestReset(email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return invalidInput("email is required")
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for unknown email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		logger.Error("Failed to generate reset token", err)
		return err
	}

	// only the newest link works
	if err := s.resetRepo.InvalidateForEmail(email); err != nil {
		return err
	}

	reset := &model.PasswordReset{
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().Add(ResetTokenExpiry),
	}
	if err := s.resetRepo.Create(reset); err != nil {
		return err
	}

	s.notifier.PasswordReset(email, s.resetLink(token))

	logger.Info("Password reset requested", map[string]interface{}{
		"user_id":    user.ID,
		"expires_at": reset.ExpiresAt,
	})
	return nil
}

func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalidInput("token is required")
	}
	if err := util.CheckPasswordPolicy(newPassword); err != nil {
		return invalidInput(err.Error())
	}

	reset, err := s.resetRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if !reset.IsUsable(time.Now()) {
		logger.Warn("Reset token rejected", map[string]interface{}{
			"reset_id": reset.ID,
			"used":     reset.Used,
		})
		return ErrInvalidResetToken
	}

	// consume first so a replayed token cannot race the update
	if err := s.resetRepo.MarkAsUsed(reset.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePasswordByEmail(reset.Email, hashed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		logger.Error("Failed to update password", err, map[string]interface{}{
			"reset_id": reset.ID,
		})
		return err
	}

	logger.Info("Password reset completed", map[string]interface{}{
		"reset_id": reset.ID,
	})
	return nil
}

func (s *passwordResetService) PurgeExpired() (int64, error) {
	n, err := s.resetRepo.DeleteExpired()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("Expired password resets purged", map[string]interface{}{
			"count": n,
		})
	}
	return n, nil
}

func generateResetToken() (string, error) {
	b := make([]byte, ResetTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
