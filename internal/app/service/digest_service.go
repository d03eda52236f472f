package service

import (
	"time"

	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
)

// DigestResult counts what a digest reported
type DigestResult struct {
	Orders    int
	Transfers int
}

// DigestService reports orders and transfers left waiting on the admin. It never changes them.
type DigestService interface {
	SendStalePending(now time.Time) (*DigestResult, error)
}

type digestService struct {
	orderRepo    repository.OrderRepository
	transferRepo repository.BankTransferRepository
	notifier     NotificationService
	staleAfter   time.Duration
}

func NewDigestService(
	orderRepo repository.OrderRepository,
	transferRepo repository.BankTransferRepository,
	notifier NotificationService,
	staleAfter time.Duration,
) DigestService {
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	return &digestService{
		orderRepo:    orderRepo,
		transferRepo: transferRepo,
		notifier:     notifier,
		staleAfter:   staleAfter,
	}
}

func (s *digestService) SendStalePending(now time.Time) (*DigestResult, error) {
	cutoff := now.Add(-s.staleAfter)

	orders, err := s.orderRepo.FindPendingBefore(cutoff)
	if err != nil {
		return nil, err
	}
	transfers, err := s.transferRepo.FindPendingBefore(cutoff)
	if err != nil {
		return nil, err
	}

	result := &DigestResult{Orders: len(orders), Transfers: len(transfers)}
	if result.Orders == 0 && result.Transfers == 0 {
		logger.Debug("No stale pending orders or transfers", map[string]interface{}{
			"cutoff": cutoff,
		})
		return result, nil
	}

	s.notifier.StalePendingDigest(orders, transfers)

	logger.Info("Stale pending digest sent", map[string]interface{}{
		"orders":    result.Orders,
		"transfers": result.Transfers,
		"cutoff":    cutoff,
	})
	return result, nil
}
