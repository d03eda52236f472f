package service

import (
	"context"
	"errors"
	"time"

	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrTransferNotFound    = errors.New("transfer not found")
	ErrTransferMissingCart = errors.New("transfer has no cart_id")

	errTransferClaimed = errors.New("transfer already claimed")
)

type ConfirmTransferResult struct {
	AlreadyVerified bool  `json:"-"`
	OrderID         uint  `json:"orderId,omitempty"`
	TotalNaira      int64 `json:"total_naira,omitempty"`
}

type TransferService interface {
	// ConfirmTransfer verifies a pending bank transfer and marks its order paid. Confirming an
	// already verified transfer is a no-op reported through AlreadyVerified.
	ConfirmTransfer(ctx context.Context, adminUserID, transferID uint) (*ConfirmTransferResult, error)
	ListPending() ([]model.BankTransfer, error)
}

type transferService struct {
	db           *gorm.DB
	transferRepo repository.BankTransferRepository
	cartRepo     repository.CartRepository
	orderRepo    repository.OrderRepository
	notifier     NotificationService
}

func NewTransferService(
	db *gorm.DB,
	transferRepo repository.BankTransferRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	notifier NotificationService,
) TransferService {
	return &transferService{
		db:           db,
		transferRepo: transferRepo,
		cartRepo:     cartRepo,
		orderRepo:    orderRepo,
		notifier:     notifier,
	}
}

func (s *transferService) ListPending() ([]model.BankTransfer, error) {
	transfers, err := s.transferRepo.FindPending()
	if err != nil {
		logger.Error("Failed to list pending transfers", err)
		return nil, err
	}
	return transfers, nil
}

func (s *transferService) ConfirmTransfer(ctx context.Context, adminUserID, transferID uint) (*ConfirmTransferResult, error) {
	log := logger.WithContext(map[string]interface{}{
		"transfer_id": transferID,
		"admin_id":    adminUserID,
	})

	if transferID == 0 {
		return nil, invalidInput("transferId is required")
	}

	transfer, err := s.transferRepo.FindByID(transferID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	if transfer.Status == model.TransferStatusVerified {
		log.Info("Transfer already verified")
		return &ConfirmTransferResult{AlreadyVerified: true}, nil
	}
	if transfer.OrderID == nil && transfer.CartID == nil {
		return nil, ErrTransferMissingCart
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := s.transferRepo.WithTx(tx).ClaimPending(transfer.ID, adminUserID, time.Now())
		if err != nil {
			return err
		}
		if !claimed {
			return errTransferClaimed
		}

		orders := s.orderRepo.WithTx(tx)

		if transfer.OrderID != nil {
			order, err = orders.FindByID(*transfer.OrderID)
			if err != nil {
				return err
			}
			// an admin may already have moved the order past paid by hand
			if order.Status == model.OrderStatusPending {
				if err := orders.UpdateStatus(order.ID, model.OrderStatusPaid); err != nil {
					return err
				}
				order.Status = model.OrderStatusPaid
			}
			return nil
		}

		// submission stored without an order: build it from the cart now
		cart := &model.Cart{ID: *transfer.CartID, UserID: transfer.UserID}
		order, err = placeOrderFromCart(tx, s.cartRepo, s.orderRepo, cart, placement{
			Status: model.OrderStatusPaid,
			Method: model.PaymentMethodBankTransfer,
		})
		if err != nil {
			return err
		}
		return s.transferRepo.WithTx(tx).LinkOrder(transfer.ID, order.ID)
	})
	if err != nil {
		if errors.Is(err, errTransferClaimed) {
			log.Info("Transfer verified concurrently")
			return &ConfirmTransferResult{AlreadyVerified: true}, nil
		}
		log.Error("Failed to confirm transfer", err)
		return nil, err
	}

	log.Info("Bank transfer confirmed", map[string]interface{}{
		"order_id":    order.ID,
		"total_naira": order.TotalNaira,
	})

	s.notifyConfirmed(order, transfer)

	return &ConfirmTransferResult{
		OrderID:    order.ID,
		TotalNaira: order.TotalNaira,
	}, nil
}

func (s *transferService) notifyConfirmed(order *model.Order, transfer *model.BankTransfer) {
	full, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		logger.Warn("Failed to reload order for notification", map[string]interface{}{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		full = order
	}

	email := ""
	if transfer.User != nil {
		email = transfer.User.Email
	} else if full.User != nil {
		email = full.User.Email
	}

	s.notifier.TransferConfirmed(full, transfer, email)
}
