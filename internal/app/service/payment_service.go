package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"github.com/virginiacakes/storefront-backend/pkg/payment/paystack"
	"github.com/virginiacakes/storefront-backend/pkg/redis"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotSuccessful = errors.New("payment was not successful")
	ErrAmountMismatch       = errors.New("paid amount does not cover the cart total")
	ErrPaymentUnavailable   = errors.New("payment gateway is not configured")
)

const (
	paymentSessionTTL = time.Hour
	referencePrefix   = "VC-"
)

// PaymentGateway is the hosted checkout provider. *paystack.Client implements it.
type PaymentGateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*paystack.Transaction, error)
}

type InitializePaymentInput struct {
	Email       string `json:"email"`
	CallbackURL string `json:"callback_url"`
	Reference   string `json:"reference"`
}

// PaymentSession is returned to the storefront to redirect the customer
type PaymentSession struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
	AmountNaira      int64  `json:"amount_naira"`
}

// cachedSession is what InitializePayment remembers about a reference
type cachedSession struct {
	UserID      uint  `json:"user_id"`
	CartID      uint  `json:"cart_id"`
	AmountNaira int64 `json:"amount_naira"`
}

type PaymentService interface {
	InitializePayment(ctx context.Context, userID uint, input InitializePaymentInput) (*PaymentSession, error)
	// VerifyPayment turns a successful gateway transaction into a paid order. Verifying the
	// same reference again returns the order created the first time.
	VerifyPayment(ctx context.Context, userID uint, reference string) (*model.Order, error)
}

type paymentService struct {
	db        *gorm.DB
	cartRepo  repository.CartRepository
	orderRepo repository.OrderRepository
	gateway   PaymentGateway
	cache     redis.Store
	notifier  NotificationService
	currency  string
}

// NewPaymentService builds the gateway checkout. gateway may be nil when no secret key is
// configured; every call then fails with ErrPaymentUnavailable.
func NewPaymentService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	gateway PaymentGateway,
	cache redis.Store,
	notifier NotificationService,
	currency string,
) PaymentService {
	if cache == nil {
		cache = redis.NoopStore{}
	}
	if currency == "" {
		currency = paystack.DefaultCurrency
	}
	return &paymentService{
		db:        db,
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		gateway:   gateway,
		cache:     cache,
		notifier:  notifier,
		currency:  currency,
	}
}

func sessionKey(reference string) string {
	return fmt.Sprintf("paystack:session:%s", reference)
}

func (s *paymentService) InitializePayment(ctx context.Context, userID uint, input InitializePaymentInput) (*PaymentSession, error) {
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, invalidInput("email is required")
	}

	cart, err := s.cartRepo.FindOpenByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	items, err := s.cartRepo.FindItems(cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	total, _ := cartTotals(items)

	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = referencePrefix + uuid.NewString()
	}

	resp, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       email,
		AmountKobo:  paystack.ToKobo(total),
		Reference:   reference,
		Currency:    s.currency,
		CallbackURL: input.CallbackURL,
		Metadata: map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		},
	})
	if err != nil {
		logger.Error("Failed to initialize payment", err, map[string]interface{}{
			"user_id":   userID,
			"reference": reference,
		})
		return nil, err
	}
	if resp.Reference != "" {
		reference = resp.Reference
	}

	if err := s.cache.SetJSON(ctx, sessionKey(reference), cachedSession{
		UserID:      userID,
		CartID:      cart.ID,
		AmountNaira: total,
	}, paymentSessionTTL); err != nil {
		logger.Warn("Failed to cache payment session", map[string]interface{}{
			"reference": reference,
			"error":     err.Error(),
		})
	}

	logger.Info("Payment initialized", map[string]interface{}{
		"user_id":      userID,
		"cart_id":      cart.ID,
		"reference":    reference,
		"amount_naira": total,
	})

	return &PaymentSession{
		AuthorizationURL: resp.AuthorizationURL,
		AccessCode:       resp.AccessCode,
		Reference:        reference,
		AmountNaira:      total,
	}, nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, userID uint, reference string) (*model.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, invalidInput("reference is required")
	}

	if order, err := s.existingOrder(userID, reference); order != nil || err != nil {
		return order, err
	}

	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}

	var session cachedSession
	found, err := s.cache.GetJSON(ctx, sessionKey(reference), &session)
	if err != nil {
		logger.Warn("Failed to read payment session", map[string]interface{}{
			"reference": reference,
			"error":     err.Error(),
		})
	}
	if found && session.UserID != userID {
		logger.Warn("Payment reference belongs to another user", map[string]interface{}{
			"user_id":   userID,
			"reference": reference,
		})
		return nil, ErrUserMismatch
	}

	txn, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		logger.Error("Failed to verify payment", err, map[string]interface{}{
			"reference": reference,
		})
		return nil, err
	}
	if !txn.IsSuccessful() {
		logger.Warn("Payment not successful", map[string]interface{}{
			"reference": reference,
			"status":    txn.Status,
		})
		return nil, ErrPaymentNotSuccessful
	}
	if txn.Currency != "" && !strings.EqualFold(txn.Currency, s.currency) {
		logger.Warn("Payment currency mismatch", map[string]interface{}{
			"reference": reference,
			"currency":  txn.Currency,
		})
		return nil, ErrAmountMismatch
	}

	paidNaira := paystack.ToNaira(txn.AmountKobo)
	paidAt := time.Now()
	if txn.PaidAt != nil {
		paidAt = *txn.PaidAt
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.WithTx(tx).FindOpenByUserID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyCart
			}
			return err
		}
		if found && session.CartID != cart.ID {
			logger.Warn("Open cart changed since payment was initialized", map[string]interface{}{
				"reference":    reference,
				"session_cart": session.CartID,
				"current_cart": cart.ID,
			})
		}

		ref := reference
		order, err = placeOrderFromCart(tx, s.cartRepo, s.orderRepo, cart, placement{
			Status:    model.OrderStatusPaid,
			Method:    model.PaymentMethodPaystack,
			Reference: &ref,
			PaidAt:    &paidAt,
		})
		if err != nil {
			return err
		}

		if paidNaira < order.TotalNaira {
			logger.Warn("Paid amount below cart total", map[string]interface{}{
				"reference":   reference,
				"paid_naira":  paidNaira,
				"total_naira": order.TotalNaira,
			})
			return ErrAmountMismatch
		}
		return nil
	})
	if err != nil {
		// a concurrent verify of the same reference won the unique index
		if existing, findErr := s.existingOrder(userID, reference); existing != nil && findErr == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrAmountMismatch) && !errors.Is(err, ErrEmptyCart) {
			logger.Error("Failed to place paid order", err, map[string]interface{}{
				"reference": reference,
			})
		}
		return nil, err
	}

	if err := s.cache.Delete(ctx, sessionKey(reference)); err != nil {
		logger.Warn("Failed to clear payment session", map[string]interface{}{
			"reference": reference,
			"error":     err.Error(),
		})
	}

	logger.Info("Payment verified, order paid", map[string]interface{}{
		"order_id":    order.ID,
		"user_id":     userID,
		"reference":   reference,
		"total_naira": order.TotalNaira,
	})
	s.notifier.OrderPaid(order)

	return order, nil
}

// existingOrder returns the order already carrying reference, if any
func (s *paymentService) existingOrder(userID uint, reference string) (*model.Order, error) {
	order, err := s.orderRepo.FindByPaymentReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrUserMismatch
	}
	logger.Info("Payment reference already settled", map[string]interface{}{
		"order_id":  order.ID,
		"reference": reference,
	})
	return order, nil
}
