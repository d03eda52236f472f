package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/virginiacakes/storefront-backend/config"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrUserMismatch         = errors.New("authenticated user does not match user_id")
	ErrInvalidProof         = errors.New("payment proof is not valid base64")
	ErrProofTooLarge        = errors.New("payment proof exceeds 5 MiB")
	ErrUnsupportedProofType = errors.New("payment proof must be a jpeg, png, webp or heic image")
	ErrCheckoutTimeout      = errors.New("checkout timed out")
)

// SubmitProofInput is the bank-transfer checkout payload
type SubmitProofInput struct {
	UserID            uint       `json:"user_id"`
	PayerName         string     `json:"payer_name"`
	Phone             string     `json:"phone"`
	TransferReference string     `json:"transfer_reference"`
	PaidAt            *time.Time `json:"paid_at"`
	ProofBase64       string     `json:"proof_base64"`
	ProofMime         string     `json:"proof_mime"`
	ProofSize         int64      `json:"proof_size"`
}

type SubmitProofResult struct {
	OrderID    uint  `json:"order_id"`
	TransferID uint  `json:"transfer_id"`
	TotalNaira int64 `json:"total_naira"`
}

// BankDetails is the account shown on the bank-transfer checkout page
type BankDetails struct {
	BankName       string `json:"bank_name"`
	AccountNumber  string `json:"account_number"`
	AccountName    string `json:"account_name"`
	WhatsAppNumber string `json:"whatsapp_number"`
}

type CheckoutService interface {
	// SubmitProof turns the open cart into a pending order with a bank-transfer proof attached.
	// authUserID is the bearer identity and must equal input.UserID.
	SubmitProof(ctx context.Context, authUserID uint, input SubmitProofInput) (*SubmitProofResult, error)
	GetBankDetails() BankDetails
}

type checkoutService struct {
	db           *gorm.DB
	cartRepo     repository.CartRepository
	orderRepo    repository.OrderRepository
	transferRepo repository.BankTransferRepository
	notifier     NotificationService
	timeout      time.Duration
	bank         config.BankConfig
}

func NewCheckoutService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	transferRepo repository.BankTransferRepository,
	notifier NotificationService,
	timeout time.Duration,
	bank config.BankConfig,
) CheckoutService {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &checkoutService{
		db:           db,
		cartRepo:     cartRepo,
		orderRepo:    orderRepo,
		transferRepo: transferRepo,
		notifier:     notifier,
		timeout:      timeout,
		bank:         bank,
	}
}

func (s *checkoutService) GetBankDetails() BankDetails {
	return BankDetails{
		BankName:       s.bank.BankName,
		AccountNumber:  s.bank.AccountNumber,
		AccountName:    s.bank.AccountName,
		WhatsAppNumber: s.bank.WhatsAppNumber,
	}
}

// decodeProof validates the proof image and returns its decoded size and normalized mime
func decodeProof(input SubmitProofInput) (payload string, size int64, mime string, err error) {
	payload = strings.TrimSpace(input.ProofBase64)
	mime = strings.ToLower(strings.TrimSpace(input.ProofMime))

	// accept data URLs as produced by FileReader.readAsDataURL
	if strings.HasPrefix(payload, "data:") {
		header, data, ok := strings.Cut(payload, ",")
		if !ok {
			return "", 0, "", ErrInvalidProof
		}
		if mime == "" {
			mime = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
		payload = data
	}
	if mime == "" {
		mime = model.DefaultProofMime
	}
	if !model.AllowedProofMimes[mime] {
		return "", 0, "", ErrUnsupportedProofType
	}

	// reject oversized payloads before allocating the decode buffer
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > model.MaxProofBytes+2 {
		return "", 0, "", ErrProofTooLarge
	}

	raw, decodeErr := base64.StdEncoding.DecodeString(payload)
	if decodeErr != nil {
		return "", 0, "", ErrInvalidProof
	}
	if len(raw) == 0 {
		return "", 0, "", ErrInvalidProof
	}
	if len(raw) > model.MaxProofBytes {
		return "", 0, "", ErrProofTooLarge
	}

	return payload, int64(len(raw)), mime, nil
}

func (s *checkoutService) SubmitProof(ctx context.Context, authUserID uint, input SubmitProofInput) (*SubmitProofResult, error) {
	log := logger.WithContext(map[string]interface{}{
		"user_id": input.UserID,
	})

	if input.UserID == 0 {
		return nil, invalidInput("Missing user_id")
	}
	if strings.TrimSpace(input.PayerName) == "" || strings.TrimSpace(input.Phone) == "" {
		return nil, invalidInput("Missing payer_name or phone")
	}
	if strings.TrimSpace(input.ProofBase64) == "" {
		return nil, invalidInput("Missing payment proof")
	}
	if authUserID != input.UserID {
		log.Warn("Checkout rejected: bearer does not match user_id", map[string]interface{}{
			"auth_user_id": authUserID,
		})
		return nil, ErrUserMismatch
	}

	proof, size, mime, err := decodeProof(input)
	if err != nil {
		log.Warn("Checkout rejected: invalid proof", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		order    *model.Order
		transfer *model.BankTransfer
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.WithTx(tx).FindOpenByUserID(input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyCart
			}
			return err
		}

		order, err = placeOrderFromCart(tx, s.cartRepo, s.orderRepo, cart, placement{
			Status: model.OrderStatusPending,
			Method: model.PaymentMethodBankTransfer,
		})
		if err != nil {
			return err
		}

		cartID, orderID := cart.ID, order.ID
		transfer = &model.BankTransfer{
			UserID:            input.UserID,
			CartID:            &cartID,
			OrderID:           &orderID,
			AmountNaira:       order.TotalNaira,
			PayerName:         strings.TrimSpace(input.PayerName),
			Phone:             strings.TrimSpace(input.Phone),
			TransferReference: strings.TrimSpace(input.TransferReference),
			PaidAt:            input.PaidAt,
			ProofBase64:       proof,
			ProofMime:         mime,
			ProofSize:         size,
			Status:            model.TransferStatusPending,
		}
		return s.transferRepo.WithTx(tx).Create(transfer)
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Error("Checkout timed out", err, map[string]interface{}{
				"timeout": s.timeout.String(),
			})
			return nil, ErrCheckoutTimeout
		}
		if errors.Is(err, ErrEmptyCart) {
			log.Warn("Checkout rejected: cart is empty")
			return nil, err
		}
		log.Error("Checkout failed", err)
		return nil, err
	}

	log.Info("Bank transfer checkout submitted", map[string]interface{}{
		"order_id":    order.ID,
		"transfer_id": transfer.ID,
		"total_naira": order.TotalNaira,
	})

	s.notifier.TransferSubmitted(order, transfer)

	return &SubmitProofResult{
		OrderID:    order.ID,
		TransferID: transfer.ID,
		TotalNaira: order.TotalNaira,
	}, nil
}
