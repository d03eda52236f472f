package repository

import (
	"time"

	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type BankTransferRepository interface {
	WithTx(tx *gorm.DB) BankTransferRepository

	Create(transfer *model.BankTransfer) error
	FindByID(id uint) (*model.BankTransfer, error)
	FindPending() ([]model.BankTransfer, error)
	FindPendingBefore(before time.Time) ([]model.BankTransfer, error)
	// ClaimPending moves a pending transfer to verified. Returns false when another
	// caller already verified it.
	ClaimPending(id uint, verifiedBy uint, at time.Time) (bool, error)
	LinkOrder(id uint, orderID uint) error
	CountPending() (int64, error)
}

type bankTransferRepository struct {
	db *gorm.DB
}

func NewBankTransferRepository(db *gorm.DB) BankTransferRepository {
	return &bankTransferRepository{db: db}
}

func (r *bankTransferRepository) WithTx(tx *gorm.DB) BankTransferRepository {
	return &bankTransferRepository{db: tx}
}

func (r *bankTransferRepository) Create(transfer *model.BankTransfer) error {
	logger.Debug("Creating bank transfer in database", map[string]interface{}{
		"user_id":      transfer.UserID,
		"order_id":     transfer.OrderID,
		"amount_naira": transfer.AmountNaira,
		"proof_size":   transfer.ProofSize,
	})

	if transfer.Status == "" {
		transfer.Status = model.TransferStatusPending
	}
	if transfer.ProofMime == "" {
		transfer.ProofMime = model.DefaultProofMime
	}

	if err := r.db.Create(transfer).Error; err != nil {
		logger.Error("Failed to create bank transfer in database", err, map[string]interface{}{
			"user_id": transfer.UserID,
		})
		return err
	}

	logger.Debug("Bank transfer created in database", map[string]interface{}{
		"transfer_id": transfer.ID,
		"order_id":    transfer.OrderID,
	})
	return nil
}

func (r *bankTransferRepository) FindByID(id uint) (*model.BankTransfer, error) {
	var transfer model.BankTransfer
	if err := r.db.Preload("User").First(&transfer, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find bank transfer by ID in database", err, map[string]interface{}{
				"transfer_id": id,
			})
		}
		return nil, err
	}
	return &transfer, nil
}

func (r *bankTransferRepository) FindPending() ([]model.BankTransfer, error) {
	var transfers []model.BankTransfer
	if err := r.db.Preload("User").
		Where("status = ?", model.TransferStatusPending).
		Order("created_at DESC").Order("id DESC").
		Find(&transfers).Error; err != nil {
		logger.Error("Failed to find pending bank transfers in database", err)
		return nil, err
	}

	logger.Debug("Pending bank transfers found in database", map[string]interface{}{
		"count": len(transfers),
	})
	return transfers, nil
}

func (r *bankTransferRepository) FindPendingBefore(before time.Time) ([]model.BankTransfer, error) {
	var transfers []model.BankTransfer
	if err := r.db.Preload("User").
		Where("status = ? AND created_at < ?", model.TransferStatusPending, before).
		Order("created_at ASC").
		Find(&transfers).Error; err != nil {
		logger.Error("Failed to find stale pending bank transfers in database", err)
		return nil, err
	}
	return transfers, nil
}

func (r *bankTransferRepository) ClaimPending(id uint, verifiedBy uint, at time.Time) (bool, error) {
	result := r.db.Model(&model.BankTransfer{}).
		Where("id = ? AND status = ?", id, model.TransferStatusPending).
		Updates(map[string]interface{}{
			"status":      model.TransferStatusVerified,
			"verified_at": at,
			"verified_by": verifiedBy,
		})
	if result.Error != nil {
		logger.Error("Failed to claim bank transfer in database", result.Error, map[string]interface{}{
			"transfer_id": id,
		})
		return false, result.Error
	}

	logger.Debug("Bank transfer claim attempted", map[string]interface{}{
		"transfer_id": id,
		"claimed":     result.RowsAffected > 0,
	})
	return result.RowsAffected > 0, nil
}

func (r *bankTransferRepository) LinkOrder(id uint, orderID uint) error {
	if err := r.db.Model(&model.BankTransfer{}).Where("id = ?", id).
		Update("order_id", orderID).Error; err != nil {
		logger.Error("Failed to link bank transfer to order", err, map[string]interface{}{
			"transfer_id": id,
			"order_id":    orderID,
		})
		return err
	}
	return nil
}

func (r *bankTransferRepository) CountPending() (int64, error) {
	var count int64
	if err := r.db.Model(&model.BankTransfer{}).
		Where("status = ?", model.TransferStatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
