package repository

import (
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// AdminRepository reads and edits the admin allow-list
type AdminRepository interface {
	IsAdmin(userID uint) (bool, error)
	Add(userID uint) error
	Remove(userID uint) error
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) IsAdmin(userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.AdminUser{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		logger.Error("Failed to check admin allow-list", err, map[string]interface{}{
			"user_id": userID,
		})
		return false, err
	}

	logger.Debug("Admin allow-list checked", map[string]interface{}{
		"user_id":  userID,
		"is_admin": count > 0,
	})
	return count > 0, nil
}

func (r *adminRepository) Add(userID uint) error {
	if err := r.db.Create(&model.AdminUser{UserID: userID}).Error; err != nil {
		logger.Error("Failed to add user to admin allow-list", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Info("User added to admin allow-list", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (r *adminRepository) Remove(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.AdminUser{}).Error; err != nil {
		logger.Error("Failed to remove user from admin allow-list", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
