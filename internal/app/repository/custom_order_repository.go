package repository

import (
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type CustomOrderRepository interface {
	// Create inserts the request together with its Images.
	Create(order *model.CustomOrder) error
	FindByID(id uint) (*model.CustomOrder, error)
	FindByUserID(userID uint) ([]model.CustomOrder, error)
	FindPublic(limit int) ([]model.CustomOrder, error)
	UpdateStatus(id uint, status model.CustomOrderStatus) error
}

type customOrderRepository struct {
	db *gorm.DB
}

func NewCustomOrderRepository(db *gorm.DB) CustomOrderRepository {
	return &customOrderRepository{db: db}
}

func (r *customOrderRepository) withImages() *gorm.DB {
	return r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

func (r *customOrderRepository) Create(order *model.CustomOrder) error {
	logger.Debug("Creating custom order in database", map[string]interface{}{
		"user_id":   order.UserID,
		"cake_type": order.CakeType,
		"images":    len(order.Images),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create custom order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Custom order created in database", map[string]interface{}{
		"custom_order_id": order.ID,
	})
	return nil
}

func (r *customOrderRepository) FindByID(id uint) (*model.CustomOrder, error) {
	var order model.CustomOrder
	if err := r.withImages().First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *customOrderRepository) FindByUserID(userID uint) ([]model.CustomOrder, error) {
	var orders []model.CustomOrder
	if err := r.withImages().Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find custom orders by user ID", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *customOrderRepository) FindPublic(limit int) ([]model.CustomOrder, error) {
	var orders []model.CustomOrder
	if err := r.withImages().Where("is_public = ?", true).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find public custom orders", err)
		return nil, err
	}
	return orders, nil
}

func (r *customOrderRepository) UpdateStatus(id uint, status model.CustomOrderStatus) error {
	result := r.db.Model(&model.CustomOrder{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update custom order status", result.Error, map[string]interface{}{
			"custom_order_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
