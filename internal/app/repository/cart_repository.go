package repository

import (
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository

	FindOpenByUserID(userID uint) (*model.Cart, error)
	CreateCart(cart *model.Cart) error
	// MarkOrdered flips an open cart to ordered. Returns false when the cart was not open.
	MarkOrdered(cartID uint) (bool, error)

	FindItems(cartID uint) ([]model.CartItem, error)
	FindItem(cartID, itemID uint) (*model.CartItem, error)
	// UpsertItem sets the line quantity, replacing any existing quantity for the product.
	UpsertItem(cartID, productID uint, quantity int) (*model.CartItem, error)
	UpdateItemQuantity(cartID, itemID uint, quantity int) error
	DeleteItem(cartID, itemID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) FindOpenByUserID(userID uint) (*model.Cart, error) {
	logger.Debug("Finding open cart by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var cart model.Cart
	err := r.db.Where("user_id = ? AND status = ?", userID, model.CartStatusOpen).
		Order("id DESC").
		First(&cart).Error
	if err != nil {
		return nil, err
	}

	logger.Debug("Open cart found in database", map[string]interface{}{
		"cart_id": cart.ID,
		"user_id": userID,
	})
	return &cart, nil
}

func (r *cartRepository) CreateCart(cart *model.Cart) error {
	if cart.Status == "" {
		cart.Status = model.CartStatusOpen
	}

	if err := r.db.Create(cart).Error; err != nil {
		logger.Warn("Failed to create cart in database", map[string]interface{}{
			"user_id": cart.UserID,
			"error":   err.Error(),
		})
		return err
	}

	logger.Debug("Cart created in database", map[string]interface{}{
		"cart_id": cart.ID,
		"user_id": cart.UserID,
	})
	return nil
}

func (r *cartRepository) MarkOrdered(cartID uint) (bool, error) {
	result := r.db.Model(&model.Cart{}).
		Where("id = ? AND status = ?", cartID, model.CartStatusOpen).
		Update("status", model.CartStatusOrdered)
	if result.Error != nil {
		logger.Error("Failed to mark cart as ordered in database", result.Error, map[string]interface{}{
			"cart_id": cartID,
		})
		return false, result.Error
	}

	logger.Debug("Cart marked as ordered in database", map[string]interface{}{
		"cart_id": cartID,
		"changed": result.RowsAffected > 0,
	})
	return result.RowsAffected > 0, nil
}

func (r *cartRepository) FindItems(cartID uint) ([]model.CartItem, error) {
	logger.Debug("Finding cart items in database", map[string]interface{}{
		"cart_id": cartID,
	})

	var items []model.CartItem
	err := r.db.Where("cart_id = ?", cartID).
		Preload("Product", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find cart items in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}

	logger.Debug("Cart items found in database", map[string]interface{}{
		"cart_id": cartID,
		"count":   len(items),
	})
	return items, nil
}

func (r *cartRepository) FindItem(cartID, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("id = ? AND cart_id = ?", itemID, cartID).
		Preload("Product").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) UpsertItem(cartID, productID uint, quantity int) (*model.CartItem, error) {
	logger.Debug("Upserting cart item in database", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
	})

	item := model.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		logger.Error("Failed to upsert cart item in database", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return nil, err
	}

	// re-read: on conflict the returned id is not portable across drivers
	var saved model.CartItem
	if err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		Preload("Product").
		First(&saved).Error; err != nil {
		return nil, err
	}

	logger.Debug("Cart item upserted in database", map[string]interface{}{
		"cart_item_id": saved.ID,
		"quantity":     saved.Quantity,
	})
	return &saved, nil
}

func (r *cartRepository) UpdateItemQuantity(cartID, itemID uint, quantity int) error {
	result := r.db.Model(&model.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("quantity", quantity)
	if result.Error != nil {
		logger.Error("Failed to update cart item quantity in database", result.Error, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) DeleteItem(cartID, itemID uint) error {
	logger.Debug("Deleting cart item from database", map[string]interface{}{
		"cart_id":      cartID,
		"cart_item_id": itemID,
	})

	result := r.db.Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete cart item from database", result.Error, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
