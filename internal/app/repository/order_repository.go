package repository

import (
	"time"

	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderFilter struct {
	UserID *uint
	Status *model.OrderStatus
	Limit  int
	Offset int
}

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository

	// Create inserts the order and its OrderItems in one statement batch.
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByPaymentReference(reference string) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindWithFilter(filter OrderFilter) ([]model.Order, int64, error)
	FindRecent(limit int) ([]model.Order, error)
	FindPendingBefore(before time.Time) ([]model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) error
	CountByStatuses(statuses ...model.OrderStatus) (int64, error)
	SumTotalByStatuses(statuses ...model.OrderStatus) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC").Preload("Product", func(pdb *gorm.DB) *gorm.DB {
			return pdb.Unscoped()
		})
	}).Preload("User")
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":        order.UserID,
		"total_naira":    order.TotalNaira,
		"payment_method": order.PaymentMethod,
		"items":          len(order.OrderItems),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id":     order.UserID,
			"total_naira": order.TotalNaira,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"total_naira": order.TotalNaira,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}

	return &order, nil
}

func (r *orderRepository) FindByPaymentReference(reference string) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().Where("payment_reference = ?", reference).First(&order).Error; err != nil {
		return nil, err
	}

	logger.Debug("Order found by payment reference in database", map[string]interface{}{
		"order_id":  order.ID,
		"reference": reference,
	})
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var orders []model.Order
	if err := r.preloadOrder().Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindWithFilter(filter OrderFilter) ([]model.Order, int64, error) {
	query := r.db.Model(&model.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count orders with filter", err)
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var ids []uint
	if err := query.Order("created_at DESC").Order("id DESC").Pluck("id", &ids).Error; err != nil {
		logger.Error("Failed to find orders with filter", err)
		return nil, 0, err
	}

	orders := []model.Order{}
	if len(ids) > 0 {
		if err := r.preloadOrder().Where("id IN ?", ids).
			Order("created_at DESC").Order("id DESC").
			Find(&orders).Error; err != nil {
			logger.Error("Failed to load orders with filter", err)
			return nil, 0, err
		}
	}

	logger.Debug("Orders found with filter", map[string]interface{}{
		"count": len(orders),
		"total": total,
	})
	return orders, total, nil
}

func (r *orderRepository) FindRecent(limit int) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.Preload("User").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find recent orders", err)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindPendingBefore(before time.Time) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.Preload("User").
		Where("status = ? AND created_at < ?", model.OrderStatusPending, before).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find stale pending orders", err)
		return nil, err
	}
	return orders, nil
}

// UpdateStatus sets the status. Moving to paid stamps paid_at unless it is already set.
func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	updates := map[string]interface{}{"status": status}
	if status == model.OrderStatusPaid {
		updates["paid_at"] = gorm.Expr("COALESCE(paid_at, ?)", time.Now())
	}

	result := r.db.Model(&model.Order{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Order status updated in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})
	return nil
}

func (r *orderRepository) CountByStatuses(statuses ...model.OrderStatus) (int64, error) {
	query := r.db.Model(&model.Order{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		logger.Error("Failed to count orders", err)
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) SumTotalByStatuses(statuses ...model.OrderStatus) (int64, error) {
	query := r.db.Model(&model.Order{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var total int64
	if err := query.Select("COALESCE(SUM(total_naira), 0)").Scan(&total).Error; err != nil {
		logger.Error("Failed to sum order totals", err)
		return 0, err
	}
	return total, nil
}
