package service

import (
	"errors"
	"time"

	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCartAlreadyOrdered = errors.New("cart has already been ordered")
)

// placement describes the order a cart turns into
type placement struct {
	Status    model.OrderStatus
	Method    model.PaymentMethod
	Reference *string
	PaidAt    *time.Time
}

// placeOrderFromCart snapshots every cart line into a new order and closes the cart.
// It must run inside tx so a failure at any step leaves no partial order.
func placeOrderFromCart(
	tx *gorm.DB,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	cart *model.Cart,
	p placement,
) (*model.Order, error) {
	carts := cartRepo.WithTx(tx)

	items, err := carts.FindItems(cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if p.Status == model.OrderStatusPaid && p.PaidAt == nil {
		now := time.Now()
		p.PaidAt = &now
	}

	cartID := cart.ID
	order := &model.Order{
		UserID:           cart.UserID,
		CartID:           &cartID,
		Status:           p.Status,
		PaymentMethod:    p.Method,
		PaymentReference: p.Reference,
		PaidAt:           p.PaidAt,
		OrderItems:       make([]model.OrderItem, 0, len(items)),
	}
	for _, it := range items {
		order.OrderItems = append(order.OrderItems, model.OrderItem{
			ProductID:      it.ProductID,
			ProductName:    it.Product.Name,
			Quantity:       it.Quantity,
			UnitPriceNaira: it.Product.PriceNaira,
		})
		order.TotalNaira += it.LineTotal()
	}

	if err := orderRepo.WithTx(tx).Create(order); err != nil {
		return nil, err
	}

	closed, err := carts.MarkOrdered(cart.ID)
	if err != nil {
		return nil, err
	}
	if !closed {
		// another checkout closed this cart between our read and write
		return nil, ErrCartAlreadyOrdered
	}

	logger.Info("Order placed from cart", map[string]interface{}{
		"order_id":    order.ID,
		"cart_id":     cart.ID,
		"user_id":     cart.UserID,
		"status":      order.Status,
		"total_naira": order.TotalNaira,
		"items":       len(order.OrderItems),
	})
	return order, nil
}
