package service

import (
	"errors"

	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
)

// CartView is the cart with live prices. CartID is nil when the user has no open cart.
type CartView struct {
	CartID     *uint            `json:"cart_id"`
	Items      []model.CartItem `json:"items"`
	TotalNaira int64            `json:"total_naira"`
	Count      int              `json:"count"`
}

type CartService interface {
	// AddItem sets the quantity of productID in the open cart. A second call replaces the quantity.
	AddItem(userID, productID uint, quantity int) (*model.CartItem, error)
	// UpdateQuantity sets a line quantity; zero or less removes the line.
	UpdateQuantity(userID, itemID uint, quantity int) error
	RemoveItem(userID, itemID uint) error
	GetCartWithTotals(userID uint) (*CartView, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) AddItem(userID, productID uint, quantity int) (*model.CartItem, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	if !product.IsActive {
		logger.Warn("Cannot add to cart: product inactive", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, ErrProductUnavailable
	}

	cart, err := getOrCreateOpenCart(s.cartRepo, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.UpsertItem(cart.ID, productID, quantity)
	if err != nil {
		logger.Error("Failed to upsert cart item", err, map[string]interface{}{
			"cart_id":    cart.ID,
			"product_id": productID,
		})
		return nil, err
	}

	logger.Info("Cart item saved", map[string]interface{}{
		"cart_id":      cart.ID,
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
	})
	return item, nil
}

func (s *cartService) UpdateQuantity(userID, itemID uint, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(userID, itemID)
	}

	logger.Info("Updating cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
		"quantity":     quantity,
	})

	cart, err := s.openCart(userID)
	if err != nil {
		return err
	}

	if err := s.cartRepo.UpdateItemQuantity(cart.ID, itemID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		logger.Error("Failed to update cart item", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return err
	}
	return nil
}

func (s *cartService) RemoveItem(userID, itemID uint) error {
	logger.Info("Removing cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
	})

	cart, err := s.openCart(userID)
	if err != nil {
		return err
	}

	if err := s.cartRepo.DeleteItem(cart.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		logger.Error("Failed to delete cart item", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return err
	}
	return nil
}

func (s *cartService) GetCartWithTotals(userID uint) (*CartView, error) {
	view := &CartView{Items: []model.CartItem{}}

	cart, err := s.cartRepo.FindOpenByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return view, nil
		}
		logger.Error("Failed to fetch open cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	items, err := s.cartRepo.FindItems(cart.ID)
	if err != nil {
		logger.Error("Failed to fetch cart items", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	view.CartID = &cart.ID
	view.Items = items
	view.TotalNaira, view.Count = cartTotals(items)
	return view, nil
}

// openCart returns the open cart, mapping "no cart" to ErrCartItemNotFound since
// every caller is addressing a line that cannot exist.
func (s *cartService) openCart(userID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.FindOpenByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return cart, nil
}

// getOrCreateOpenCart returns the user's open cart, creating it when missing. A concurrent
// creator trips the partial unique index; the loser re-reads the winner's cart.
func getOrCreateOpenCart(cartRepo repository.CartRepository, userID uint) (*model.Cart, error) {
	cart, err := cartRepo.FindOpenByUserID(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to fetch open cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	cart = &model.Cart{UserID: userID, Status: model.CartStatusOpen}
	if createErr := cartRepo.CreateCart(cart); createErr != nil {
		existing, findErr := cartRepo.FindOpenByUserID(userID)
		if findErr != nil {
			logger.Error("Failed to create open cart", createErr, map[string]interface{}{
				"user_id": userID,
			})
			return nil, createErr
		}
		logger.Debug("Open cart created concurrently, reusing it", map[string]interface{}{
			"user_id": userID,
			"cart_id": existing.ID,
		})
		return existing, nil
	}

	logger.Info("Open cart created", map[string]interface{}{
		"user_id": userID,
		"cart_id": cart.ID,
	})
	return cart, nil
}

// cartTotals returns the live total in naira and the number of units
func cartTotals(items []model.CartItem) (total int64, count int) {
	for i := range items {
		total += items[i].LineTotal()
		count += items[i].Quantity
	}
	return total, count
}
