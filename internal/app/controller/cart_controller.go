package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
	apperrors "github.com/virginiacakes/storefront-backend/internal/errors"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// UpdateCartRequest sets the line quantity; zero removes the line
type UpdateCartRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart returns the open cart with live totals
// GET /api/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetCartWithTotals(userID)
	if err != nil {
		respondServiceError(c, err, "fetch cart")
		return
	}

	log.Debug("Cart fetched", map[string]interface{}{
		"user_id": userID,
		"count":   cart.Count,
		"total":   cart.TotalNaira,
	})

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"cart_id":     cart.CartID,
		"items":       cart.Items,
		"total_naira": cart.TotalNaira,
		"count":       cart.Count,
	})
}

// AddToCart sets a product's quantity in the open cart
// POST /api/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id and quantity are required")
		return
	}

	item, err := ctrl.cartService.AddItem(userID, req.ProductID, req.Quantity)
	if err != nil {
		respondServiceError(c, err, "add item to cart")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":   true,
		"item": item,
	})
}

// UpdateCartItem changes a line quantity
// PATCH /api/cart/items/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "quantity is required")
		return
	}

	if err := ctrl.cartService.UpdateQuantity(userID, itemID, *req.Quantity); err != nil {
		respondServiceError(c, err, "update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
	})
}

// RemoveFromCart deletes a line
// DELETE /api/cart/items/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveItem(userID, itemID); err != nil {
		respondServiceError(c, err, "remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
	})
}
