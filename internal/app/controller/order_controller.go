package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// GetOrders returns the signed-in user's orders, newest first
// GET /api/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		respondServiceError(c, err, "fetch orders")
		return
	}

	log.Debug("Orders fetched", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"data": orders,
	})
}

// GetOrderByID returns one order of the signed-in user
// GET /api/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, orderID)
	if err != nil {
		respondServiceError(c, err, "fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"order": order,
	})
}
