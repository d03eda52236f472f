package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
	apperrors "github.com/virginiacakes/storefront-backend/internal/errors"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
)

// CustomOrderController handles bespoke cake requests
type CustomOrderController struct {
	customOrderService service.CustomOrderService
	isAdmin            func(c *gin.Context) bool
}

// NewCustomOrderController builds the controller. isAdmin reports whether the caller may see
// private requests of other users; nil means nobody can.
func NewCustomOrderController(customOrderService service.CustomOrderService, isAdmin func(c *gin.Context) bool) *CustomOrderController {
	if isAdmin == nil {
		isAdmin = func(*gin.Context) bool { return false }
	}
	return &CustomOrderController{
		customOrderService: customOrderService,
		isAdmin:            isAdmin,
	}
}

// Submit creates a custom cake request
// POST /api/custom-orders
func (ctrl *CustomOrderController) Submit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req service.CustomOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid custom order body", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid request body")
		return
	}

	order, err := ctrl.customOrderService.Submit(userID, req)
	if err != nil {
		respondServiceError(c, err, "submit custom order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":    true,
		"order": order,
	})
}

// ListMine returns the caller's requests
// GET /api/custom-orders/mine
func (ctrl *CustomOrderController) ListMine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orders, err := ctrl.customOrderService.ListMine(userID)
	if err != nil {
		respondServiceError(c, err, "fetch custom orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"data": orders,
	})
}

// ListPublic returns the gallery of shared requests
// GET /api/custom-orders/public
func (ctrl *CustomOrderController) ListPublic(c *gin.Context) {
	orders, err := ctrl.customOrderService.ListPublic()
	if err != nil {
		respondServiceError(c, err, "fetch custom orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"data": orders,
	})
}

// Get returns one request if the caller may see it
// GET /api/custom-orders/:id
func (ctrl *CustomOrderController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	viewerID, _ := middleware.GetUserID(c)

	order, err := ctrl.customOrderService.Get(id, viewerID, ctrl.isAdmin(c))
	if err != nil {
		respondServiceError(c, err, "fetch custom order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"order": order,
	})
}
