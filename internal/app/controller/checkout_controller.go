package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
	apperrors "github.com/virginiacakes/storefront-backend/internal/errors"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
)

// CheckoutController handles the bank-transfer checkout
type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

// SubmitProof places a pending order from the open cart with a transfer proof attached
// POST /api/checkout/submit-proof
func (ctrl *CheckoutController) SubmitProof(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req service.SubmitProofInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid submit-proof body", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid request body")
		return
	}

	result, err := ctrl.checkoutService.SubmitProof(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err, "submit transfer proof")
		return
	}

	log.Info("Transfer proof submitted", map[string]interface{}{
		"user_id":     userID,
		"order_id":    result.OrderID,
		"transfer_id": result.TransferID,
	})

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"order_id":    result.OrderID,
		"total_naira": result.TotalNaira,
	})
}

// GetBankDetails returns the account customers pay into
// GET /api/checkout/bank-details
func (ctrl *CheckoutController) GetBankDetails(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"bank": ctrl.checkoutService.GetBankDetails(),
	})
}
