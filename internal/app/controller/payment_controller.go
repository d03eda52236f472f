package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
	apperrors "github.com/virginiacakes/storefront-backend/internal/errors"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
)

// PaymentController handles the Paystack hosted checkout
type PaymentController struct {
	paymentService service.PaymentService
}

func NewPaymentController(paymentService service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// InitializePayment opens a Paystack session for the cart total
// POST /api/paystack/initialize
func (ctrl *PaymentController) InitializePayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req service.InitializePaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid initialize body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid request body")
		return
	}
	// the account email is the receipt address unless the storefront sends another
	if strings.TrimSpace(req.Email) == "" {
		req.Email, _ = middleware.GetUserEmail(c)
	}

	session, err := ctrl.paymentService.InitializePayment(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err, "initialize payment")
		return
	}

	log.Info("Payment initialized", map[string]interface{}{
		"user_id":   userID,
		"reference": session.Reference,
		"amount":    session.AmountNaira,
	})

	c.JSON(http.StatusOK, gin.H{
		"ok":                true,
		"authorization_url": session.AuthorizationURL,
		"access_code":       session.AccessCode,
		"reference":         session.Reference,
		"amount_naira":      session.AmountNaira,
	})
}

// VerifyPayment finalizes the order after the customer returns from Paystack
// GET /api/paystack/verify?reference=
func (ctrl *PaymentController) VerifyPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	reference := strings.TrimSpace(c.Query("reference"))
	if reference == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "reference is required")
		return
	}

	order, err := ctrl.paymentService.VerifyPayment(c.Request.Context(), userID, reference)
	if err != nil {
		respondServiceError(c, err, "verify payment")
		return
	}

	log.Info("Payment verified", map[string]interface{}{
		"user_id":   userID,
		"order_id":  order.ID,
		"reference": reference,
	})

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"order_id":    order.ID,
		"status":      order.Status,
		"total_naira": order.TotalNaira,
	})
}
