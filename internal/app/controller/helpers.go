package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
	apperrors "github.com/virginiacakes/storefront-backend/internal/errors"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
	"github.com/virginiacakes/storefront-backend/internal/storage"
	"github.com/virginiacakes/storefront-backend/pkg/payment/paystack"
)

// errorMapping ties a service sentinel to its HTTP answer. An empty message reuses err.Error().
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var serviceErrorMappings = []errorMapping{
	{service.ErrInvalidInput, http.StatusBadRequest, apperrors.ValidationInvalidInput, ""},

	{service.ErrEmptyCart, http.StatusBadRequest, apperrors.CartEmpty, "Cart is empty"},
	{service.ErrCartAlreadyOrdered, http.StatusConflict, apperrors.ResourceConflict, "Cart has already been ordered"},
	{service.ErrCartItemNotFound, http.StatusNotFound, apperrors.CartItemNotFound, "Cart item not found"},
	{service.ErrProductNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Product not found"},
	{service.ErrProductUnavailable, http.StatusBadRequest, apperrors.CartProductNotFound, "Product is not available"},
	{service.ErrInvalidQuantity, http.StatusBadRequest, apperrors.ValidationInvalidRange, "Quantity must be greater than zero"},
	{service.ErrCategoryNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Category not found"},

	{service.ErrUserMismatch, http.StatusForbidden, apperrors.AuthzUserMismatch, "Forbidden"},
	{service.ErrInvalidProof, http.StatusBadRequest, apperrors.CheckoutInvalidProof, ""},
	{service.ErrProofTooLarge, http.StatusBadRequest, apperrors.CheckoutInvalidProof, ""},
	{service.ErrUnsupportedProofType, http.StatusBadRequest, apperrors.CheckoutInvalidProof, ""},
	{service.ErrCheckoutTimeout, http.StatusGatewayTimeout, apperrors.CheckoutTimeout, "Checkout timed out, please try again"},

	{service.ErrPaymentNotSuccessful, http.StatusBadRequest, apperrors.PaymentNotSuccessful, "Payment was not successful"},
	{service.ErrAmountMismatch, http.StatusBadRequest, apperrors.PaymentAmountMismatch, "Paid amount does not cover the order total"},
	{service.ErrPaymentUnavailable, http.StatusServiceUnavailable, apperrors.PaymentUnavailable, "Online payment is not available"},
	{paystack.ErrCircuitOpen, http.StatusServiceUnavailable, apperrors.PaymentUnavailable, ""},
	{paystack.ErrInvalidRequest, http.StatusBadGateway, apperrors.PaymentGatewayError, ""},
	{paystack.ErrUnauthorized, http.StatusBadGateway, apperrors.PaymentGatewayError, "Payment gateway rejected the request"},
	{paystack.ErrGatewayFailure, http.StatusBadGateway, apperrors.PaymentGatewayError, ""},
	{paystack.ErrNetworkError, http.StatusBadGateway, apperrors.PaymentGatewayError, ""},

	{service.ErrTransferNotFound, http.StatusNotFound, apperrors.TransferNotFound, "Transfer not found"},
	{service.ErrTransferMissingCart, http.StatusBadRequest, apperrors.TransferMissingCart, "Transfer has no cart_id"},

	{service.ErrOrderNotFound, http.StatusNotFound, apperrors.OrderNotFound, "Order not found"},
	{service.ErrInvalidOrderStatus, http.StatusBadRequest, apperrors.OrderInvalidStatus, "Invalid status"},
	{service.ErrCustomOrderNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Custom order not found"},
	{service.ErrInvalidCustomStatus, http.StatusBadRequest, apperrors.OrderInvalidStatus, "Invalid status"},
	{service.ErrInvalidDeliveryDate, http.StatusBadRequest, apperrors.ValidationInvalidFormat, ""},

	{service.ErrEmailAlreadyExists, http.StatusConflict, apperrors.AuthEmailAlreadyExists, "Email already in use"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password"},
	{service.ErrInvalidRefresh, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid refresh token"},
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "User not found"},
	{service.ErrInvalidResetToken, http.StatusBadRequest, apperrors.AuthResetTokenInvalid, "Invalid or expired reset link"},

	{storage.ErrContentTypeNotAllowed, http.StatusBadRequest, apperrors.UploadInvalidFileType, "Only JPEG, PNG, WEBP or HEIC images are allowed"},
}

// respondServiceError writes the HTTP answer for err. Unmapped errors are 500 with the
// underlying message.
func respondServiceError(c *gin.Context, err error, action string) {
	log := middleware.GetLoggerFromContext(c)

	for _, m := range serviceErrorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if message == "" {
			message = err.Error()
		}
		log.Warn("Request rejected", map[string]interface{}{
			"action": action,
			"status": m.status,
			"reason": err.Error(),
		})
		apperrors.RespondWithError(c, m.status, m.code, message)
		return
	}

	info := apperrors.ParseError(err, action)
	if info.Code == apperrors.ResourceNotFound {
		apperrors.NotFound(c, info.Code, info.Message)
		return
	}

	log.Error("Failed to "+action, err)
	apperrors.InternalError(c, err.Error())
}

// requireUserID returns the authenticated user or answers 401
func requireUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthMissingToken, "Missing bearer token")
		return 0, false
	}
	return userID, true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID parameter", map[string]interface{}{
			"param": name,
			"value": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// pagination reads ?limit= and ?offset=. Bad values fall back to 0 and the service default.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
