package errors

// Error codes returned in ErrorResponse.Error.
// Format: CATEGORY_SPECIFIC_DETAIL. The storefront maps these codes to copy.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthMissingToken       = "AUTH_MISSING_TOKEN"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthResetTokenInvalid  = "AUTH_RESET_TOKEN_INVALID"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzUserMismatch = "AUTHZ_USER_MISMATCH"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Cart / checkout ====================
	CartEmpty            = "CART_EMPTY"
	CartItemNotFound     = "CART_ITEM_NOT_FOUND"
	CartProductNotFound  = "CART_PRODUCT_NOT_FOUND"
	CheckoutInvalidProof = "CHECKOUT_INVALID_PROOF"
	CheckoutTimeout      = "CHECKOUT_TIMEOUT"

	// ==================== Payments (PAYMENT_) ====================
	PaymentNotSuccessful  = "PAYMENT_NOT_SUCCESSFUL"
	PaymentAmountMismatch = "PAYMENT_AMOUNT_MISMATCH"
	PaymentGatewayError   = "PAYMENT_GATEWAY_ERROR"
	PaymentUnavailable    = "PAYMENT_UNAVAILABLE"

	// ==================== Bank transfers (TRANSFER_) ====================
	TransferNotFound    = "TRANSFER_NOT_FOUND"
	TransferMissingCart = "TRANSFER_MISSING_CART"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound      = "ORDER_NOT_FOUND"
	OrderInvalidStatus = "ORDER_INVALID_STATUS"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
