package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorInfo is a code plus a message safe to show to customers
type ErrorInfo struct {
	Code    string
	Message string
}

// Postgres SQLSTATE codes we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// ParseError converts a repository error into an ErrorInfo.
// context names the operation, e.g. "create product", and picks the fallback message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Server error"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: getNotFoundMessage(context)}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if info, ok := parseSQLState(pgErr.Code, pgErr.ConstraintName, pgErr.Message, pgErr.Detail, pgErr.ColumnName, context); ok {
			return info
		}
	}

	// lib/pq surfaces the same fields under other names
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if info, ok := parseSQLState(string(pqErr.Code), pqErr.Constraint, pqErr.Message, pqErr.Detail, pqErr.Column, context); ok {
			return info
		}
	}

	errLower := strings.ToLower(err.Error())

	// sqlite and wrapped driver errors only expose text
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}
	if strings.Contains(errLower, "foreign key constraint") {
		return parseForeignKeyError(errLower, context)
	}
	if strings.Contains(errLower, "not null constraint") || strings.Contains(errLower, "violates not-null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "Missing required fields"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "deadline exceeded") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A dependent service is unavailable, please try again",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: getDefaultErrorMessage(context)}
}

func parseSQLState(code, constraint, message, detail, column, context string) (ErrorInfo, bool) {
	switch code {
	case pgUniqueViolation:
		return parseDuplicateKeyError(constraint + " " + message), true
	case pgForeignKeyViolation:
		return parseForeignKeyError(constraint+" "+detail, context), true
	case pgNotNullViolation:
		return ErrorInfo{Code: ValidationRequired, Message: column + " is required"}, true
	case pgCheckViolation:
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid value"}, true
	}
	return ErrorInfo{}, false
}

func parseDuplicateKeyError(detail string) ErrorInfo {
	detail = strings.ToLower(detail)

	switch {
	case strings.Contains(detail, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Email already in use"}
	case strings.Contains(detail, "slug"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Category slug already exists"}
	case strings.Contains(detail, "payment_reference"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Payment reference already used"}
	case strings.Contains(detail, "admin_users"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "User is already an admin"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Record already exists"}
}

func parseForeignKeyError(detail string, context string) ErrorInfo {
	detail = strings.ToLower(detail)

	if strings.Contains(detail, "still referenced") {
		if strings.Contains(context, "product") {
			return ErrorInfo{Code: ResourceConflict, Message: "Product is referenced by existing orders"}
		}
		return ErrorInfo{Code: ResourceConflict, Message: "Record is still referenced"}
	}
	if strings.Contains(detail, "product_id") {
		return ErrorInfo{Code: ResourceNotFound, Message: "Product does not exist"}
	}
	if strings.Contains(detail, "user_id") {
		return ErrorInfo{Code: ResourceNotFound, Message: "User does not exist"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "Referenced record not found"}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "order"):
		return "Order not found"
	case strings.Contains(contextLower, "transfer"):
		return "Transfer not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	case strings.Contains(contextLower, "cart"):
		return "Cart item not found"
	}
	return "Not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Could not save, please try again"
	case strings.Contains(contextLower, "update"):
		return "Could not update, please try again"
	case strings.Contains(contextLower, "delete"):
		return "Could not delete, please try again"
	}
	return "Server error"
}

// ParseAndRespond parses err and writes it with statusCode
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
