package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
	}{
		{"nil error", nil, "", InternalServerError},
		{"record not found", gorm.ErrRecordNotFound, "find product", ResourceNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), "find order", ResourceNotFound},
		{"pg duplicate email", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}, "create user", AuthEmailAlreadyExists},
		{"pg foreign key product", &pgconn.PgError{Code: "23503", ConstraintName: "fk_order_items_product", Detail: "Key (product_id)=(9) is not present"}, "create order", ResourceNotFound},
		{"pg not null", &pgconn.PgError{Code: "23502", ColumnName: "name"}, "create product", ValidationRequired},
		{"pq duplicate reference", &pq.Error{Code: "23505", Constraint: "idx_orders_payment_reference"}, "verify payment", ResourceAlreadyExists},
		{"pq check", fmt.Errorf("insert: %w", &pq.Error{Code: "23514"}), "create product", ValidationInvalidInput},
		{"sqlite unique", fmt.Errorf("UNIQUE constraint failed: categories.slug"), "create category", ResourceAlreadyExists},
		{"network", fmt.Errorf("dial tcp: connection refused"), "", InternalExternalAPI},
		{"unknown", fmt.Errorf("something odd"), "update product", InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestParseError_NotFoundMessages(t *testing.T) {
	assert.Equal(t, "Product not found", ParseError(gorm.ErrRecordNotFound, "get product").Message)
	assert.Equal(t, "Transfer not found", ParseError(gorm.ErrRecordNotFound, "confirm transfer").Message)
	assert.Equal(t, "Not found", ParseError(gorm.ErrRecordNotFound, "").Message)
}
