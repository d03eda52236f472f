package model

import (
	"time"
)

type OrderStatus string
type PaymentMethod string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"

	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodPaystack     PaymentMethod = "paystack"
)

// OrderStatuses lists every status an admin may set.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// RevenueStatuses are the statuses counted as earned revenue.
var RevenueStatuses = []OrderStatus{
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

func (s OrderStatus) IsValid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order is immutable after creation except Status and PaidAt.
type Order struct {
	ID               uint          `gorm:"primarykey" json:"id"`
	UserID           uint          `gorm:"not null;index" json:"user_id"`
	CartID           *uint         `gorm:"index" json:"cart_id,omitempty"`
	TotalNaira       int64         `gorm:"not null" json:"total_naira"`
	Status           OrderStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentMethod    PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`
	PaymentReference *string       `gorm:"type:varchar(100);uniqueIndex" json:"payment_reference,omitempty"`
	PaidAt           *time.Time    `json:"paid_at,omitempty"`
	CreatedAt        time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem captures name and price at placement time so later catalog edits do not change history.
type OrderItem struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	OrderID        uint      `gorm:"not null;index" json:"order_id"`
	ProductID      uint      `gorm:"not null;index" json:"product_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	UnitPriceNaira int64     `gorm:"not null" json:"unit_price_naira"`
	CreatedAt      time.Time `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (oi *OrderItem) LineTotal() int64 {
	return oi.UnitPriceNaira * int64(oi.Quantity)
}
