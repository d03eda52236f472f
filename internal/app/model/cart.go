package model

import (
	"time"
)

type CartStatus string

const (
	CartStatusOpen    CartStatus = "open"
	CartStatusOrdered CartStatus = "ordered"
)

// Cart is never deleted. Checkout flips it to ordered and the next AddItem opens a new one.
type Cart struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	UserID    uint       `gorm:"not null;index:idx_carts_open_user,unique,where:status = 'open'" json:"user_id"`
	Status    CartStatus `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Cart) TableName() string {
	return "carts"
}

type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal is the live line total in naira.
func (ci *CartItem) LineTotal() int64 {
	return ci.Product.PriceNaira * int64(ci.Quantity)
}
