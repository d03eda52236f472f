package model

import (
	"time"

	"github.com/lib/pq"
)

type CustomOrderStatus string

const (
	CustomOrderSubmitted CustomOrderStatus = "submitted"
	CustomOrderQuoted    CustomOrderStatus = "quoted"
	CustomOrderAccepted  CustomOrderStatus = "accepted"
	CustomOrderDeclined  CustomOrderStatus = "declined"
)

const MaxCustomOrderImages = 6

func (s CustomOrderStatus) IsValid() bool {
	switch s {
	case CustomOrderSubmitted, CustomOrderQuoted, CustomOrderAccepted, CustomOrderDeclined:
		return true
	}
	return false
}

// CustomOrder is a bespoke cake request. It is quoted by hand and never
// passes through the cart.
type CustomOrder struct {
	ID              uint              `gorm:"primarykey" json:"id"`
	UserID          uint              `gorm:"not null;index" json:"user_id"`
	CakeType        string            `gorm:"not null" json:"cake_type"`
	Shape           string            `gorm:"not null" json:"shape"`
	Tiers           int               `gorm:"not null" json:"tiers"`
	Servings        int               `gorm:"not null" json:"servings"`
	Size            string            `json:"size"`
	Flavor          string            `json:"flavor"`
	Filling         string            `json:"filling"`
	Frosting        string            `json:"frosting"`
	Colors          pq.StringArray    `gorm:"type:text" json:"colors"`
	Dietary         pq.StringArray    `gorm:"type:text" json:"dietary"`
	MessageOnCake   string            `json:"message_on_cake"`
	DeliveryDate    string            `gorm:"type:varchar(10)" json:"delivery_date"` // YYYY-MM-DD
	DeliveryTime    string            `gorm:"type:varchar(20)" json:"delivery_time"`
	DeliveryAddress string            `gorm:"type:text" json:"delivery_address"`
	BudgetNaira     *int64            `json:"budget_naira,omitempty"`
	Notes           string            `gorm:"type:text" json:"notes"`
	IsPublic        bool              `gorm:"index" json:"is_public"`
	Status          CustomOrderStatus `gorm:"type:varchar(20);not null;default:'submitted'" json:"status"`
	CreatedAt       time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	Images []CustomOrderImage `gorm:"foreignKey:CustomOrderID;constraint:OnDelete:CASCADE" json:"images"`
}

func (CustomOrder) TableName() string {
	return "custom_orders"
}

type CustomOrderImage struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CustomOrderID uint      `gorm:"not null;index" json:"custom_order_id"`
	URL           string    `gorm:"not null" json:"url"`
	CreatedAt     time.Time `json:"created_at"`
}

func (CustomOrderImage) TableName() string {
	return "custom_order_images"
}
