package model

import (
	"time"
)

type TransferStatus string

const (
	TransferStatusPending  TransferStatus = "pending"
	TransferStatusVerified TransferStatus = "verified"
)

// Proof size cap and accepted image types for transfer receipts.
const (
	MaxProofBytes    = 5 * 1024 * 1024
	DefaultProofMime = "image/jpeg"
)

var AllowedProofMimes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

type BankTransfer struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	UserID            uint           `gorm:"not null;index" json:"user_id"`
	CartID            *uint          `gorm:"index" json:"cart_id,omitempty"`
	OrderID           *uint          `gorm:"index" json:"order_id,omitempty"`
	AmountNaira       int64          `gorm:"not null" json:"amount_naira"`
	PayerName         string         `gorm:"not null" json:"payer_name"`
	Phone             string         `gorm:"not null" json:"phone"`
	TransferReference string         `json:"transfer_reference,omitempty"`
	PaidAt            *time.Time     `json:"paid_at,omitempty"`
	ProofBase64       string         `gorm:"type:text" json:"proof_base64,omitempty"`
	ProofMime         string         `gorm:"type:varchar(50);default:'image/jpeg'" json:"proof_mime"`
	ProofSize         int64          `json:"proof_size"`
	Status            TransferStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	VerifiedAt        *time.Time     `json:"verified_at,omitempty"`
	VerifiedBy        *uint          `json:"verified_by,omitempty"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

func (BankTransfer) TableName() string {
	return "bank_transfers"
}
