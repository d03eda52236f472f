package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	ImageURL     string         `json:"image_url"`
	PriceNaira   int64          `gorm:"not null" json:"price_naira"` // whole naira
	Rating       *float64       `json:"rating,omitempty"`
	Views        int64          `gorm:"not null;default:0" json:"views"`
	IsActive     bool           `gorm:"not null;index" json:"is_active"`
	IsShow       bool           `gorm:"not null" json:"is_show"` // featured on the home page
	CategorySlug string         `gorm:"type:varchar(100);index" json:"category_slug"`
	Category     string         `gorm:"type:varchar(100)" json:"category"`
	Type         string         `gorm:"type:varchar(100)" json:"type"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

type Category struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Slug     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Name     string `gorm:"not null" json:"name"`
	ImageURL string `json:"image_url"`
	Position int    `gorm:"not null;default:0" json:"position"`
}

func (Category) TableName() string {
	return "categories"
}
