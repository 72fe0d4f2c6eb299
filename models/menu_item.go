package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CategoryAppetizer = "appetizer"
	CategoryMain      = "main"
	CategoryDessert   = "dessert"
	CategoryDrink     = "drink"
)

// Categories lists the menu categories in display order
var Categories = []string{CategoryAppetizer, CategoryMain, CategoryDessert, CategoryDrink}

var categoryLabels = map[string]string{
	CategoryAppetizer: "Appetizer",
	CategoryMain:      "Main Course",
	CategoryDessert:   "Dessert",
	CategoryDrink:     "Drink",
}

// IsValidCategory reports whether c is one of the menu categories
func IsValidCategory(c string) bool {
	_, ok := categoryLabels[c]
	return ok
}

// CategoryLabel returns the human-readable name of a category
func CategoryLabel(c string) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return c
}

// MenuItem is a dish or drink offered by the restaurant.
// Price positivity is checked by request validation, not by the table.
type MenuItem struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       Money          `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string         `gorm:"size:20;not null;default:'main';index" json:"category"`
	ImageS3Key  *string        `json:"image_s3_key"`                      // nullable, S3 key for uploaded image
	ImageURL    *string        `gorm:"-" json:"image_url,omitempty"`      // computed field, presigned URL for image
	IsAvailable bool           `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the MenuItem model
func (MenuItem) TableName() string {
	return "menu_items"
}
