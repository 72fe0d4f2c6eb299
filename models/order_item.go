package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem is a line item. Price is a snapshot of the menu price taken
// when the item was added; Subtotal is recomputed on every save.
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;uniqueIndex:idx_order_items_order_menu_item" json:"order_id"`
	MenuItemID uint      `gorm:"not null;index;uniqueIndex:idx_order_items_order_menu_item" json:"menu_item_id"`
	MenuItem   MenuItem  `gorm:"foreignKey:MenuItemID" json:"menu_item"`
	Quantity   int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price      Money     `gorm:"type:decimal(10,2);not null" json:"price"`
	Subtotal   Money     `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// BeforeSave keeps Subtotal equal to Price × Quantity
func (i *OrderItem) BeforeSave(tx *gorm.DB) error {
	i.Subtotal = i.Price.Times(i.Quantity)
	return nil
}
