package models

import (
	"time"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusReady      = "ready"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Order is a customer's order. While it is (pending, pending) it serves as
// the user's cart; the partial unique index keeps that to one row per user.
type Order struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	OrderNumber         string      `gorm:"size:32;uniqueIndex;not null" json:"order_number"`
	UserID              uint        `gorm:"not null;index;uniqueIndex:idx_orders_open_cart,where:status = 'pending' AND payment_status = 'pending'" json:"user_id"`
	User                *User       `gorm:"foreignKey:UserID" json:"customer,omitempty"`
	Status              string      `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaymentStatus       string      `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	PaymentIntentID     *string     `gorm:"size:255;index" json:"payment_intent_id"` // nullable, set at checkout
	PaymentMethod       string      `gorm:"size:50" json:"payment_method"`
	TotalAmount         Money       `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	SpecialInstructions string      `gorm:"type:text" json:"special_instructions"`
	PaidAt              *time.Time  `json:"paid_at"`
	Items               []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsCart reports whether the order is still the user's open cart
func (o Order) IsCart() bool {
	return o.Status == OrderStatusPending && o.PaymentStatus == PaymentStatusPending
}

// IsPaid reports whether payment has been confirmed
func (o Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// ItemCount returns the number of line items currently loaded
func (o Order) ItemCount() int {
	return len(o.Items)
}
