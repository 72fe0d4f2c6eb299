package models

import (
	"time"
)

const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusCompleted = "completed"
)

// Reservation is a table booking. Date is stored as YYYY-MM-DD and Time as
// HH:MM, both in the restaurant's local time zone.
type Reservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID" json:"-"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	Email           string    `gorm:"size:254" json:"email"`
	Phone           string    `gorm:"size:20;not null" json:"phone"`
	Date            string    `gorm:"size:10;not null;index" json:"date"`
	Time            string    `gorm:"size:5;not null" json:"time"`
	NumberOfGuests  int       `gorm:"not null" json:"number_of_guests"`
	SpecialRequests string    `gorm:"type:text" json:"special_requests"`
	Status          string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Reservation model
func (Reservation) TableName() string {
	return "reservations"
}

// IsEditable reports whether the reservation may still be changed by its owner
func (r Reservation) IsEditable() bool {
	return r.Status != ReservationStatusCancelled && r.Status != ReservationStatusCompleted
}
