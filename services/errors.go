package services

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound         = errors.New("user profile not found")
	ErrMenuItemNotFound     = errors.New("menu item not found or unavailable")
	ErrOrderNotFound        = errors.New("order not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrOrderNotPaid         = errors.New("order has not been paid")
	ErrReservationLocked    = errors.New("reservation can no longer be changed")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrPaymentNotConfigured = errors.New("payment processing is not configured")
	ErrPaymentNotCompleted  = errors.New("payment has not completed")
	ErrPaymentFailed        = errors.New("payment processor request failed")
	ErrPaymentInProgress    = errors.New("payment for this cart is already under way")
)

// uniqueViolationCode is the Postgres SQLSTATE for unique_violation
const uniqueViolationCode = "23505"

// IsUniqueViolation recognises duplicate-key errors from either driver,
// whether or not gorm's error translation is enabled
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
