package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/djsmacker01/flavour-api/logger"
	"github.com/djsmacker01/flavour-api/middleware"
	"github.com/djsmacker01/flavour-api/models"
	"github.com/djsmacker01/flavour-api/services"
	"github.com/djsmacker01/flavour-api/utils"
	"github.com/djsmacker01/flavour-api/validation"
	"github.com/gin-gonic/gin"
)

// errorMapping ties a service error to its HTTP status and error code
type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var serviceErrors = []errorMapping{
	{services.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first."},
	{services.ErrMenuItemNotFound, http.StatusNotFound, "MENU_ITEM_NOT_FOUND", "Menu item not found"},
	{services.ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found"},
	{services.ErrCartItemNotFound, http.StatusNotFound, "CART_ITEM_NOT_FOUND", "Cart item not found"},
	{services.ErrReservationNotFound, http.StatusNotFound, "RESERVATION_NOT_FOUND", "Reservation not found"},
	{services.ErrEmptyCart, http.StatusConflict, "EMPTY_CART", "Your cart is empty"},
	{services.ErrOrderNotPaid, http.StatusConflict, "ORDER_NOT_PAID", "Invoices are only available for paid orders"},
	{services.ErrReservationLocked, http.StatusConflict, "RESERVATION_LOCKED", "This reservation can no longer be changed"},
	{services.ErrInvalidTransition, http.StatusConflict, "INVALID_STATUS_TRANSITION", "That status change is not allowed"},
	{services.ErrPaymentInProgress, http.StatusConflict, "PAYMENT_IN_PROGRESS", "Payment for this cart is under way. Confirm it before changing the cart."},
	{services.ErrPaymentNotCompleted, http.StatusPaymentRequired, "PAYMENT_NOT_COMPLETED", "Payment has not been completed"},
	{services.ErrPaymentFailed, http.StatusBadGateway, "PAYMENT_ERROR", "The payment processor could not be reached"},
	{services.ErrPaymentNotConfigured, http.StatusServiceUnavailable, "PAYMENT_NOT_CONFIGURED", "Payment processing is not configured"},
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidation(c *gin.Context, errs validation.Errors) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": errs,
		},
	})
}

// respondServiceError maps a service error onto the JSON error envelope.
// Unrecognised errors are logged and reported as 500.
func respondServiceError(c *gin.Context, action string, err error) {
	var errs validation.Errors
	if errors.As(err, &errs) {
		respondValidation(c, errs)
		return
	}

	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			respondError(c, m.status, m.code, m.message)
			return
		}
	}

	_ = c.Error(err)
	logger.Default().Error(action, "Unhandled service error", err, "path", c.Request.URL.Path)
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondPage(c *gin.Context, data interface{}, pagination services.Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"pagination": pagination,
	})
}

// currentUser returns the profile loaded by middleware.RequireUser,
// answering 401 itself when it is missing
func currentUser(c *gin.Context) (*models.User, bool) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}
	return user, true
}

// pathID parses a positive integer path parameter, answering 400 otherwise
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// pageFromQuery reads ?page= and ?limit=; bad values fall back to defaults
func pageFromQuery(c *gin.Context) services.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageLimit)))
	return services.NewPage(page, limit)
}

// bindJSON binds the request body, answering 400 with per-field details on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidation(c, validation.FieldErrors(err))
		return false
	}
	return true
}
