package controllers

import (
	"net/http"

	"github.com/djsmacker01/flavour-api/config"
	"github.com/gin-gonic/gin"
)

// CheckoutRequest is the optional body of POST /api/v1/checkout
type CheckoutRequest struct {
	SpecialInstructions string `json:"special_instructions" binding:"max=1000"`
}

// Checkout handles POST /api/v1/checkout - creates a payment intent for
// the cart. The client completes payment with the returned client secret.
func Checkout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	result, err := orderService().Checkout(c.Request.Context(), user.ID, req.SpecialInstructions)
	if err != nil {
		respondServiceError(c, "checkout", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"order":             result.Order,
		"payment_intent_id": result.PaymentIntentID,
		"client_secret":     result.ClientSecret,
		"amount":            result.Amount,
		"currency":          result.Currency,
		"publishable_key":   config.GetConfig().StripePublishableKey,
	})
}

// PaymentSuccess handles GET /api/v1/payment/success?payment_intent=...
// The order is only marked paid if the processor reports success.
func PaymentSuccess(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	intentID := c.Query("payment_intent")
	if intentID == "" {
		respondError(c, http.StatusBadRequest, "MISSING_PAYMENT_INTENT", "The payment_intent query parameter is required")
		return
	}

	order, err := orderService().ConfirmPayment(c.Request.Context(), user.ID, intentID)
	if err != nil {
		respondServiceError(c, "confirm_payment", err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// PaymentCancel handles GET /api/v1/payment/cancel. The cart is kept so the
// customer can try again.
func PaymentCancel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	cart, err := orderService().CancelPayment(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, "cancel_payment", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment was cancelled. Your cart has been kept.",
		"data":    CartResponse{Order: cart, ItemCount: cart.ItemCount()},
	})
}
