package controllers

import (
	"github.com/djsmacker01/flavour-api/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every API route on v1. auth validates the bearer
// token and sets the caller's identity; it is replaced by a stub in tests.
func RegisterRoutes(v1 gin.IRouter, auth gin.HandlerFunc) {
	// Public catalog
	v1.GET("/menu", ListMenuItems)
	v1.GET("/menu/:id", GetMenuItem)

	// Profile creation only needs a valid token; everything else needs a profile
	v1.POST("/users", auth, CreateUser)

	authed := v1.Group("", auth, middleware.RequireUser())
	{
		authed.GET("/users/me", GetMyProfile)
		authed.PUT("/users/me", UpdateMyProfile)

		authed.GET("/cart", GetCart)
		authed.POST("/cart/items", AddCartItem)
		authed.PUT("/cart/items/:id", UpdateCartItem)
		authed.DELETE("/cart/items/:id", RemoveCartItem)

		authed.POST("/checkout", Checkout)
		authed.GET("/payment/success", PaymentSuccess)
		authed.GET("/payment/cancel", PaymentCancel)

		authed.GET("/orders", ListOrders)
		authed.GET("/orders/:id", GetOrder)
		authed.GET("/orders/:id/invoice", DownloadInvoice)

		authed.GET("/reservations", ListReservations)
		authed.POST("/reservations", CreateReservation)
		authed.GET("/reservations/:id", GetReservation)
		authed.PUT("/reservations/:id", UpdateReservation)
		authed.DELETE("/reservations/:id", CancelReservation)
	}

	staff := v1.Group("", auth, middleware.RequireUser(), middleware.RequireStaff())
	{
		staff.POST("/menu", CreateMenuItem)
		staff.PUT("/menu/:id", UpdateMenuItem)
		staff.DELETE("/menu/:id", DeleteMenuItem)
		staff.POST("/menu/:id/image", UploadMenuItemImage)

		staff.PATCH("/orders/:id/status", UpdateOrderStatus)
		staff.PATCH("/reservations/:id/status", UpdateReservationStatus)
	}
}
