package controllers

import (
	"net/http"

	"github.com/djsmacker01/flavour-api/config"
	"github.com/djsmacker01/flavour-api/models"
	"github.com/djsmacker01/flavour-api/services"
	"github.com/gin-gonic/gin"
)

// AddCartItemRequest is the body of POST /api/v1/cart/items
type AddCartItemRequest struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"omitempty,min=1,max=10"`
}

// UpdateCartItemRequest is the body of PUT /api/v1/cart/items/:id. A
// quantity of zero or less removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=10"`
}

// CartResponse is the cart order with its line count
type CartResponse struct {
	*models.Order
	ItemCount int `json:"item_count"`
}

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB(), services.GetPaymentService(), services.GetEventPublisher())
}

func respondCart(c *gin.Context, status int, cart *models.Order) {
	respondData(c, status, CartResponse{Order: cart, ItemCount: cart.ItemCount()})
}

// GetCart handles GET /api/v1/cart
func GetCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	cart, err := orderService().GetCart(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, "get_cart", err)
		return
	}
	respondCart(c, http.StatusOK, cart)
}

// AddCartItem handles POST /api/v1/cart/items; quantity defaults to 1
func AddCartItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := orderService().AddItem(c.Request.Context(), user.ID, req.MenuItemID, req.Quantity)
	if err != nil {
		respondServiceError(c, "add_cart_item", err)
		return
	}
	respondCart(c, http.StatusCreated, cart)
}

// UpdateCartItem handles PUT /api/v1/cart/items/:id
func UpdateCartItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := orderService().UpdateItem(c.Request.Context(), user.ID, itemID, *req.Quantity)
	if err != nil {
		respondServiceError(c, "update_cart_item", err)
		return
	}
	respondCart(c, http.StatusOK, cart)
}

// RemoveCartItem handles DELETE /api/v1/cart/items/:id
func RemoveCartItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	cart, err := orderService().RemoveItem(c.Request.Context(), user.ID, itemID)
	if err != nil {
		respondServiceError(c, "remove_cart_item", err)
		return
	}
	respondCart(c, http.StatusOK, cart)
}
