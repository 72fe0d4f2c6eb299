package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/djsmacker01/flavour-api/invoice"
	"github.com/djsmacker01/flavour-api/models"
	"github.com/djsmacker01/flavour-api/services"
	"github.com/djsmacker01/flavour-api/validation"
	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest is the body of PATCH /api/v1/orders/:id/status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ready completed cancelled"`
}

var orderStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusProcessing: true,
	models.OrderStatusReady:      true,
	models.OrderStatusCompleted:  true,
	models.OrderStatusCancelled:  true,
}

// ListOrders handles GET /api/v1/orders - the caller's placed orders, newest
// first. Staff see every customer's orders and may filter by ?status=.
func ListOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	status := c.Query("status")
	if status != "" && !orderStatuses[status] {
		respondValidation(c, validation.Errors{"status": "Unknown order status."})
		return
	}

	orders, pagination, err := orderService().ListOrders(c.Request.Context(), user, services.OrderFilter{
		Status: status,
		Page:   pageFromQuery(c),
	})
	if err != nil {
		respondServiceError(c, "list_orders", err)
		return
	}

	respondPage(c, orders, pagination)
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := orderService().GetOrder(c.Request.Context(), user, id)
	if err != nil {
		respondServiceError(c, "get_order", err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// DownloadInvoice handles GET /api/v1/orders/:id/invoice - a PDF attachment
// for a paid order
func DownloadInvoice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	doc, err := orderService().GenerateInvoice(c.Request.Context(), user, id)
	if err != nil {
		respondServiceError(c, "generate_invoice", err)
		return
	}

	var buf bytes.Buffer
	if err := invoice.RenderPDF(*doc, &buf); err != nil {
		respondServiceError(c, "render_invoice", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, invoice.FileName(doc.OrderNumber)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status (staff only)
func UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := orderService().UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, "update_order_status", err)
		return
	}

	respondData(c, http.StatusOK, order)
}
