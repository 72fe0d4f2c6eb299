// Package invoice projects a paid order into a fixed-layout document.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/djsmacker01/flavour-api/models"
)

const dateLayout = "02 January 2006"

// Line is one row of the item table
type Line struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// Document holds everything printed on an invoice, already formatted
type Document struct {
	Restaurant          string    `json:"restaurant"`
	OrderNumber         string    `json:"order_number"`
	OrderDate           string    `json:"order_date"`
	PaidDate            string    `json:"paid_date"`
	IssuedAt            time.Time `json:"issued_at"`
	CustomerName        string    `json:"customer_name"`
	CustomerEmail       string    `json:"customer_email"`
	OrderStatus         string    `json:"order_status"`
	Lines               []Line    `json:"lines"`
	Total               string    `json:"total"`
	PaymentStatus       string    `json:"payment_status"`
	PaymentMethod       string    `json:"payment_method"`
	SpecialInstructions string    `json:"special_instructions,omitempty"`
}

// Build projects the persisted order. The total is the stored
// total_amount; line subtotals are the stored snapshots.
func Build(order models.Order, restaurant, currency string) Document {
	symbol := currencySymbol(currency)

	doc := Document{
		Restaurant:          restaurant,
		OrderNumber:         order.OrderNumber,
		OrderDate:           order.CreatedAt.Format(dateLayout),
		IssuedAt:            order.CreatedAt,
		OrderStatus:         titleCase(order.Status),
		Total:               symbol + order.TotalAmount.String(),
		PaymentStatus:       titleCase(order.PaymentStatus),
		PaymentMethod:       order.PaymentMethod,
		SpecialInstructions: strings.TrimSpace(order.SpecialInstructions),
		Lines:               make([]Line, 0, len(order.Items)),
	}

	if order.PaidAt != nil {
		doc.PaidDate = order.PaidAt.Format(dateLayout)
		doc.IssuedAt = *order.PaidAt
	}
	if doc.PaymentMethod == "" {
		doc.PaymentMethod = "Card"
	}
	if order.User != nil {
		doc.CustomerName = order.User.Name
		doc.CustomerEmail = order.User.Email
	}

	for _, item := range order.Items {
		doc.Lines = append(doc.Lines, Line{
			Name:      item.MenuItem.Name,
			Category:  models.CategoryLabel(item.MenuItem.Category),
			Quantity:  item.Quantity,
			UnitPrice: symbol + item.Price.String(),
			Subtotal:  symbol + item.Subtotal.String(),
		})
	}

	return doc
}

// FileName is the download name for an order's invoice
func FileName(orderNumber string) string {
	return fmt.Sprintf("Invoice_%s.pdf", orderNumber)
}

func currencySymbol(currency string) string {
	switch strings.ToLower(currency) {
	case "gbp", "":
		return "£"
	case "eur":
		return "€"
	case "usd":
		return "$"
	default:
		return strings.ToUpper(currency) + " "
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
