package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/djsmacker01/flavour-api/config"
	"github.com/djsmacker01/flavour-api/invoice"
	"github.com/djsmacker01/flavour-api/logger"
	"github.com/djsmacker01/flavour-api/models"
	"github.com/djsmacker01/flavour-api/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const paymentMethodCard = "card"

// orderTransitions lists the staff-driven moves out of each order status
var orderTransitions = map[string][]string{
	models.OrderStatusProcessing: {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:      {models.OrderStatusCompleted, models.OrderStatusCancelled},
}

// OrderService implements the cart/order aggregate and the checkout bridge.
// A user's cart is their single order in (pending, pending) state.
type OrderService struct {
	db         *gorm.DB
	payments   PaymentProcessor
	events     EventPublisher
	currency   string
	restaurant string
	log        *logger.Logger
}

// CheckoutResult is what the client needs to complete payment
type CheckoutResult struct {
	Order           *models.Order `json:"order"`
	PaymentIntentID string        `json:"payment_intent_id"`
	ClientSecret    string        `json:"client_secret"`
	Amount          int64         `json:"amount"`
	Currency        string        `json:"currency"`
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	Status string
	Page   Page
}

// NewOrderService creates an order service. payments may be nil when no
// processor is configured.
func NewOrderService(db *gorm.DB, payments PaymentProcessor, events EventPublisher) *OrderService {
	cfg := config.GetConfig()
	if events == nil {
		events = NoopPublisher{}
	}
	currency := cfg.PaymentCurrency
	if currency == "" {
		currency = "gbp"
	}

	return &OrderService{
		db:         db,
		payments:   payments,
		events:     events,
		currency:   currency,
		restaurant: cfg.RestaurantName,
		log:        logger.Default().With("component", "orders"),
	}
}

// NewOrderNumber returns ORD- followed by 8 uppercase hex characters
func NewOrderNumber() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(hex[:8])
}

// GetOrCreateCart returns the user's open cart, creating it if needed. The
// partial unique index on orders rejects a second open cart, in which case
// the lookup is retried to pick up the row the other request created.
func (s *OrderService) GetOrCreateCart(ctx context.Context, userID uint) (*models.Order, error) {
	db := s.db.WithContext(ctx)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		var cart models.Order
		err := db.Where("user_id = ? AND status = ? AND payment_status = ?",
			userID, models.OrderStatusPending, models.PaymentStatusPending).
			First(&cart).Error
		if err == nil {
			return &cart, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up cart: %w", err)
		}

		cart = models.Order{
			OrderNumber:   NewOrderNumber(),
			UserID:        userID,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusPending,
			TotalAmount:   models.Zero,
		}
		err = db.Create(&cart).Error
		if err == nil {
			s.log.Info("cart_created", "Created cart", "order_number", cart.OrderNumber, "user_id", userID)
			return &cart, nil
		}
		if !IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to get or create cart for user %d: %w", userID, lastErr)
}

// GetCart returns the user's cart with its items loaded
func (s *OrderService) GetCart(ctx context.Context, userID uint) (*models.Order, error) {
	cart, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, cart.ID)
}

// AddItem adds quantity of a menu item to the cart. A line that already
// exists for the item has its quantity incremented, up to MaxCartQuantity.
func (s *OrderService) AddItem(ctx context.Context, userID, menuItemID uint, quantity int) (*models.Order, error) {
	if err := validation.ValidateCartQuantity(quantity); err != nil {
		return nil, err
	}

	var menuItem models.MenuItem
	err := s.db.WithContext(ctx).Where("is_available = ?", true).First(&menuItem, menuItemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load menu item: %w", err)
	}

	return s.mutateCart(ctx, userID, func(tx *gorm.DB, cart *models.Order) error {
		var item models.OrderItem
		err := tx.Where("order_id = ? AND menu_item_id = ?", cart.ID, menuItem.ID).First(&item).Error
		switch {
		case err == nil:
			if err := validation.ValidateCartQuantity(item.Quantity + quantity); err != nil {
				return err
			}
			item.Quantity += quantity
			return tx.Omit("MenuItem").Save(&item).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.OrderItem{
				OrderID:    cart.ID,
				MenuItemID: menuItem.ID,
				Quantity:   quantity,
				Price:      menuItem.Price,
			}
			return tx.Omit("MenuItem").Create(&item).Error
		default:
			return err
		}
	})
}

// UpdateItem overwrites a line's quantity; quantity <= 0 removes the line
func (s *OrderService) UpdateItem(ctx context.Context, userID, itemID uint, quantity int) (*models.Order, error) {
	return s.mutateCart(ctx, userID, func(tx *gorm.DB, cart *models.Order) error {
		item, err := findCartItem(tx, cart.ID, itemID)
		if err != nil {
			return err
		}
		if quantity <= 0 {
			return tx.Delete(item).Error
		}
		if err := validation.ValidateCartQuantity(quantity); err != nil {
			return err
		}
		item.Quantity = quantity
		return tx.Omit("MenuItem").Save(item).Error
	})
}

// RemoveItem deletes a line. The cart itself stays, possibly empty.
func (s *OrderService) RemoveItem(ctx context.Context, userID, itemID uint) (*models.Order, error) {
	return s.mutateCart(ctx, userID, func(tx *gorm.DB, cart *models.Order) error {
		item, err := findCartItem(tx, cart.ID, itemID)
		if err != nil {
			return err
		}
		return tx.Delete(item).Error
	})
}

// CalculateTotal re-derives order.TotalAmount from its current lines and
// persists it
func (s *OrderService) CalculateTotal(ctx context.Context, order *models.Order) error {
	total, err := calculateTotal(s.db.WithContext(ctx), order.ID)
	if err != nil {
		return err
	}
	order.TotalAmount = total
	return nil
}

// Checkout creates a payment intent for the cart total and attaches it to
// the cart. A retried checkout returns the intent already attached; any
// cart change detaches it first, so that intent always matches the total.
func (s *OrderService) Checkout(ctx context.Context, userID uint, instructions string) (*CheckoutResult, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if s.payments == nil {
		return nil, ErrPaymentNotConfigured
	}

	amount := cart.TotalAmount.MinorUnits()
	intent, err := s.attachedIntent(ctx, cart)
	if err != nil {
		s.log.Error("checkout_failed", "Failed to retrieve attached payment intent", err, "order_number", cart.OrderNumber)
		return nil, err
	}
	if intent == nil {
		intent, err = s.payments.CreateIntent(ctx, CreateIntentParams{
			Amount:   amount,
			Currency: s.currency,
			Metadata: map[string]string{
				"order_number": cart.OrderNumber,
				"user_id":      strconv.FormatUint(uint64(userID), 10),
			},
			IdempotencyKey: IdempotencyKey(cart.OrderNumber, amount, cart.UpdatedAt),
		})
		if err != nil {
			s.log.Error("checkout_failed", "Failed to create payment intent", err, "order_number", cart.OrderNumber)
			return nil, err
		}
	}

	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ? AND payment_status = ?", cart.ID, models.OrderStatusPending, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_intent_id":    intent.ID,
			"special_instructions": strings.TrimSpace(instructions),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to attach payment intent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrOrderNotFound
	}

	order, err := s.loadOrder(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("checkout_started", "Created payment intent", "order_number", order.OrderNumber, "payment_intent_id", intent.ID, "amount", amount)
	return &CheckoutResult{
		Order:           order,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          amount,
		Currency:        s.currency,
	}, nil
}

// attachedIntent returns the intent a previous checkout attached to the
// cart, or nil when there is none or it was cancelled
func (s *OrderService) attachedIntent(ctx context.Context, cart *models.Order) (*PaymentIntent, error) {
	if cart.PaymentIntentID == nil || *cart.PaymentIntentID == "" {
		return nil, nil
	}
	intent, err := s.payments.GetIntent(ctx, *cart.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if intent.Status == IntentStatusCanceled {
		return nil, nil
	}
	return intent, nil
}

// releaseIntent cancels the intent attached to a cart that is about to
// change. A cart whose payment has succeeded or is processing must be
// confirmed instead.
func (s *OrderService) releaseIntent(ctx context.Context, cart *models.Order) error {
	if cart.PaymentIntentID == nil || *cart.PaymentIntentID == "" || s.payments == nil {
		return nil
	}
	intentID := *cart.PaymentIntentID

	intent, err := s.payments.GetIntent(ctx, intentID)
	if err != nil {
		return err
	}
	switch intent.Status {
	case IntentStatusSucceeded, IntentStatusProcessing:
		return ErrPaymentInProgress
	case IntentStatusCanceled:
		return nil
	}

	if err := s.payments.CancelIntent(ctx, intentID); err != nil {
		s.log.Error("payment_release_failed", "Failed to cancel payment intent", err, "order_number", cart.OrderNumber)
		return err
	}
	s.log.Info("payment_released", "Cancelled payment intent for changed cart", "order_number", cart.OrderNumber, "payment_intent_id", intentID)
	return nil
}

// ConfirmPayment handles the return from the hosted checkout. The order is
// matched on (user, intent id) and only the processor's view of the intent
// decides the outcome.
func (s *OrderService) ConfirmPayment(ctx context.Context, userID uint, intentID string) (*models.Order, error) {
	if intentID == "" {
		return nil, ErrOrderNotFound
	}

	var order models.Order
	err := s.db.WithContext(ctx).Where("user_id = ? AND payment_intent_id = ?", userID, intentID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if order.IsPaid() {
		return s.loadOrder(ctx, order.ID)
	}
	if s.payments == nil {
		return nil, ErrPaymentNotConfigured
	}

	intent, err := s.payments.GetIntent(ctx, intentID)
	if err != nil {
		s.log.Error("payment_lookup_failed", "Failed to retrieve payment intent", err, "order_number", order.OrderNumber)
		return nil, err
	}

	switch intent.Status {
	case IntentStatusSucceeded:
		if intent.Amount != order.TotalAmount.MinorUnits() {
			s.log.Warn("payment_amount_mismatch", "Paid amount differs from order total",
				"order_number", order.OrderNumber, "paid", intent.Amount, "total", order.TotalAmount.MinorUnits())
		}
		return s.markPaid(ctx, &order)
	case IntentStatusCanceled:
		if err := s.db.WithContext(ctx).Model(&order).Update("payment_status", models.PaymentStatusFailed).Error; err != nil {
			return nil, fmt.Errorf("failed to record cancelled payment: %w", err)
		}
		s.log.Info("payment_cancelled", "Payment intent was cancelled", "order_number", order.OrderNumber)
		return nil, ErrPaymentNotCompleted
	default:
		return nil, ErrPaymentNotCompleted
	}
}

func (s *OrderService) markPaid(ctx context.Context, order *models.Order) (*models.Order, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", order.ID, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"status":         models.OrderStatusProcessing,
			"payment_method": paymentMethodCard,
			"paid_at":        now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", res.Error)
	}

	paid, err := s.loadOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	// a concurrent confirmation may have won; only the winner announces it
	if res.RowsAffected == 1 {
		s.log.Info("order_paid", "Payment confirmed", "order_number", paid.OrderNumber, "total", paid.TotalAmount.String())
		publishEvent(ctx, s.events, orderEvent(EventOrderPaid, paid))
	}
	return paid, nil
}

// CancelPayment handles the cancel return from the hosted checkout. The
// cart is left as it was so the customer can try again.
func (s *OrderService) CancelPayment(ctx context.Context, userID uint) (*models.Order, error) {
	return s.GetCart(ctx, userID)
}

// ListOrders returns placed orders, newest first. Customers see their own;
// staff see everyone's. Carts are never listed.
func (s *OrderService) ListOrders(ctx context.Context, user *models.User, filter OrderFilter) ([]models.Order, Pagination, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("NOT (status = ? AND payment_status = ?)", models.OrderStatusPending, models.PaymentStatusPending)
	if !user.IsStaff() {
		query = query.Where("user_id = ?", user.ID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	err := withItems(filter.Page.Paginate(query)).
		Preload("User").
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, filter.Page.Result(total), nil
}

// GetOrder returns an order visible to the user: their own, or any order
// for staff
func (s *OrderService) GetOrder(ctx context.Context, user *models.User, orderID uint) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID && !user.IsStaff() {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GenerateInvoice builds the invoice for a paid order
func (s *OrderService) GenerateInvoice(ctx context.Context, user *models.User, orderID uint) (*invoice.Document, error) {
	order, err := s.GetOrder(ctx, user, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsPaid() {
		return nil, ErrOrderNotPaid
	}

	doc := invoice.Build(*order, s.restaurant, s.currency)
	return &doc, nil
}

// UpdateStatus applies a staff transition. Cancelling refunds a paid order
// and fails an unpaid one.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if !allowed(orderTransitions, order.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, status)
	}

	updates := map[string]interface{}{"status": status}
	if status == models.OrderStatusCancelled {
		if order.IsPaid() {
			updates["payment_status"] = models.PaymentStatusRefunded
		} else {
			updates["payment_status"] = models.PaymentStatusFailed
		}
	}

	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
	}

	updated, err := s.loadOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("order_status_changed", "Order status updated", "order_number", updated.OrderNumber, "from", order.Status, "to", status)
	publishEvent(ctx, s.events, orderEvent(EventOrderStatusChanged, updated))
	return updated, nil
}

// mutateCart runs fn and the total recalculation in one transaction. The
// transaction first touches the cart row, which serialises concurrent
// mutations of the same cart and fails if it was checked out meanwhile.
// An intent attached by an earlier checkout is cancelled and detached, so a
// changed cart can only be paid through a fresh checkout.
func (s *OrderService) mutateCart(ctx context.Context, userID uint, fn func(tx *gorm.DB, cart *models.Order) error) (*models.Order, error) {
	cart, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.releaseIntent(ctx, cart); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ? AND payment_status = ?", cart.ID, models.OrderStatusPending, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"updated_at":        time.Now(),
				"payment_intent_id": nil,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to lock cart: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotFound
		}

		if err := fn(tx, cart); err != nil {
			return err
		}

		_, err := calculateTotal(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.loadOrder(ctx, cart.ID)
}

func (s *OrderService) loadOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := withItems(s.db.WithContext(ctx)).Preload("User").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

func findCartItem(tx *gorm.DB, orderID, itemID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	err := tx.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}
	return &item, nil
}

// calculateTotal sums the stored line subtotals and writes the result to
// orders.total_amount
func calculateTotal(db *gorm.DB, orderID uint) (models.Money, error) {
	var items []models.OrderItem
	if err := db.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return models.Zero, fmt.Errorf("failed to load order items: %w", err)
	}

	total := models.Zero
	for _, item := range items {
		total = total.Plus(item.Subtotal)
	}

	if err := db.Model(&models.Order{}).Where("id = ?", orderID).Update("total_amount", total).Error; err != nil {
		return models.Zero, fmt.Errorf("failed to update order total: %w", err)
	}
	return total, nil
}

// withItems preloads line items in insertion order, including menu items
// that have since been soft-deleted
func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.MenuItem", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func orderEvent(eventType string, order *models.Order) Event {
	return Event{
		Type:          eventType,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount.String(),
	}
}

func allowed(transitions map[string][]string, from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
