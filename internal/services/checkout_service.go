package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"pluginmarket/internal/models"
	"pluginmarket/internal/repositories"
	"pluginmarket/pkg/gateway"
	"pluginmarket/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderEventPublisher carries order lifecycle events to back-office
// consumers. Publishing is best-effort from the workflow's point of view.
type OrderEventPublisher interface {
	PublishOrderEvent(event rabbitmq.OrderEvent) error
}

// CheckoutItem is one (plugin, price) pair in a checkout request: a
// point-in-time snapshot of what is being bought.
type CheckoutItem struct {
	PluginID string          `json:"plugin_id" validate:"required"`
	Price    decimal.Decimal `json:"price"`
}

// CheckoutResult is returned to the client after a charge is reserved.
type CheckoutResult struct {
	OrderID      string `json:"orderId"`
	ClientSecret string `json:"clientSecret"`
}

// CheckoutService is the order workflow engine. It materializes carts into
// pending orders, reserves charges with the payment gateway, and reconciles
// order state from asynchronous gateway callbacks.
type CheckoutService struct {
	orderRepo  repositories.OrderRepository
	cartRepo   repositories.CartRepository
	pluginRepo repositories.PluginRepository
	gateway    gateway.PaymentGateway
	notifier   Notifier
	events     OrderEventPublisher
	currency   string
}

// NewCheckoutService creates a new CheckoutService. notifier and events may
// be nil; both channels are advisory.
func NewCheckoutService(
	orderRepo repositories.OrderRepository,
	cartRepo repositories.CartRepository,
	pluginRepo repositories.PluginRepository,
	gw gateway.PaymentGateway,
	notifier Notifier,
	events OrderEventPublisher,
) *CheckoutService {
	return &CheckoutService{
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		pluginRepo: pluginRepo,
		gateway:    gw,
		notifier:   notifier,
		events:     events,
		currency:   "usd",
	}
}

// InitiateCheckout turns a snapshot of line items into a pending order with
// a reserved gateway charge. The total is summed in integer cents so the
// amount charged exactly equals the amount recorded. The gateway call
// happens before the transactional write: if the gateway fails, no order is
// created; if the write fails, the charge handle is an orphan the gateway
// expires on its own (it was never shown to the user).
func (s *CheckoutService) InitiateCheckout(userID string, items []CheckoutItem) (*CheckoutResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", ErrValidation)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("checkout requires at least one line item: %w", ErrValidation)
	}

	var totalCents int64
	for _, item := range items {
		if item.Price.IsNegative() {
			return nil, fmt.Errorf("plugin %s has a negative price: %w", item.PluginID, ErrValidation)
		}
		totalCents += Cents(item.Price)
	}

	key := checkoutKey(items)
	if inFlight, err := s.orderRepo.HasPendingWithKey(userID, key); err != nil {
		return nil, fmt.Errorf("failed to check in-flight checkouts: %w", err)
	} else if inFlight {
		return nil, fmt.Errorf("checkout for these items is already in flight: %w", ErrConflict)
	}

	order := &models.Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		TotalAmount: FromCents(totalCents),
		Status:      models.OrderPending,
		CheckoutKey: key,
	}

	var clientSecret string
	if totalCents > 0 {
		// Fresh idempotency key per attempt: a client retry after a timeout
		// starts a new attempt instead of replaying a stale one.
		charge, err := s.gateway.CreateCharge(totalCents, s.currency, uuid.New().String())
		if err != nil {
			return nil, fmt.Errorf("charge creation failed: %v: %w", err, ErrPaymentGateway)
		}
		order.PaymentRef = charge.Ref
		clientSecret = charge.ClientSecret
	} else {
		// Nothing to collect for an all-free line set; the order settles
		// immediately without a gateway round trip.
		order.Status = models.OrderPaid
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			PluginID: item.PluginID,
			Price:    item.Price.Round(2),
		})
	}

	if err := s.orderRepo.CreateWithItems(order, orderItems); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	s.announce(EventNewOrder, rabbitmq.OrderCreated, order)

	if order.Status == models.OrderPaid {
		// Nothing was charged, so no webhook will ever arrive for this
		// order; finish the paid side here instead.
		s.settlePaid(order)
	}

	return &CheckoutResult{
		OrderID:      order.ID,
		ClientSecret: clientSecret,
	}, nil
}

// CheckoutFromCart materializes the user's cart into a checkout, snapshotting
// each line's current catalog price.
func (s *CheckoutService) CheckoutFromCart(userID string) (*CheckoutResult, error) {
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("cart is empty: %w", ErrValidation)
	}

	items := make([]CheckoutItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		plugin := line.Plugin
		if plugin == nil {
			plugin, err = s.pluginRepo.GetByID(line.PluginID)
			if err != nil {
				return nil, fmt.Errorf("cart references plugin %s: %w", line.PluginID, ErrNotFound)
			}
		}
		items = append(items, CheckoutItem{PluginID: plugin.ID, Price: plugin.Price})
	}

	return s.InitiateCheckout(userID, items)
}

// Reconcile applies a gateway webhook event. The signature is verified
// before any parsing; an invalid signature fails closed with zero side
// effects. Only charge-succeeded events change state: the matching order
// moves pending->paid exactly once, then the user's cart is cleared
// best-effort. All other outcomes return nil so the gateway stops
// redelivering; only a database failure during the paid transition is
// surfaced for retry.
func (s *CheckoutService) Reconcile(payload []byte, sigHeader string) error {
	event, err := s.gateway.VerifyEvent(payload, sigHeader)
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrBadSignature)
	}

	if event.Type != gateway.ChargeSucceeded {
		return nil
	}

	order, err := s.orderRepo.GetByPaymentRef(event.ChargeRef)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Unknown charge reference: a stale or cross-environment charge.
			// Acknowledge so the gateway does not retry forever.
			log.Printf("Ignoring charge-succeeded event for unknown ref %s", event.ChargeRef)
			return nil
		}
		return fmt.Errorf("failed to look up order for ref %s: %w", event.ChargeRef, err)
	}

	if models.Settled(order.Status) {
		log.Printf("Order %s already %s, ignoring redelivered event", order.ID, order.Status)
		return nil
	}

	changed, err := s.orderRepo.MarkPaid(order.ID)
	if err != nil {
		// The money has moved but our record has not; fail the webhook so
		// the gateway redelivers.
		return fmt.Errorf("failed to mark order %s paid: %w", order.ID, err)
	}
	if !changed {
		// A concurrent delivery won the race.
		return nil
	}
	order.Status = models.OrderPaid

	s.settlePaid(order)
	return nil
}

// settlePaid finishes a paid order: clear the buyer's cart and emit the
// paid-side announcements. Clearing the cart is a convenience, not a
// correctness requirement; a failure here must not undo the paid transition.
func (s *CheckoutService) settlePaid(order *models.Order) {
	if cart, cartErr := s.cartRepo.GetByUser(order.UserID); cartErr != nil {
		log.Printf("Warning: could not load cart for user %s after payment: %v", order.UserID, cartErr)
	} else if clearErr := s.cartRepo.Clear(cart.ID); clearErr != nil {
		log.Printf("Warning: could not clear cart %s after payment: %v", cart.ID, clearErr)
	}

	log.Printf("Order %s paid, cart cleared for user %s", order.ID, order.UserID)
	s.announce(EventUpdateOrder, rabbitmq.OrderPaid, order)
}

// ListOrders returns a page of the user's orders with snapshotted line prices.
func (s *CheckoutService) ListOrders(userID string, limit, offset int) ([]models.Order, error) {
	return s.orderRepo.ListByUser(userID, normalizeLimit(limit), offset)
}

// ListAllOrders returns a page of orders across all users (admin view).
func (s *CheckoutService) ListAllOrders(limit, offset int) ([]models.Order, error) {
	return s.orderRepo.GetAll(normalizeLimit(limit), offset)
}

// UpdateOrderStatus applies a back-office status change: cancel a pending
// order or complete a paid one. Illegal transitions are conflicts; the paid
// transition itself belongs to Reconcile, never to this path.
func (s *CheckoutService) UpdateOrderStatus(id, status string) (*models.Order, error) {
	if status == models.OrderPaid {
		return nil, fmt.Errorf("order %s: paid is set by payment reconciliation only: %w", id, ErrValidation)
	}
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(order.Status, status) {
		return nil, fmt.Errorf("order %s cannot move %s -> %s: %w", id, order.Status, status, ErrConflict)
	}
	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return nil, fmt.Errorf("failed to update order %s status: %w", id, err)
	}
	order.Status = status
	if s.notifier != nil {
		s.notifier.Publish(EventUpdateOrder, order)
	}
	return order, nil
}

// GetOrder returns one order with its lines.
func (s *CheckoutService) GetOrder(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return order, nil
}

// announce pushes the order to connected clients and the back-office queue.
// Both are emitted best-effort after the database commit.
func (s *CheckoutService) announce(wsEvent, mqEvent string, order *models.Order) {
	if s.notifier != nil {
		s.notifier.Publish(wsEvent, order)
	}
	if s.events != nil {
		err := s.events.PublishOrderEvent(rabbitmq.OrderEvent{
			Event:       mqEvent,
			OrderID:     order.ID,
			UserID:      order.UserID,
			Status:      order.Status,
			TotalAmount: order.TotalAmount.StringFixed(2),
		})
		if err != nil {
			log.Printf("Warning: failed to publish %s for order %s: %v", mqEvent, order.ID, err)
		}
	}
}

// checkoutKey digests the ordered line set so a duplicate in-flight checkout
// for the same goods can be detected regardless of item order.
func checkoutKey(items []CheckoutItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s:%d", item.PluginID, Cents(item.Price)))
	}
	sort.Strings(lines)
	sum := sha256.Sum256([]byte(strings.Join(lines, "|")))
	return hex.EncodeToString(sum[:])
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
