package repositories

import (
	"fmt"
	"sync"
	"time"

	"pluginmarket/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns a page of all orders.
func (r *MockOrderRepository) GetAll(limit, offset int) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		list = append(list, order)
	}
	return page(list, limit, offset), nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// ListByUser returns a page of one user's orders.
func (r *MockOrderRepository) ListByUser(userID string, limit, offset int) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			list = append(list, order)
		}
	}
	return page(list, limit, offset), nil
}

// GetByPaymentRef returns the order carrying the given charge reference.
func (r *MockOrderRepository) GetByPaymentRef(ref string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.PaymentRef == ref {
			o := order
			return &o, nil
		}
	}
	return nil, fmt.Errorf("order with payment ref %s: %w", ref, ErrNotFound)
}

// CreateWithItems stores the order together with its lines.
func (r *MockOrderRepository) CreateWithItems(order *models.Order, items []models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range items {
		items[i].ID = uuid.New().String()
		items[i].OrderID = order.ID
	}
	order.Items = items
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// MarkPaid flips a pending order to paid, reporting whether a row changed.
func (r *MockOrderRepository) MarkPaid(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return false, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if order.Status != models.OrderPending {
		return false, nil
	}
	order.Status = models.OrderPaid
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return true, nil
}

// UpdateStatus sets an order's status if the transition is legal.
func (r *MockOrderRepository) UpdateStatus(id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if !models.CanTransition(order.Status, status) {
		return fmt.Errorf("order %s: illegal status transition %s -> %s", id, order.Status, status)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// HasPendingWithKey reports whether a pending order with the checkout key exists.
func (r *MockOrderRepository) HasPendingWithKey(userID, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.UserID == userID && order.CheckoutKey == key && order.Status == models.OrderPending {
			return true, nil
		}
	}
	return false, nil
}

func page(list []models.Order, limit, offset int) []models.Order {
	if offset >= len(list) {
		return []models.Order{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
