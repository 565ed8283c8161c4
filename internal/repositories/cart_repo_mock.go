package repositories

import (
	"fmt"
	"sync"

	"pluginmarket/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string]models.Cart // keyed by cart ID
	items map[string][]models.CartItem
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
		items: make(map[string][]models.CartItem),
	}
}

// GetByUser returns the user's cart with its items.
func (r *MockCartRepository) GetByUser(userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cart := range r.carts {
		if cart.UserID == userID {
			c := cart
			c.Items = append([]models.CartItem(nil), r.items[c.ID]...)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
}

// CreateForUser creates an empty cart for the user.
func (r *MockCartRepository) CreateForUser(userID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := models.Cart{
		ID:     uuid.New().String(),
		UserID: userID,
	}
	r.carts[cart.ID] = cart
	return &cart, nil
}

// GetItem returns one cart line, if present.
func (r *MockCartRepository) GetItem(cartID, pluginID string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items[cartID] {
		if item.PluginID == pluginID {
			i := item
			return &i, nil
		}
	}
	return nil, fmt.Errorf("cart item %s/%s: %w", cartID, pluginID, ErrNotFound)
}

// AddItem inserts a cart line.
func (r *MockCartRepository) AddItem(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	r.items[item.CartID] = append(r.items[item.CartID], *item)
	return nil
}

// RemoveItem deletes one cart line.
func (r *MockCartRepository) RemoveItem(cartID, pluginID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.items[cartID]
	for i, item := range items {
		if item.PluginID == pluginID {
			r.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("cart item %s/%s: %w", cartID, pluginID, ErrNotFound)
}

// Clear deletes all items of a cart; clearing an empty cart is a no-op.
func (r *MockCartRepository) Clear(cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, cartID)
	return nil
}
