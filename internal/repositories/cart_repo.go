package repositories

import "pluginmarket/internal/models"

// CartRepository defines the interface for cart data access. The cart row is
// mutated by two actors (the user and payment reconciliation), so mutating
// operations must be atomic at the row level.
type CartRepository interface {
	// GetByUser returns the user's cart with items and their plugins loaded.
	GetByUser(userID string) (*models.Cart, error)
	CreateForUser(userID string) (*models.Cart, error)
	GetItem(cartID, pluginID string) (*models.CartItem, error)
	AddItem(item *models.CartItem) error
	RemoveItem(cartID, pluginID string) error
	// Clear deletes all items; clearing an empty cart is a no-op.
	Clear(cartID string) error
}
