package repositories

import "pluginmarket/internal/models"

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll(limit, offset int) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	ListByUser(userID string, limit, offset int) ([]models.Order, error)
	// GetByPaymentRef looks an order up by its gateway charge reference.
	GetByPaymentRef(ref string) (*models.Order, error)
	// CreateWithItems persists the order and its lines in one transaction;
	// if either write fails, neither persists.
	CreateWithItems(order *models.Order, items []models.OrderItem) error
	// MarkPaid moves a pending order to paid. It reports whether a row
	// actually changed, so redelivered gateway events observe a no-op.
	MarkPaid(id string) (bool, error)
	UpdateStatus(id, status string) error
	// HasPendingWithKey reports whether the user already has a pending order
	// with the given checkout key (duplicate in-flight checkout guard).
	HasPendingWithKey(userID, key string) (bool, error)
}
