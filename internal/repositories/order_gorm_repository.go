package repositories

import (
	"errors"
	"fmt"

	"pluginmarket/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetAll retrieves a page of orders across all users, newest first.
func (r *GORMOrderRepository) GetAll(limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items.Plugin").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its lines.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items.Plugin").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// ListByUser retrieves a page of one user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(userID string, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items.Plugin").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// GetByPaymentRef looks an order up by its gateway charge reference.
func (r *GORMOrderRepository) GetByPaymentRef(ref string) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, "payment_ref = ?", ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with payment ref %s: %w", ref, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by payment ref %s: %w", ref, err)
	}
	return &order, nil
}

// CreateWithItems persists the order and its lines atomically.
func (r *GORMOrderRepository) CreateWithItems(order *models.Order, items []models.OrderItem) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		for i := range items {
			items[i].ID = uuid.New().String()
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("failed to create order items: %w", err)
			}
		}
		order.Items = items
		return nil
	})
}

// MarkPaid flips a pending order to paid. The status guard in the WHERE
// clause makes redelivered events touch zero rows.
func (r *GORMOrderRepository) MarkPaid(id string) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderPending).
		Update("status", models.OrderPaid)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order %s paid: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpdateStatus sets an order's status after checking the transition is legal.
func (r *GORMOrderRepository) UpdateStatus(id, status string) error {
	order, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if !models.CanTransition(order.Status, status) {
		return fmt.Errorf("order %s: illegal status transition %s -> %s", id, order.Status, status)
	}
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, order.Status).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}

// HasPendingWithKey reports whether a pending order with the same checkout
// key already exists for the user.
func (r *GORMOrderRepository) HasPendingWithKey(userID, key string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("user_id = ? AND checkout_key = ? AND status = ?", userID, key, models.OrderPending).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check pending checkout for user %s: %w", userID, err)
	}
	return count > 0, nil
}
