package repositories

import (
	"errors"
	"fmt"

	"pluginmarket/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetByUser returns the user's cart with items and their plugins loaded.
func (r *GORMCartRepository) GetByUser(userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items.Plugin").First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// CreateForUser creates an empty cart for the user.
func (r *GORMCartRepository) CreateForUser(userID string) (*models.Cart, error) {
	cart := &models.Cart{
		ID:     uuid.New().String(),
		UserID: userID,
	}
	if err := r.db.Create(cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart for user %s: %w", userID, err)
	}
	return cart, nil
}

// GetItem returns one cart line, if present.
func (r *GORMCartRepository) GetItem(cartID, pluginID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.First(&item, "cart_id = ? AND plugin_id = ?", cartID, pluginID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item %s/%s: %w", cartID, pluginID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return &item, nil
}

// AddItem inserts a cart line. The unique (cart_id, plugin_id) index makes a
// concurrent duplicate insert fail rather than produce two lines.
func (r *GORMCartRepository) AddItem(item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// RemoveItem deletes one cart line.
func (r *GORMCartRepository) RemoveItem(cartID, pluginID string) error {
	res := r.db.Delete(&models.CartItem{}, "cart_id = ? AND plugin_id = ?", cartID, pluginID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s/%s: %w", cartID, pluginID, ErrNotFound)
	}
	return nil
}

// Clear deletes all items of a cart. Deleting from an already-empty cart
// affects zero rows and is not an error.
func (r *GORMCartRepository) Clear(cartID string) error {
	if err := r.db.Delete(&models.CartItem{}, "cart_id = ?", cartID).Error; err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", cartID, err)
	}
	return nil
}
