package repositories

import (
	"errors"
	"fmt"

	"pluginmarket/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPluginRepository is a GORM implementation of PluginRepository.
type GORMPluginRepository struct {
	db *gorm.DB
}

// NewGORMPluginRepository creates a new instance of GORMPluginRepository.
func NewGORMPluginRepository(db *gorm.DB) *GORMPluginRepository {
	return &GORMPluginRepository{db: db}
}

// GetAll retrieves all plugins from the catalog.
func (r *GORMPluginRepository) GetAll() ([]models.Plugin, error) {
	var plugins []models.Plugin
	if err := r.db.Find(&plugins).Error; err != nil {
		return nil, fmt.Errorf("failed to get all plugins: %w", err)
	}
	return plugins, nil
}

// GetByID retrieves a single plugin by its ID.
func (r *GORMPluginRepository) GetByID(id string) (*models.Plugin, error) {
	var plugin models.Plugin
	if err := r.db.First(&plugin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("plugin %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plugin by ID %s: %w", id, err)
	}
	return &plugin, nil
}

// ListByCategory retrieves all plugins belonging to a category.
func (r *GORMPluginRepository) ListByCategory(categoryID string) ([]models.Plugin, error) {
	var plugins []models.Plugin
	if err := r.db.Find(&plugins, "category_id = ?", categoryID).Error; err != nil {
		return nil, fmt.Errorf("failed to list plugins for category %s: %w", categoryID, err)
	}
	return plugins, nil
}

// Create creates a new plugin listing.
func (r *GORMPluginRepository) Create(plugin *models.Plugin) error {
	if plugin.ID == "" {
		plugin.ID = uuid.New().String()
	}
	if err := r.db.Create(plugin).Error; err != nil {
		return fmt.Errorf("failed to create plugin: %w", err)
	}
	return nil
}

// Update saves all fields of an existing plugin.
func (r *GORMPluginRepository) Update(plugin *models.Plugin) error {
	res := r.db.Save(plugin)
	if res.Error != nil {
		return fmt.Errorf("failed to update plugin: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("plugin %s: %w", plugin.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a plugin by its ID.
func (r *GORMPluginRepository) Delete(id string) error {
	res := r.db.Delete(&models.Plugin{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete plugin: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("plugin %s: %w", id, ErrNotFound)
	}
	return nil
}

// IncrementDownloads bumps the download counter atomically.
func (r *GORMPluginRepository) IncrementDownloads(id string) error {
	res := r.db.Model(&models.Plugin{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment downloads for plugin %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("plugin %s: %w", id, ErrNotFound)
	}
	return nil
}

// CountOrderItems reports how many order lines reference the plugin.
func (r *GORMPluginRepository) CountOrderItems(pluginID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.OrderItem{}).
		Where("plugin_id = ?", pluginID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count order items for plugin %s: %w", pluginID, err)
	}
	return count, nil
}

// CountPaidOrders reports how many paid orders of the user contain the plugin.
func (r *GORMPluginRepository) CountPaidOrders(userID, pluginID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.plugin_id = ?",
			userID, models.OrderPaid, pluginID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count paid orders for plugin %s: %w", pluginID, err)
	}
	return count, nil
}
