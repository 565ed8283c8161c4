package repositories

import "pluginmarket/internal/models"

// PluginRepository defines the interface for catalog data access.
type PluginRepository interface {
	GetAll() ([]models.Plugin, error)
	GetByID(id string) (*models.Plugin, error)
	ListByCategory(categoryID string) ([]models.Plugin, error)
	Create(plugin *models.Plugin) error
	Update(plugin *models.Plugin) error
	Delete(id string) error
	IncrementDownloads(id string) error
	// CountOrderItems reports how many order lines reference the plugin.
	// A plugin with order history must not be deleted.
	CountOrderItems(pluginID string) (int64, error)
	// CountPaidOrders reports how many paid orders of the user contain the
	// plugin (purchase check).
	CountPaidOrders(userID, pluginID string) (int64, error)
}
