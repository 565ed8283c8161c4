package services

import (
	"errors"
	"fmt"

	"pluginmarket/internal/models"
	"pluginmarket/internal/repositories"
)

// CatalogService handles business logic for plugin listings and categories.
type CatalogService struct {
	pluginRepo   repositories.PluginRepository
	categoryRepo repositories.CategoryRepository
	notifier     Notifier
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(pluginRepo repositories.PluginRepository, categoryRepo repositories.CategoryRepository, notifier Notifier) *CatalogService {
	return &CatalogService{
		pluginRepo:   pluginRepo,
		categoryRepo: categoryRepo,
		notifier:     notifier,
	}
}

// GetAllPlugins retrieves all plugins.
func (s *CatalogService) GetAllPlugins() ([]models.Plugin, error) {
	return s.pluginRepo.GetAll()
}

// GetPluginByID retrieves a single plugin by its ID.
func (s *CatalogService) GetPluginByID(id string) (*models.Plugin, error) {
	plugin, err := s.pluginRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("plugin %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return plugin, nil
}

// GetPluginsByCategory retrieves all plugins in a category.
func (s *CatalogService) GetPluginsByCategory(categoryID string) ([]models.Plugin, error) {
	return s.pluginRepo.ListByCategory(categoryID)
}

// CreatePlugin creates a new plugin listing.
func (s *CatalogService) CreatePlugin(plugin *models.Plugin) error {
	if plugin.Price.IsNegative() {
		return fmt.Errorf("plugin price must not be negative: %w", ErrValidation)
	}
	if plugin.Status == "" {
		plugin.Status = models.PluginPending
	}
	if err := s.pluginRepo.Create(plugin); err != nil {
		return fmt.Errorf("failed to create plugin: %w", err)
	}
	if s.notifier != nil {
		s.notifier.Publish(EventNewPlugin, plugin)
	}
	return nil
}

// UpdatePlugin updates an existing plugin. Changing the catalog price here
// never touches prices already snapshotted onto order lines.
func (s *CatalogService) UpdatePlugin(plugin *models.Plugin) error {
	if plugin.Price.IsNegative() {
		return fmt.Errorf("plugin price must not be negative: %w", ErrValidation)
	}
	if err := s.pluginRepo.Update(plugin); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("plugin %s: %w", plugin.ID, ErrNotFound)
		}
		return err
	}
	if s.notifier != nil {
		s.notifier.Publish(EventUpdatePlugin, plugin)
	}
	return nil
}

// DeletePlugin removes a plugin unless it appears in any order's history.
func (s *CatalogService) DeletePlugin(id string) error {
	count, err := s.pluginRepo.CountOrderItems(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("plugin %s has order history: %w", id, ErrConflict)
	}

	if err := s.pluginRepo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("plugin %s: %w", id, ErrNotFound)
		}
		return err
	}
	if s.notifier != nil {
		s.notifier.Publish(EventDeletePlugin, map[string]string{"id": id})
	}
	return nil
}

// RecordDownload bumps the download counter for a plugin.
func (s *CatalogService) RecordDownload(id string) error {
	if err := s.pluginRepo.IncrementDownloads(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("plugin %s: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}

// CheckPurchased reports whether the user has a paid order containing the plugin.
func (s *CatalogService) CheckPurchased(userID, pluginID string) (bool, error) {
	count, err := s.pluginRepo.CountPaidOrders(userID, pluginID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetAllCategories retrieves all categories.
func (s *CatalogService) GetAllCategories() ([]models.Category, error) {
	return s.categoryRepo.GetAll()
}

// GetCategoryByID retrieves a category by its ID.
func (s *CatalogService) GetCategoryByID(id string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return category, nil
}

// CreateCategory creates a new category.
func (s *CatalogService) CreateCategory(category *models.Category) error {
	return s.categoryRepo.Create(category)
}

// UpdateCategory updates an existing category.
func (s *CatalogService) UpdateCategory(category *models.Category) error {
	if err := s.categoryRepo.Update(category); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("category %s: %w", category.ID, ErrNotFound)
		}
		return err
	}
	return nil
}

// DeleteCategory removes a category by its ID.
func (s *CatalogService) DeleteCategory(id string) error {
	if err := s.categoryRepo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("category %s: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}
