package repositories

import (
	"fmt"
	"sync"

	"pluginmarket/internal/models"

	"github.com/google/uuid"
)

// MockPluginRepository is an in-memory implementation of PluginRepository.
type MockPluginRepository struct {
	plugins map[string]models.Plugin
	// paidOrders maps "userID/pluginID" to a paid-order count for the
	// purchase check, settable from tests.
	paidOrders map[string]int64
	orderItems map[string]int64
	mu         sync.RWMutex
}

// NewMockPluginRepository creates a new instance of MockPluginRepository.
func NewMockPluginRepository() *MockPluginRepository {
	return &MockPluginRepository{
		plugins:    make(map[string]models.Plugin),
		paidOrders: make(map[string]int64),
		orderItems: make(map[string]int64),
	}
}

// GetAll returns all plugins.
func (r *MockPluginRepository) GetAll() ([]models.Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		list = append(list, p)
	}
	return list, nil
}

// GetByID returns a plugin by its ID.
func (r *MockPluginRepository) GetByID(id string) (*models.Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugin, ok := r.plugins[id]
	if !ok {
		return nil, fmt.Errorf("plugin %s: %w", id, ErrNotFound)
	}
	return &plugin, nil
}

// ListByCategory returns plugins for one category.
func (r *MockPluginRepository) ListByCategory(categoryID string) ([]models.Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.Plugin
	for _, p := range r.plugins {
		if p.CategoryID == categoryID {
			list = append(list, p)
		}
	}
	return list, nil
}

// Create adds a new plugin.
func (r *MockPluginRepository) Create(plugin *models.Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if plugin.ID == "" {
		plugin.ID = uuid.New().String()
	}
	r.plugins[plugin.ID] = *plugin
	return nil
}

// Update modifies an existing plugin.
func (r *MockPluginRepository) Update(plugin *models.Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[plugin.ID]; !ok {
		return fmt.Errorf("plugin %s: %w", plugin.ID, ErrNotFound)
	}
	r.plugins[plugin.ID] = *plugin
	return nil
}

// Delete removes a plugin by its ID.
func (r *MockPluginRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[id]; !ok {
		return fmt.Errorf("plugin %s: %w", id, ErrNotFound)
	}
	delete(r.plugins, id)
	return nil
}

// IncrementDownloads bumps the download counter.
func (r *MockPluginRepository) IncrementDownloads(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	plugin, ok := r.plugins[id]
	if !ok {
		return fmt.Errorf("plugin %s: %w", id, ErrNotFound)
	}
	plugin.Downloads++
	r.plugins[id] = plugin
	return nil
}

// CountOrderItems returns the recorded order-line count for a plugin.
func (r *MockPluginRepository) CountOrderItems(pluginID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.orderItems[pluginID], nil
}

// CountPaidOrders returns the recorded paid-order count for a user/plugin pair.
func (r *MockPluginRepository) CountPaidOrders(userID, pluginID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paidOrders[userID+"/"+pluginID], nil
}

// SetOrderItemCount seeds the order-history counter used by CountOrderItems.
func (r *MockPluginRepository) SetOrderItemCount(pluginID string, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orderItems[pluginID] = n
}

// SetPaidOrderCount seeds the counter used by CountPaidOrders.
func (r *MockPluginRepository) SetPaidOrderCount(userID, pluginID string, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paidOrders[userID+"/"+pluginID] = n
}
