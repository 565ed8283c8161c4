package repositories

import "pluginmarket/internal/models"

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll() ([]models.Category, error)
	GetByID(id string) (*models.Category, error)
	Create(category *models.Category) error
	Update(category *models.Category) error
	Delete(id string) error
}
