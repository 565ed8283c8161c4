package repositories

import (
	"errors"
	"fmt"

	"pluginmarket/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// GetAll retrieves all categories.
func (r *GORMCategoryRepository) GetAll() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a category by its ID.
func (r *GORMCategoryRepository) GetByID(id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category by ID %s: %w", id, err)
	}
	return &category, nil
}

// Create creates a new category.
func (r *GORMCategoryRepository) Create(category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := r.db.Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Update saves all fields of an existing category.
func (r *GORMCategoryRepository) Update(category *models.Category) error {
	res := r.db.Save(category)
	if res.Error != nil {
		return fmt.Errorf("failed to update category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category %s: %w", category.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a category by its ID.
func (r *GORMCategoryRepository) Delete(id string) error {
	res := r.db.Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return nil
}
