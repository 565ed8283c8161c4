package handlers

import (
	"log"

	"pluginmarket/internal/models"
	"pluginmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for plugin categories.
type CategoryHandler struct {
	catalog *services.CatalogService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(catalog *services.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

// RegisterRoutes registers public category routes.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetCategories)
	categoryRoutes.Get("/:id", h.HandleGetCategoryByID)
	categoryRoutes.Get("/:id/plugins", h.HandleGetCategoryPlugins)
}

// RegisterProtectedRoutes registers admin-only category routes.
func (h *CategoryHandler) RegisterProtectedRoutes(router fiber.Router) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Post("/", h.HandleCreateCategory)
	categoryRoutes.Put("/:id", h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", h.HandleDeleteCategory)
}

// HandleGetCategories retrieves all categories.
func (h *CategoryHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.GetAllCategories()
	if err != nil {
		log.Printf("Error getting categories: %v", err)
		return respondError(c, err, "Could not retrieve categories")
	}
	return c.JSON(categories)
}

// HandleGetCategoryByID retrieves a single category.
func (h *CategoryHandler) HandleGetCategoryByID(c *fiber.Ctx) error {
	category, err := h.catalog.GetCategoryByID(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve category")
	}
	return c.JSON(category)
}

// HandleGetCategoryPlugins retrieves the plugins of one category.
func (h *CategoryHandler) HandleGetCategoryPlugins(c *fiber.Ctx) error {
	plugins, err := h.catalog.GetPluginsByCategory(c.Params("id"))
	if err != nil {
		log.Printf("Error getting plugins for category %s: %v", c.Params("id"), err)
		return respondError(c, err, "Could not retrieve plugins")
	}
	return c.JSON(plugins)
}

// HandleCreateCategory creates a new category.
func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := bindAllowed(c, []string{"name", "description"}, &category); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if category.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Category name is required",
		})
	}

	if err := h.catalog.CreateCategory(&category); err != nil {
		log.Printf("Error creating category: %v", err)
		return respondError(c, err, "Could not create category")
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdateCategory updates an existing category.
func (h *CategoryHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	category, err := h.catalog.GetCategoryByID(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve category")
	}

	if err := bindAllowed(c, []string{"name", "description"}, category); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.catalog.UpdateCategory(category); err != nil {
		log.Printf("Error updating category %s: %v", category.ID, err)
		return respondError(c, err, "Could not update category")
	}
	return c.JSON(category)
}

// HandleDeleteCategory removes a category.
func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.catalog.DeleteCategory(c.Params("id")); err != nil {
		log.Printf("Error deleting category %s: %v", c.Params("id"), err)
		return respondError(c, err, "Could not delete category")
	}
	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}
