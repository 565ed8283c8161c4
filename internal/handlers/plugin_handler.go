package handlers

import (
	"fmt"
	"log"

	"pluginmarket/internal/models"
	"pluginmarket/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// pluginAllowedFields limits which plugin attributes a client may set.
var pluginAllowedFields = []string{
	"name", "description", "version", "author", "price", "slug",
	"category_id", "file_url", "thumbnail", "status", "rating", "downloads",
}

// PluginHandler handles HTTP requests for the plugin catalog.
type PluginHandler struct {
	catalog  *services.CatalogService
	validate *validator.Validate
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(catalog *services.CatalogService) *PluginHandler {
	return &PluginHandler{
		catalog:  catalog,
		validate: validator.New(),
	}
}

// RegisterRoutes registers public catalog routes.
func (h *PluginHandler) RegisterRoutes(router fiber.Router) {
	pluginRoutes := router.Group("/plugins")
	pluginRoutes.Get("/", h.HandleGetPlugins)
	pluginRoutes.Get("/:id", h.HandleGetPluginByID)
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *PluginHandler) RegisterProtectedRoutes(router fiber.Router) {
	pluginRoutes := router.Group("/plugins")
	pluginRoutes.Post("/", h.HandleCreatePlugin)
	pluginRoutes.Put("/:id", h.HandleUpdatePlugin)
	pluginRoutes.Delete("/:id", h.HandleDeletePlugin)
	pluginRoutes.Post("/:id/download", h.HandleDownload)
	pluginRoutes.Get("/:id/purchased", h.HandleCheckPurchased)
}

// HandleGetPlugins retrieves all plugins.
func (h *PluginHandler) HandleGetPlugins(c *fiber.Ctx) error {
	plugins, err := h.catalog.GetAllPlugins()
	if err != nil {
		log.Printf("Error getting all plugins: %v", err)
		return respondError(c, err, "Could not retrieve plugins")
	}
	return c.JSON(plugins)
}

// HandleGetPluginByID retrieves a single plugin.
func (h *PluginHandler) HandleGetPluginByID(c *fiber.Ctx) error {
	plugin, err := h.catalog.GetPluginByID(c.Params("id"))
	if err != nil {
		log.Printf("Error getting plugin %s: %v", c.Params("id"), err)
		return respondError(c, err, "Could not retrieve plugin")
	}
	return c.JSON(plugin)
}

// HandleCreatePlugin creates a new plugin listing.
func (h *PluginHandler) HandleCreatePlugin(c *fiber.Ctx) error {
	var plugin models.Plugin
	if err := bindAllowed(c, pluginAllowedFields, &plugin); err != nil {
		log.Printf("Error parsing plugin request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(plugin); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	if err := h.catalog.CreatePlugin(&plugin); err != nil {
		log.Printf("Error creating plugin: %v", err)
		return respondError(c, err, "Could not create plugin")
	}
	return c.Status(fiber.StatusCreated).JSON(plugin)
}

// HandleUpdatePlugin updates an existing plugin with allow-listed fields.
func (h *PluginHandler) HandleUpdatePlugin(c *fiber.Ctx) error {
	plugin, err := h.catalog.GetPluginByID(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve plugin")
	}

	if err := bindAllowed(c, pluginAllowedFields, plugin); err != nil {
		log.Printf("Error parsing plugin update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.catalog.UpdatePlugin(plugin); err != nil {
		log.Printf("Error updating plugin %s: %v", plugin.ID, err)
		return respondError(c, err, "Could not update plugin")
	}
	return c.JSON(plugin)
}

// HandleDeletePlugin removes a plugin unless it has order history.
func (h *PluginHandler) HandleDeletePlugin(c *fiber.Ctx) error {
	if err := h.catalog.DeletePlugin(c.Params("id")); err != nil {
		log.Printf("Error deleting plugin %s: %v", c.Params("id"), err)
		return respondError(c, err, "Could not delete plugin")
	}
	return c.JSON(fiber.Map{"message": "Plugin deleted successfully"})
}

// HandleDownload records a download of the plugin.
func (h *PluginHandler) HandleDownload(c *fiber.Ctx) error {
	if err := h.catalog.RecordDownload(c.Params("id")); err != nil {
		log.Printf("Error recording download for plugin %s: %v", c.Params("id"), err)
		return respondError(c, err, "Could not record download")
	}
	return c.JSON(fiber.Map{"message": "Download recorded"})
}

// HandleCheckPurchased reports whether the authenticated user has paid for
// the plugin.
func (h *PluginHandler) HandleCheckPurchased(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	purchased, err := h.catalog.CheckPurchased(userID, c.Params("id"))
	if err != nil {
		log.Printf("Error checking purchase of plugin %s: %v", c.Params("id"), err)
		return respondError(c, err, "Could not check purchase")
	}
	return c.JSON(fiber.Map{"purchased": purchased})
}
