package handlers

import (
	"log"

	"pluginmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the user's cart.
type CartHandler struct {
	cart *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// RegisterRoutes registers the cart routes; all of them require auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Delete("/items/:pluginId", h.HandleRemoveItem)
}

// HandleGetCart returns the authenticated user's cart with its lines.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	cart, err := h.cart.GetCart(userID)
	if err != nil {
		log.Printf("Error getting cart for user %s: %v", userID, err)
		return respondError(c, err, "Could not retrieve cart")
	}
	return c.JSON(cart)
}

// HandleAddItem puts a plugin into the user's cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req struct {
		PluginID string `json:"plugin_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.PluginID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "plugin_id is required",
		})
	}

	item, err := h.cart.AddItem(userID, req.PluginID)
	if err != nil {
		log.Printf("Error adding plugin %s to cart for user %s: %v", req.PluginID, userID, err)
		return respondError(c, err, "Could not add plugin to cart")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Plugin added to cart",
		"item":    item,
	})
}

// HandleRemoveItem deletes one line from the user's cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	pluginID := c.Params("pluginId")

	if err := h.cart.RemoveItem(userID, pluginID); err != nil {
		log.Printf("Error removing plugin %s from cart for user %s: %v", pluginID, userID, err)
		return respondError(c, err, "Could not remove plugin from cart")
	}
	return c.JSON(fiber.Map{"message": "Plugin removed from cart"})
}
