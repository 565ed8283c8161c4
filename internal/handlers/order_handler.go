package handlers

import (
	"log"
	"strconv"

	"pluginmarket/internal/models"
	"pluginmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	checkout *services.CheckoutService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(checkout *services.CheckoutService) *OrderHandler {
	return &OrderHandler{checkout: checkout}
}

// RegisterRoutes registers the order routes; all of them require auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/all", h.HandleGetAllOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Put("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleGetOrders lists the authenticated user's orders. Line prices are the
// ones snapshotted at purchase, never the live catalog prices.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	limit, offset := pagination(c)

	orders, err := h.checkout.ListOrders(userID, limit, offset)
	if err != nil {
		log.Printf("Error listing orders for user %s: %v", userID, err)
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// HandleGetAllOrders lists orders across all users (admin back office).
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	if role, _ := c.Locals("role").(string); role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Access denied"})
	}
	limit, offset := pagination(c)

	orders, err := h.checkout.ListAllOrders(limit, offset)
	if err != nil {
		log.Printf("Error listing all orders: %v", err)
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// HandleGetOrderByID retrieves one order, restricted to its owner or an admin.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.checkout.GetOrder(c.Params("id"))
	if err != nil {
		log.Printf("Error getting order %s: %v", c.Params("id"), err)
		return respondError(c, err, "Could not retrieve order")
	}

	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	if order.UserID != userID && role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Access denied"})
	}
	return c.JSON(order)
}

// HandleCreateOrder materializes the user's cart into a checkout and returns
// the pending order id with the charge's client secret.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	result, err := h.checkout.CheckoutFromCart(userID)
	if err != nil {
		log.Printf("Error creating order from cart for user %s: %v", userID, err)
		return respondError(c, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleUpdateOrderStatus applies an admin status change (cancel a pending
// order, complete a paid one).
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	if role, _ := c.Locals("role").(string); role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Access denied"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "status is required",
		})
	}

	order, err := h.checkout.UpdateOrderStatus(c.Params("id"), req.Status)
	if err != nil {
		log.Printf("Error updating order %s status: %v", c.Params("id"), err)
		return respondError(c, err, "Could not update order status")
	}
	return c.JSON(order)
}

// pagination reads ?limit= and ?page= query parameters.
func pagination(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return limit, (page - 1) * limit
}
