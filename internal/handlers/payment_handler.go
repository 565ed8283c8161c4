package handlers

import (
	"errors"
	"log"

	"pluginmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles checkout requests and the payment gateway webhook.
type PaymentHandler struct {
	checkout *services.CheckoutService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(checkout *services.CheckoutService) *PaymentHandler {
	return &PaymentHandler{checkout: checkout}
}

// RegisterRoutes registers the authenticated checkout route.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	paymentRoutes := router.Group("/payment")
	paymentRoutes.Post("/checkout", h.HandleCheckout)
}

// RegisterWebhookRoute registers the server-to-server webhook endpoint. It
// sits outside the auth middleware; its security is the event signature.
func (h *PaymentHandler) RegisterWebhookRoute(router fiber.Router) {
	router.Post("/payment/webhook", h.HandleWebhook)
}

// CheckoutRequest is the client-facing checkout payload: a point-in-time
// snapshot of the lines being bought.
type CheckoutRequest struct {
	UserID   string                  `json:"userId"`
	Products []services.CheckoutItem `json:"products"`
}

// HandleCheckout creates a pending order with a reserved charge and returns
// the client secret needed to confirm it browser-side.
func (h *PaymentHandler) HandleCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	// The token decides who is buying, regardless of what the body claims.
	if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
		req.UserID = userID
	}

	result, err := h.checkout.InitiateCheckout(req.UserID, req.Products)
	if err != nil {
		log.Printf("Error initiating checkout for user %s: %v", req.UserID, err)
		return respondError(c, err, "Checkout failed")
	}
	return c.JSON(result)
}

// HandleWebhook receives signed gateway events. Any accepted event gets
// {received: true} whether or not it changed state; a bad signature is
// rejected with no processing; a database failure while marking the order
// paid returns 5xx so the gateway redelivers.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	err := h.checkout.Reconcile(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, services.ErrBadSignature) {
			log.Printf("Webhook signature verification failed: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Webhook signature verification failed",
			})
		}
		log.Printf("Error reconciling webhook event: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not process event",
		})
	}
	return c.JSON(fiber.Map{"received": true})
}
