package handlers

import (
	"log"

	"pluginmarket/internal/models"
	"pluginmarket/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// userAllowedFields limits which user attributes an admin may set.
var userAllowedFields = []string{"username", "email", "password", "role"}

// UserHandler handles admin user management.
type UserHandler struct {
	userRepo repositories.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// RegisterRoutes registers the user management routes; the caller is expected
// to mount them behind the admin role gate.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleGetUsers)
	userRoutes.Get("/:id", h.HandleGetUserByID)
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Put("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

// HandleGetUsers lists all users.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.userRepo.GetAll()
	if err != nil {
		log.Printf("Error getting users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve users",
		})
	}
	for i := range users {
		users[i].Password = ""
	}
	return c.JSON(users)
}

// HandleGetUserByID retrieves a single user.
func (h *UserHandler) HandleGetUserByID(c *fiber.Ctx) error {
	user, err := h.userRepo.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}
	user.Password = ""
	return c.JSON(user)
}

// HandleCreateUser creates a user with allow-listed fields.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var user models.User
	if err := bindAllowed(c, userAllowedFields, &user); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if user.Username == "" || user.Email == "" || user.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "username, email and password are required",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create user",
		})
	}
	user.Password = string(hashed)
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	if err := h.userRepo.Create(&user); err != nil {
		log.Printf("Error creating user: %v", err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Could not create user",
			"error":   err.Error(),
		})
	}
	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleUpdateUser updates a user with allow-listed fields.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	user, err := h.userRepo.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}

	previousHash := user.Password
	if err := bindAllowed(c, userAllowedFields, user); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if user.Password != previousHash && user.Password != "" {
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not update user",
			})
		}
		user.Password = string(hashed)
	}

	if err := h.userRepo.Update(user); err != nil {
		log.Printf("Error updating user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update user",
		})
	}
	user.Password = ""
	return c.JSON(user)
}

// HandleDeleteUser removes a user.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.userRepo.Delete(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
