package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"pluginmarket/internal/models"
	"pluginmarket/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	cartRepo   repositories.CartRepository
	notifier   Notifier
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, cartRepo repositories.CartRepository, notifier Notifier, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		cartRepo:   cartRepo,
		notifier:   notifier,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// RegisterUser registers a new user, hashes their password and creates their
// empty cart, so the cart manager can rely on every user having one.
func (s *AuthService) RegisterUser(user *models.User) error {
	if existingUser, err := s.userRepo.GetByUsername(user.Username); err == nil && existingUser != nil {
		return fmt.Errorf("username '%s' already taken: %w", user.Username, ErrConflict)
	}
	if existingUser, err := s.userRepo.GetByEmail(user.Email); err == nil && existingUser != nil {
		return fmt.Errorf("email '%s' already registered: %w", user.Email, ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	if _, err := s.cartRepo.CreateForUser(user.ID); err != nil {
		// The account exists; the cart can still be created on first access.
		log.Printf("Warning: failed to create cart for new user %s: %v", user.ID, err)
	}

	if s.notifier != nil {
		s.notifier.Publish(EventNewUser, map[string]string{
			"id":       user.ID,
			"username": user.Username,
		})
	}
	return nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		// Do not reveal whether the username exists.
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
