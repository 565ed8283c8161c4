package services

import (
	"errors"
	"fmt"

	"pluginmarket/internal/models"
	"pluginmarket/internal/repositories"
)

// CartService maintains one active cart per user: add and remove lines,
// read the cart back with plugin details. Clearing on payment success is
// driven by the order workflow, not by the user.
type CartService struct {
	cartRepo   repositories.CartRepository
	pluginRepo repositories.PluginRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, pluginRepo repositories.PluginRepository) *CartService {
	return &CartService{
		cartRepo:   cartRepo,
		pluginRepo: pluginRepo,
	}
}

// GetCart returns the user's cart with its lines. The cart is created
// alongside registration; a missing cart is a not-found error.
func (s *CartService) GetCart(userID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return cart, nil
}

// AddItem puts a plugin into the user's cart with quantity 1. Adding a
// plugin that is already in the cart is a conflict.
func (s *CartService) AddItem(userID, pluginID string) (*models.CartItem, error) {
	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	plugin, err := s.pluginRepo.GetByID(pluginID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("plugin %s: %w", pluginID, ErrNotFound)
		}
		return nil, err
	}

	if _, err := s.cartRepo.GetItem(cart.ID, pluginID); err == nil {
		return nil, fmt.Errorf("plugin %s already in cart: %w", pluginID, ErrConflict)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check cart for plugin %s: %w", pluginID, err)
	}

	item := &models.CartItem{
		CartID:   cart.ID,
		PluginID: plugin.ID,
		Quantity: 1,
		Plugin:   plugin,
	}
	if err := s.cartRepo.AddItem(item); err != nil {
		return nil, fmt.Errorf("failed to add plugin %s to cart: %w", pluginID, err)
	}
	return item, nil
}

// RemoveItem deletes one line from the user's cart.
func (s *CartService) RemoveItem(userID, pluginID string) error {
	cart, err := s.GetCart(userID)
	if err != nil {
		return err
	}

	if err := s.cartRepo.RemoveItem(cart.ID, pluginID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("plugin %s not in cart: %w", pluginID, ErrNotFound)
		}
		return err
	}
	return nil
}

// Clear deletes all lines of a cart; clearing an empty cart is a no-op.
func (s *CartService) Clear(cartID string) error {
	return s.cartRepo.Clear(cartID)
}
