package models

import "time"

// Cart is the user's single active shopping cart (one per user, created
// alongside registration).
type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is one plugin in a cart. At most one item per (cart, plugin) pair.
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID    string    `json:"cart_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_plugin"`
	PluginID  string    `json:"plugin_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_plugin"`
	Quantity  int       `json:"quantity" gorm:"default:1" validate:"gte=1"`
	Plugin    *Plugin   `json:"plugin,omitempty" gorm:"foreignKey:PluginID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
