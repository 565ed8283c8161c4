package models

import "gorm.io/gorm"

// Role values accepted for User.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a marketplace account. Buyers, plugin authors and admins
// share the same record; admins are distinguished by Role.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role       string `json:"role" gorm:"type:varchar(20);default:user" validate:"omitempty,oneof=user admin"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
