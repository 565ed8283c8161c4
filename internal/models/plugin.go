package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Approval states for a listed plugin.
const (
	PluginPending  = "pending"
	PluginApproved = "approved"
	PluginRejected = "rejected"
)

// Plugin represents a catalog listing. Price is a live, mutable attribute of
// the catalog; in-flight orders never read it back after checkout (they carry
// their own snapshot in OrderItem).
type Plugin struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Slug        string          `json:"slug" gorm:"uniqueIndex;type:varchar(120)" validate:"omitempty,max=120"`
	Description string          `json:"description" validate:"omitempty,max=2000"`
	Version     string          `json:"version" gorm:"type:varchar(30)" validate:"omitempty,max=30"`
	Author      string          `json:"author" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	Status      string          `json:"status" gorm:"type:varchar(20);default:pending" validate:"omitempty,oneof=pending approved rejected"`
	CategoryID  string          `json:"category_id" gorm:"type:varchar(36);index" validate:"omitempty,uuid"`
	FileURL     string          `json:"file_url" validate:"omitempty,max=500"`
	Thumbnail   string          `json:"thumbnail" validate:"omitempty,max=500"`
	Rating      float64         `json:"rating" validate:"gte=0,lte=5"`
	Downloads   int             `json:"downloads" validate:"gte=0"`
	gorm.Model
}
