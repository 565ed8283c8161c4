package models

import "gorm.io/gorm"

// Category groups plugins for browsing.
type Category struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	gorm.Model
}
