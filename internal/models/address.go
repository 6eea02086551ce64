// internal/models/address.go
package models

import (
	"github.com/google/uuid"
)

type Address struct {
	BaseModel
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"size:100;not null"`
	FullName    string    `json:"full_name" gorm:"size:255;not null"`
	Phone       string    `json:"phone" gorm:"size:50;not null"`
	City        string    `json:"city" gorm:"size:100;not null"`
	District    string    `json:"district" gorm:"size:100"`
	FullAddress string    `json:"full_address" gorm:"type:text;not null"`
	IsDefault   bool      `json:"is_default" gorm:"default:false"`
}
