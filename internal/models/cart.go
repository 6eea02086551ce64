// internal/models/cart.go
package models

import (
	"github.com/google/uuid"
)

// CartLine is one (product, quantity) entry in a buyer's basket. The pair
// (user_id, product_id) is unique.
type CartLine struct {
	BaseModel
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_product"`
	Quantity  int       `json:"quantity" gorm:"not null"`

	// Relationships
	Product Product `json:"product" gorm:"foreignKey:ProductID"`
}

func (CartLine) TableName() string {
	return "cart_items"
}
