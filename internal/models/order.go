// internal/models/order.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	BaseModel
	UserID            uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	ShippingAddressID uuid.UUID       `json:"shipping_address_id" gorm:"type:uuid;not null"`
	BillingAddressID  uuid.UUID       `json:"billing_address_id" gorm:"type:uuid;not null"`
	Status            OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus     PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod     PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	PaymentReference  string          `json:"payment_reference,omitempty" gorm:"size:255"`
	ContactEmail      string          `json:"contact_email,omitempty" gorm:"size:255"`
	ShippingOption    ShippingOption  `json:"shipping_option" gorm:"type:varchar(20);not null"`
	Subtotal          decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	VATAmount         decimal.Decimal `json:"vat_amount" gorm:"type:decimal(12,2);not null"`
	ShippingFee       decimal.Decimal `json:"shipping_fee" gorm:"type:decimal(12,2);not null"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`

	// Relationships
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem freezes pricing at purchase time. UnitPrice and UnitVATRate are
// never re-derived from the live product.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	ProductName string          `json:"product_name" gorm:"size:255;not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	UnitVATRate int             `json:"unit_vat_rate" gorm:"not null"`
	VATIncluded bool            `json:"vat_included" gorm:"not null"`
	LineTotal   decimal.Decimal `json:"line_total" gorm:"type:decimal(12,2);not null"`
}
