// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleDealer         UserRole = "dealer"
	RoleOperator       UserRole = "operator"
	RoleCustomer       UserRole = "customer"
	RoleCustomerBranch UserRole = "customer_branch"
	RoleEndUser        UserRole = "end_user"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleDealer, RoleOperator, RoleCustomer, RoleCustomerBranch, RoleEndUser:
		return true
	}
	return false
}

type DealerStatus string

const (
	DealerStatusPending   DealerStatus = "pending"
	DealerStatusActive    DealerStatus = "active"
	DealerStatusSuspended DealerStatus = "suspended"
)

type ShippingOption string

const (
	ShippingStandard ShippingOption = "standard"
	ShippingExpress  ShippingOption = "express"
	ShippingPickup   ShippingOption = "pickup"
	ShippingFree     ShippingOption = "free"
)

func (o ShippingOption) Valid() bool {
	switch o {
	case ShippingStandard, ShippingExpress, ShippingPickup, ShippingFree:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCOD      PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentTransfer, PaymentCOD:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusRefunded      PaymentStatus = "refunded"
)
