// internal/models/profile.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors the auth provider's user. Its ID is the auth subject, so it
// is never generated here.
type Profile struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null;default:'end_user';index"`
	FullName     string     `json:"full_name" gorm:"size:255;not null"`
	Phone        string     `json:"phone,omitempty" gorm:"size:50"`
	AvatarURL    string     `json:"avatar_url,omitempty" gorm:"type:text"`
	DealerID     *uuid.UUID `json:"dealer_id,omitempty" gorm:"type:uuid;index"`
	CanAccessCRM bool       `json:"can_access_crm" gorm:"default:false"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Dealer struct {
	BaseModel
	UserID       uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	CompanyName  string       `json:"company_name" gorm:"size:255;not null"`
	TaxNumber    string       `json:"tax_number,omitempty" gorm:"size:50"`
	Address      string       `json:"address,omitempty" gorm:"type:text"`
	City         string       `json:"city,omitempty" gorm:"size:100"`
	Phone        string       `json:"phone" gorm:"size:50"`
	Email        string       `json:"email" gorm:"size:255"`
	Status       DealerStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	Tier         int          `json:"tier" gorm:"not null;default:2"`
	DiscountRate float64      `json:"discount_rate" gorm:"type:decimal(5,2);default:0"`
	Notes        string       `json:"notes,omitempty" gorm:"type:text"`
}
