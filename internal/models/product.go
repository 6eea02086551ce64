// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Dealer tier prices are independent of each
// other and of BasePrice; no ordering between them is assumed.
// VATRate, VATIncluded and IsActive must not get a gorm default: gorm
// drops zero values of defaulted fields on insert.
type Product struct {
	BaseModel
	Name             string              `json:"name" gorm:"size:255;not null"`
	Description      string              `json:"description,omitempty" gorm:"type:text"`
	Specifications   string              `json:"specifications,omitempty" gorm:"type:text"`
	SKU              string              `json:"sku,omitempty" gorm:"size:100;index"`
	Category         string              `json:"category,omitempty" gorm:"size:100;index"`
	BasePrice        decimal.Decimal     `json:"base_price" gorm:"type:decimal(12,2);not null"`
	DealerTier1Price decimal.NullDecimal `json:"dealer_tier1_price" gorm:"type:decimal(12,2)"`
	DealerTier2Price decimal.NullDecimal `json:"dealer_tier2_price" gorm:"type:decimal(12,2)"`
	DealerTier3Price decimal.NullDecimal `json:"dealer_tier3_price" gorm:"type:decimal(12,2)"`
	StockQuantity    int                 `json:"stock_quantity" gorm:"not null;default:0"`
	VATRate          int                 `json:"vat_rate" gorm:"not null"`
	VATIncluded      bool                `json:"vat_included" gorm:"not null"`
	IsActive         bool                `json:"is_active" gorm:"not null;index"`
	ShippingOption   ShippingOption      `json:"shipping_option" gorm:"type:varchar(20);not null;default:'standard'"`

	// Relationships
	Images []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID"`
}

type ProductImage struct {
	BaseModel
	ProductID    uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	ImageURL     string    `json:"image_url" gorm:"type:text;not null"`
	StorageKey   string    `json:"-" gorm:"size:255"`
	DisplayOrder int       `json:"display_order" gorm:"default:0"`
	IsMain       bool      `json:"is_main" gorm:"default:false"`
}

// TierPrice returns the stored price for dealer tier 1..3. A missing price
// reads as zero; ok is false only for an out-of-range tier.
func (p *Product) TierPrice(tier int) (price decimal.Decimal, ok bool) {
	var nd decimal.NullDecimal
	switch tier {
	case 1:
		nd = p.DealerTier1Price
	case 2:
		nd = p.DealerTier2Price
	case 3:
		nd = p.DealerTier3Price
	default:
		return decimal.Zero, false
	}

	if !nd.Valid {
		return decimal.Zero, true
	}
	return nd.Decimal, true
}
