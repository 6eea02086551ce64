// internal/services/price_resolver.go
package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ultrulas16/sinekapar/internal/models"
)

var hundred = decimal.NewFromInt(100)

// BuyerContext identifies who prices are resolved for. A zero UserID means
// an anonymous visitor. DealerTier is 0 unless the buyer is a dealer.
type BuyerContext struct {
	UserID     uuid.UUID       `json:"user_id"`
	Role       models.UserRole `json:"role"`
	DealerTier int             `json:"dealer_tier"`
	Email      string          `json:"email,omitempty"`
}

func (b BuyerContext) Authenticated() bool {
	return b.UserID != uuid.Nil
}

func (b BuyerContext) IsDealer() bool {
	return b.Role == models.RoleDealer
}

func (b BuyerContext) IsAdmin() bool {
	return b.Role == models.RoleAdmin
}

type ResolvedPrice struct {
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     int             `json:"vat_rate"`
	VATIncluded bool            `json:"vat_included"`
}

// ResolveUnitPrice picks the price list entry for the buyer. Dealers on tier
// 1..3 get that tier's price; everyone else, including a dealer whose tier
// is out of range, gets the base price.
func ResolveUnitPrice(product *models.Product, buyer BuyerContext) ResolvedPrice {
	price := product.BasePrice
	if buyer.IsDealer() {
		if tierPrice, ok := product.TierPrice(buyer.DealerTier); ok {
			price = tierPrice
		}
	}

	return ResolvedPrice{
		UnitPrice:   price,
		VATRate:     product.VATRate,
		VATIncluded: product.VATIncluded,
	}
}

// DisplayPriceWithVat returns the VAT-inclusive unit price.
func DisplayPriceWithVat(unitPrice decimal.Decimal, vatRate int, vatIncluded bool) decimal.Decimal {
	if vatIncluded {
		return unitPrice
	}
	return unitPrice.Mul(hundred.Add(decimal.NewFromInt(int64(vatRate)))).Div(hundred)
}

// Gross is the VAT-inclusive unit price for r.
func (r ResolvedPrice) Gross() decimal.Decimal {
	return DisplayPriceWithVat(r.UnitPrice, r.VATRate, r.VATIncluded)
}

// VATPortion returns the VAT contained in gross at rate percent.
func VATPortion(gross decimal.Decimal, vatRate int) decimal.Decimal {
	if vatRate <= 0 {
		return decimal.Zero
	}
	rate := decimal.NewFromInt(int64(vatRate))
	return gross.Mul(rate).Div(hundred.Add(rate))
}
