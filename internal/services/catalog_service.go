// internal/services/catalog_service.go
package services

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ultrulas16/sinekapar/internal/models"
	"github.com/ultrulas16/sinekapar/internal/repository"
	"github.com/ultrulas16/sinekapar/internal/utils"
)

type CatalogService struct {
	catalog repository.CatalogRepository
	storage *StorageService
}

type CreateProductRequest struct {
	Name             string                `json:"name" validate:"required,min=2,max=255"`
	Description      string                `json:"description,omitempty"`
	Specifications   string                `json:"specifications,omitempty"`
	SKU              string                `json:"sku,omitempty" validate:"omitempty,max=100"`
	Category         string                `json:"category,omitempty" validate:"omitempty,max=100"`
	BasePrice        decimal.Decimal       `json:"base_price"`
	DealerTier1Price decimal.NullDecimal   `json:"dealer_tier1_price"`
	DealerTier2Price decimal.NullDecimal   `json:"dealer_tier2_price"`
	DealerTier3Price decimal.NullDecimal   `json:"dealer_tier3_price"`
	StockQuantity    int                   `json:"stock_quantity" validate:"min=0"`
	VATRate          *int                  `json:"vat_rate,omitempty" validate:"omitempty,min=0,max=100"`
	VATIncluded      *bool                 `json:"vat_included,omitempty"`
	IsActive         *bool                 `json:"is_active,omitempty"`
	ShippingOption   models.ShippingOption `json:"shipping_option,omitempty" validate:"omitempty,shipping_option"`
}

// UpdateProductRequest replaces only the fields that are present.
type UpdateProductRequest struct {
	Name             *string                `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description      *string                `json:"description,omitempty"`
	Specifications   *string                `json:"specifications,omitempty"`
	SKU              *string                `json:"sku,omitempty" validate:"omitempty,max=100"`
	Category         *string                `json:"category,omitempty" validate:"omitempty,max=100"`
	BasePrice        *decimal.Decimal       `json:"base_price,omitempty"`
	DealerTier1Price OptionalPrice          `json:"dealer_tier1_price"`
	DealerTier2Price OptionalPrice          `json:"dealer_tier2_price"`
	DealerTier3Price OptionalPrice          `json:"dealer_tier3_price"`
	StockQuantity    *int                   `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	VATRate          *int                   `json:"vat_rate,omitempty" validate:"omitempty,min=0,max=100"`
	VATIncluded      *bool                  `json:"vat_included,omitempty"`
	IsActive         *bool                  `json:"is_active,omitempty"`
	ShippingOption   *models.ShippingOption `json:"shipping_option,omitempty" validate:"omitempty,shipping_option"`
}

// OptionalPrice is a nullable price that records whether the field was sent.
// An explicit null clears the price; an absent field leaves it alone.
type OptionalPrice struct {
	Set   bool
	Value decimal.NullDecimal
}

// SetPrice builds a present OptionalPrice. A nil price means null.
func SetPrice(price *decimal.Decimal) OptionalPrice {
	if price == nil {
		return OptionalPrice{Set: true}
	}
	return OptionalPrice{Set: true, Value: decimal.NewNullDecimal(*price)}
}

func (o *OptionalPrice) UnmarshalJSON(data []byte) error {
	o.Set = true
	return o.Value.UnmarshalJSON(data)
}

func (o OptionalPrice) MarshalJSON() ([]byte, error) {
	return o.Value.MarshalJSON()
}

// ProductView is a product as one buyer sees it. Dealer price lists are
// only exposed to admins.
type ProductView struct {
	models.Product
	Price        ResolvedPrice   `json:"price"`
	DisplayPrice decimal.Decimal `json:"display_price"`
	InStock      bool            `json:"in_stock"`
}

func NewCatalogService(catalog repository.CatalogRepository, storage *StorageService) *CatalogService {
	return &CatalogService{catalog: catalog, storage: storage}
}

func (s *CatalogService) ListProducts(ctx context.Context, buyer BuyerContext, params utils.PaginationParams) ([]ProductView, int64, error) {
	products, total, err := s.catalog.ListActiveProducts(ctx, params.Category, params.Offset(), params.Limit)
	if err != nil {
		return nil, 0, remoteFailure("list products", err)
	}

	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, viewFor(&products[i], buyer))
	}
	return views, total, nil
}

// GetProduct hides inactive products from everyone but admins.
func (s *CatalogService) GetProduct(ctx context.Context, buyer BuyerContext, id uuid.UUID) (*ProductView, error) {
	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, remoteFailure("get product", err)
	}
	if !product.IsActive && !buyer.IsAdmin() {
		return nil, ErrProductNotFound
	}

	view := viewFor(product, buyer)
	return &view, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	product := &models.Product{
		Name:             req.Name,
		Description:      req.Description,
		Specifications:   req.Specifications,
		SKU:              req.SKU,
		Category:         req.Category,
		BasePrice:        req.BasePrice,
		DealerTier1Price: req.DealerTier1Price,
		DealerTier2Price: req.DealerTier2Price,
		DealerTier3Price: req.DealerTier3Price,
		StockQuantity:    req.StockQuantity,
		VATRate:          20,
		VATIncluded:      true,
		IsActive:         true,
		ShippingOption:   models.ShippingStandard,
	}
	if req.VATRate != nil {
		product.VATRate = *req.VATRate
	}
	if req.VATIncluded != nil {
		product.VATIncluded = *req.VATIncluded
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.ShippingOption != "" {
		product.ShippingOption = req.ShippingOption
	}

	if err := validatePrices(product); err != nil {
		return nil, err
	}

	if err := s.catalog.CreateProduct(ctx, product); err != nil {
		return nil, remoteFailure("create product", err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"sku":        product.SKU,
	}).Info("Product created")

	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, remoteFailure("get product", err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Specifications != nil {
		product.Specifications = *req.Specifications
	}
	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.BasePrice != nil {
		product.BasePrice = *req.BasePrice
	}
	if req.DealerTier1Price.Set {
		product.DealerTier1Price = req.DealerTier1Price.Value
	}
	if req.DealerTier2Price.Set {
		product.DealerTier2Price = req.DealerTier2Price.Value
	}
	if req.DealerTier3Price.Set {
		product.DealerTier3Price = req.DealerTier3Price.Value
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.VATRate != nil {
		product.VATRate = *req.VATRate
	}
	if req.VATIncluded != nil {
		product.VATIncluded = *req.VATIncluded
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.ShippingOption != nil {
		product.ShippingOption = *req.ShippingOption
	}

	if err := validatePrices(product); err != nil {
		return nil, err
	}

	if err := s.catalog.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, remoteFailure("update product", err)
	}

	return product, nil
}

// AddProductImage uploads an image and attaches it to the product. The
// first image becomes the main image.
func (s *CatalogService) AddProductImage(ctx context.Context, productID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*models.ProductImage, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, remoteFailure("get product", err)
	}

	upload, err := s.storage.UploadFile(ctx, file, header, ProductImageUploadOptions())
	if err != nil {
		return nil, err
	}

	image := &models.ProductImage{
		ProductID:    productID,
		ImageURL:     upload.URL,
		StorageKey:   upload.Key,
		DisplayOrder: len(product.Images),
		IsMain:       len(product.Images) == 0,
	}
	if err := s.catalog.AddProductImage(ctx, image); err != nil {
		if delErr := s.storage.DeleteFile(ctx, upload.Key); delErr != nil {
			logrus.WithError(delErr).WithField("key", upload.Key).Warn("Failed to remove uploaded image")
		}
		return nil, remoteFailure("save product image", err)
	}

	return image, nil
}

func validatePrices(p *models.Product) error {
	if p.BasePrice.IsNegative() {
		return ErrInvalidPrice
	}
	for _, nd := range []decimal.NullDecimal{p.DealerTier1Price, p.DealerTier2Price, p.DealerTier3Price} {
		if nd.Valid && nd.Decimal.IsNegative() {
			return ErrInvalidPrice
		}
	}
	return nil
}

func viewFor(product *models.Product, buyer BuyerContext) ProductView {
	price := ResolveUnitPrice(product, buyer)
	view := ProductView{
		Product:      *product,
		Price:        price,
		DisplayPrice: price.Gross(),
		InStock:      product.StockQuantity > 0,
	}
	if !buyer.IsAdmin() {
		view.DealerTier1Price = decimal.NullDecimal{}
		view.DealerTier2Price = decimal.NullDecimal{}
		view.DealerTier3Price = decimal.NullDecimal{}
	}
	return view
}
