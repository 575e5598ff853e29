package domain

import (
	"time"
)

// Catalog categories are a fixed set; the storefront renders one landing
// section per category.
var Categories = []string{
	"Home & Kitchen",
	"Fitness",
	"Gadgets",
	"Shelving",
	"Tools",
	"Camping",
	"Car Accessories",
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// MaxProductImages is the number of image slots per product. The first
// image is the primary one and is required.
const MaxProductImages = 7

type Product struct {
	ProductID        string    `dynamodbav:"product_id" json:"_id"`
	Name             string    `dynamodbav:"name"       json:"name"`
	Description      string    `dynamodbav:"description" json:"description"`
	Category         string    `dynamodbav:"category"   json:"category"`
	Brand            string    `dynamodbav:"brand"      json:"brand,omitempty"`
	SKU              string    `dynamodbav:"sku"        json:"sku,omitempty"`
	RealPrice        float64   `dynamodbav:"real_price" json:"realPrice"`
	Price            float64   `dynamodbav:"price"      json:"price"`
	Discount         float64   `dynamodbav:"discount"   json:"discount"`
	Stock            int       `dynamodbav:"stock"      json:"stock"`
	Variants         []Variant `dynamodbav:"variants"   json:"variants"`
	Images           []string  `dynamodbav:"images"     json:"images"`
	IsDiscounted     bool      `dynamodbav:"is_discounted"      json:"isDiscounted"`
	LimitedTimeDeal  bool      `dynamodbav:"limited_time_deal"  json:"limitedTimeDeal"`
	WeeklyDeal       bool      `dynamodbav:"weekly_deal"        json:"weeklyDeal"`
	BlackFridayOffer bool      `dynamodbav:"black_friday_offer" json:"blackFridayOffer"`
	Weight           string    `dynamodbav:"weight"     json:"weight,omitempty"`
	Dimensions       string    `dynamodbav:"dimensions" json:"dimensions,omitempty"`
	Warranty         string    `dynamodbav:"warranty"   json:"warranty,omitempty"`
	CountryOfOrigin  string    `dynamodbav:"country_of_origin" json:"countryOfOrigin,omitempty"`
	CreatedAt        time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `dynamodbav:"updated_at" json:"updatedAt"`
}

// HasVariants reports whether stock truth lives on the variants rather
// than on the product-level counter.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

type Variant struct {
	VariantID  string  `dynamodbav:"variant_id" json:"_id"`
	Color      string  `dynamodbav:"color"      json:"color"`
	Dimensions string  `dynamodbav:"dimensions" json:"dimensions,omitempty"`
	Stock      int     `dynamodbav:"stock"      json:"stock"`
	RealPrice  float64 `dynamodbav:"real_price" json:"realPrice"`
	Price      float64 `dynamodbav:"price"      json:"price"`
	Discount   float64 `dynamodbav:"discount"   json:"discount"`
}

// Descriptor is the human-readable variant summary shown in stock
// confirmation prompts.
func (v *Variant) Descriptor() string {
	if v.Dimensions == "" {
		return v.Color
	}
	return v.Color + " " + v.Dimensions
}

// VariantInput carries raw form values; prices arrive as strings so the
// discount derivation can share the same parsing rules as the UI.
type VariantInput struct {
	Color      string `json:"color"`
	Dimensions string `json:"dimensions"`
	Stock      *int   `json:"stock"`
	RealPrice  string `json:"realPrice"`
	Price      string `json:"price"`
}

type CreateProductRequest struct {
	Name             string         `json:"name" binding:"required"`
	Description      string         `json:"description" binding:"required"`
	Category         string         `json:"category" binding:"required"`
	Brand            string         `json:"brand"`
	SKU              string         `json:"sku"`
	RealPrice        string         `json:"realPrice" binding:"required"`
	Price            string         `json:"price" binding:"required"`
	Stock            int            `json:"stock" binding:"min=0"`
	Variants         []VariantInput `json:"variants"`
	Images           []string       `json:"images" binding:"required,min=1"`
	IsDiscounted     bool           `json:"isDiscounted"`
	LimitedTimeDeal  bool           `json:"limitedTimeDeal"`
	WeeklyDeal       bool           `json:"weeklyDeal"`
	BlackFridayOffer bool           `json:"blackFridayOffer"`
	Weight           string         `json:"weight"`
	Dimensions       string         `json:"dimensions"`
	Warranty         string         `json:"warranty"`
	CountryOfOrigin  string         `json:"countryOfOrigin"`
}

type UpdateProductRequest struct {
	CreateProductRequest
}

type StockAdjustRequest struct {
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	VariantID string `json:"variantId"`
}

type StockAdjustResponse struct {
	ProductID     string `json:"productId"`
	VariantID     string `json:"variantId,omitempty"`
	Operation     string `json:"operation"`
	Quantity      int    `json:"quantity"`
	PreviousStock int    `json:"previousStock"`
	NewStock      int    `json:"newStock"`
}

type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}
