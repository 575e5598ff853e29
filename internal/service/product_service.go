package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/cache"
	"github.com/kpmisthah/twaybastore-admin/internal/domain"
	"github.com/kpmisthah/twaybastore-admin/internal/guard"
	"github.com/kpmisthah/twaybastore-admin/internal/repository"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductExists        = errors.New("product already exists")
	ErrInvalidPrice         = errors.New("price fields must be non-negative numbers")
	ErrInvalidCategory      = errors.New("unknown product category")
	ErrTooManyImages        = errors.New("a product can have at most 7 images")
	ErrPrimaryImageRequired = errors.New("the first product image is required")
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type ProductService struct {
	productRepo *repository.ProductRepository
	cache       *cache.Cache
	logger      *zap.Logger
}

func NewProductService(productRepo *repository.ProductRepository, c *cache.Cache, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		cache:       c,
		logger:      logger,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	if !domain.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	realPrice, ok := guard.ParsePrice(req.RealPrice)
	if !ok {
		return nil, ErrInvalidPrice
	}
	price, ok := guard.ParsePrice(req.Price)
	if !ok {
		return nil, ErrInvalidPrice
	}

	images, err := normalizeImages(req.Images)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ProductID:        uuid.New().String(),
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		Brand:            req.Brand,
		SKU:              req.SKU,
		RealPrice:        realPrice,
		Price:            price,
		Discount:         guard.DiscountOrZero(req.RealPrice, req.Price),
		Stock:            req.Stock,
		Variants:         buildVariants(req.Variants, nil),
		Images:           images,
		IsDiscounted:     req.IsDiscounted,
		LimitedTimeDeal:  req.LimitedTimeDeal,
		WeeklyDeal:       req.WeeklyDeal,
		BlackFridayOffer: req.BlackFridayOffer,
		Weight:           req.Weight,
		Dimensions:       req.Dimensions,
		Warranty:         req.Warranty,
		CountryOfOrigin:  req.CountryOfOrigin,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductExists) {
			return nil, ErrProductExists
		}
		s.logger.Error("Failed to save product",
			zap.String("product_id", product.ProductID),
			zap.Error(err))
		return nil, err
	}

	s.invalidateListings(ctx)

	s.logger.Info("Product created successfully",
		zap.String("product_id", product.ProductID),
		zap.String("category", product.Category),
		zap.Int("variants", len(product.Variants)))

	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	key := fmt.Sprintf(cache.ProductDetailKey, productID)

	var cached domain.Product
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	product, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, key, product, cache.DefaultTTL); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, page, limit int, query string) (*domain.ProductListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	key := fmt.Sprintf(cache.ProductListKey, page, limit, query)
	var cached domain.ProductListResponse
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	products, total, err := s.productRepo.ListProducts(ctx, page, limit, query)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}
	resp := &domain.ProductListResponse{
		Products: products,
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}

	if err := s.cache.Set(ctx, key, resp, cache.DefaultTTL); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return resp, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error) {
	existing, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if !domain.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}
	realPrice, ok := guard.ParsePrice(req.RealPrice)
	if !ok {
		return nil, ErrInvalidPrice
	}
	price, ok := guard.ParsePrice(req.Price)
	if !ok {
		return nil, ErrInvalidPrice
	}
	images, err := normalizeImages(req.Images)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		ProductID:        productID,
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		Brand:            req.Brand,
		SKU:              req.SKU,
		RealPrice:        realPrice,
		Price:            price,
		Discount:         guard.DiscountOrZero(req.RealPrice, req.Price),
		Stock:            req.Stock,
		Variants:         buildVariants(req.Variants, existing.Variants),
		Images:           images,
		IsDiscounted:     req.IsDiscounted,
		LimitedTimeDeal:  req.LimitedTimeDeal,
		WeeklyDeal:       req.WeeklyDeal,
		BlackFridayOffer: req.BlackFridayOffer,
		Weight:           req.Weight,
		Dimensions:       req.Dimensions,
		Warranty:         req.Warranty,
		CountryOfOrigin:  req.CountryOfOrigin,
		CreatedAt:        existing.CreatedAt,
		UpdatedAt:        time.Now(),
	}

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		s.logger.Error("Failed to update product",
			zap.String("product_id", productID),
			zap.Error(err))
		return nil, err
	}

	s.invalidateProduct(ctx, productID)

	s.logger.Info("Product updated successfully",
		zap.String("product_id", productID))
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.productRepo.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		s.logger.Error("Failed to delete product",
			zap.String("product_id", productID),
			zap.Error(err))
		return err
	}

	s.invalidateProduct(ctx, productID)

	s.logger.Info("Product deleted",
		zap.String("product_id", productID))
	return nil
}

func (s *ProductService) invalidateListings(ctx context.Context) {
	if err := s.cache.DeleteByPattern(ctx, cache.ProductListPattern); err != nil {
		s.logger.Warn("Failed to invalidate product list cache", zap.Error(err))
	}
}

func (s *ProductService) invalidateProduct(ctx context.Context, productID string) {
	s.invalidateListings(ctx)
	if err := s.cache.Delete(ctx, fmt.Sprintf(cache.ProductDetailKey, productID)); err != nil {
		s.logger.Warn("Failed to invalidate product cache",
			zap.String("product_id", productID),
			zap.Error(err))
	}
}

// buildVariants applies the uniform inclusion rule: a variant needs a
// color, a stock count, and a parseable price; dimensions stay optional.
// Incomplete rows are dropped, matching how the admin forms always
// behaved. IDs of surviving existing variants are preserved so stock
// adjustments keyed on variant id stay valid across edits.
func buildVariants(inputs []domain.VariantInput, existing []domain.Variant) []domain.Variant {
	byColorDims := make(map[string]string, len(existing))
	for _, v := range existing {
		byColorDims[v.Color+"|"+v.Dimensions] = v.VariantID
	}

	variants := make([]domain.Variant, 0, len(inputs))
	for _, in := range inputs {
		if in.Color == "" || in.Stock == nil || *in.Stock < 0 {
			continue
		}
		price, ok := guard.ParsePrice(in.Price)
		if !ok {
			continue
		}

		var realPrice float64
		if in.RealPrice != "" {
			if rp, ok := guard.ParsePrice(in.RealPrice); ok {
				realPrice = rp
			}
		}

		id := byColorDims[in.Color+"|"+in.Dimensions]
		if id == "" {
			id = uuid.New().String()
		}

		variants = append(variants, domain.Variant{
			VariantID:  id,
			Color:      in.Color,
			Dimensions: in.Dimensions,
			Stock:      *in.Stock,
			RealPrice:  realPrice,
			Price:      price,
			Discount:   guard.DiscountOrZero(in.RealPrice, in.Price),
		})
	}
	return variants
}

func normalizeImages(images []string) ([]string, error) {
	cleaned := make([]string, 0, len(images))
	for _, img := range images {
		if img != "" {
			cleaned = append(cleaned, img)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrPrimaryImageRequired
	}
	if len(cleaned) > domain.MaxProductImages {
		return nil, ErrTooManyImages
	}
	return cleaned, nil
}
