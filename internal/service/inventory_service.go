package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/cache"
	"github.com/kpmisthah/twaybastore-admin/internal/domain"
	"github.com/kpmisthah/twaybastore-admin/internal/events"
	"github.com/kpmisthah/twaybastore-admin/internal/guard"
	"github.com/kpmisthah/twaybastore-admin/internal/repository"
)

var (
	ErrVariantNotFound    = errors.New("variant not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrAdjustmentInFlight = errors.New("an adjustment for this item is already in flight")
)

// EventPublisher is the slice of the Kafka producer the inventory
// service needs.
type EventPublisher interface {
	PublishStockAdjusted(event events.StockAdjustedEvent) error
}

// InventoryService mediates every stock mutation through the
// StockAdjuster: stage, confirm, issue exactly one atomic update, then
// refresh catalog truth from the store.
type InventoryService struct {
	productRepo *repository.ProductRepository
	adjuster    *guard.StockAdjuster
	producer    EventPublisher
	cache       *cache.Cache
	logger      *zap.Logger

	lastResult resultStash
}

// resultStash carries the issuer's outcome back to the caller of
// AdjustStock. Guarded because distinct keys adjust concurrently.
type resultStash struct {
	mu      sync.Mutex
	results map[guard.Key]domain.StockAdjustResponse
}

func (r *resultStash) put(key guard.Key, resp domain.StockAdjustResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[key] = resp
}

func (r *resultStash) take(key guard.Key) domain.StockAdjustResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := r.results[key]
	delete(r.results, key)
	return resp
}

func NewInventoryService(productRepo *repository.ProductRepository, producer EventPublisher, c *cache.Cache, adjustTimeout time.Duration, logger *zap.Logger) *InventoryService {
	s := &InventoryService{
		productRepo: productRepo,
		producer:    producer,
		cache:       c,
		logger:      logger,
		lastResult:  resultStash{results: make(map[guard.Key]domain.StockAdjustResponse)},
	}
	s.adjuster = guard.NewStockAdjuster(s.issue, adjustTimeout, logger)
	return s
}

// AdjustStock runs the full confirmed-adjustment flow for one key. The
// HTTP request itself is the operator's confirmation: the dashboard only
// submits after its confirm dialog, so Begin and Confirm happen
// back-to-back here while still enforcing the one-in-flight-per-key rule
// and the exactly-one-mutation guarantee.
func (s *InventoryService) AdjustStock(ctx context.Context, productID string, req domain.StockAdjustRequest, op guard.Operation) (*domain.StockAdjustResponse, error) {
	product, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	variantDesc := ""
	if req.VariantID != "" {
		found := false
		for i := range product.Variants {
			if product.Variants[i].VariantID == req.VariantID {
				variantDesc = product.Variants[i].Descriptor()
				found = true
				break
			}
		}
		if !found {
			return nil, ErrVariantNotFound
		}
	}

	key := guard.Key{ProductID: productID, VariantID: req.VariantID}

	summary, err := s.adjuster.Begin(key, product.Name, variantDesc, op, req.Quantity)
	if err != nil {
		if errors.Is(err, guard.ErrAdjustmentInFlight) {
			return nil, ErrAdjustmentInFlight
		}
		return nil, err
	}

	s.logger.Info("Stock adjustment staged",
		zap.String("product", summary.ProductName),
		zap.String("variant", summary.Variant),
		zap.String("operation", string(summary.Operation)),
		zap.Int("quantity", summary.Quantity))

	if err := s.adjuster.Confirm(ctx, key); err != nil {
		if errors.Is(err, guard.ErrAdjustmentInFlight) {
			return nil, ErrAdjustmentInFlight
		}
		return nil, err
	}

	result := s.lastResult.take(key)

	// Catalog pages are stale the moment the counter moves; readers must
	// refetch server truth rather than extrapolate.
	s.invalidate(ctx, productID)

	event := events.StockAdjustedEvent{
		EventID:       uuid.New().String(),
		ProductID:     productID,
		VariantID:     req.VariantID,
		Operation:     string(op),
		Quantity:      req.Quantity,
		PreviousStock: result.PreviousStock,
		NewStock:      result.NewStock,
		Timestamp:     time.Now(),
	}
	if err := s.producer.PublishStockAdjusted(event); err != nil {
		// The mutation is already committed; the event is advisory.
		s.logger.Warn("Failed to publish stock event",
			zap.String("event_id", event.EventID),
			zap.Error(err))
	}

	return &result, nil
}

// InFlight reports whether key has an outstanding mutation, for the
// dashboard to disable the commit control.
func (s *InventoryService) InFlight(productID, variantID string) bool {
	return s.adjuster.InFlight(guard.Key{ProductID: productID, VariantID: variantID})
}

// issue is the StockAdjuster's issuer: the single atomic repository
// update per confirmed adjustment.
func (s *InventoryService) issue(ctx context.Context, key guard.Key, op guard.Operation, qty int) error {
	newStock, prevStock, err := s.productRepo.AdjustStock(ctx, key.ProductID, key.VariantID, qty, op == guard.OpSubtract)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return ErrProductNotFound
		case errors.Is(err, repository.ErrVariantNotFound):
			return ErrVariantNotFound
		case errors.Is(err, repository.ErrInsufficientStock):
			return ErrInsufficientStock
		}
		return err
	}

	s.lastResult.put(key, domain.StockAdjustResponse{
		ProductID:     key.ProductID,
		VariantID:     key.VariantID,
		Operation:     string(op),
		Quantity:      qty,
		PreviousStock: prevStock,
		NewStock:      newStock,
	})
	return nil
}

func (s *InventoryService) invalidate(ctx context.Context, productID string) {
	if err := s.cache.DeleteByPattern(ctx, cache.ProductListPattern); err != nil {
		s.logger.Warn("Failed to invalidate product list cache", zap.Error(err))
	}
	if err := s.cache.Delete(ctx, fmt.Sprintf(cache.ProductDetailKey, productID)); err != nil {
		s.logger.Warn("Failed to invalidate product cache",
			zap.String("product_id", productID),
			zap.Error(err))
	}
}
