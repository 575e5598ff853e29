package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
	"github.com/kpmisthah/twaybastore-admin/internal/events"
	"github.com/kpmisthah/twaybastore-admin/internal/guard"
	"github.com/kpmisthah/twaybastore-admin/internal/repository"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("unknown order status")
)

type StatusEventPublisher interface {
	PublishOrderStatusChanged(event events.OrderStatusChangedEvent) error
}

// OrderService serves the admin order console: sorted listings and
// guarded status transitions.
type OrderService struct {
	orderRepo   *repository.OrderRepository
	statusGuard *guard.OrderStatusGuard
	producer    StatusEventPublisher
	logger      *zap.Logger
}

func NewOrderService(orderRepo *repository.OrderRepository, statusGuard *guard.OrderStatusGuard, producer StatusEventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		statusGuard: statusGuard,
		producer:    producer,
		logger:      logger,
	}
}

// ListOrders returns all orders in display order: open work first,
// newest first within a status.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	guard.SortOrders(orders)
	return orders, nil
}

// ChangeStatus applies a guarded status transition: the order must be
// outside its lock window and not cancelled, the operator must have
// typed the last-6 challenge, and only one change per order may be
// underway. A rejected change leaves the order untouched.
func (s *OrderService) ChangeStatus(ctx context.Context, orderID string, req domain.ChangeStatusRequest) (*domain.Order, error) {
	if !domain.ValidOrderStatus(req.Status) {
		return nil, ErrInvalidStatus
	}

	order, err := s.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if err := s.statusGuard.Authorize(order, req.Confirmation); err != nil {
		return nil, err
	}

	var updated *domain.Order
	err = s.statusGuard.Run(orderID, func() error {
		var runErr error
		updated, runErr = s.orderRepo.UpdateStatus(ctx, orderID, req.Status)
		return runErr
	})
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		if errors.Is(err, repository.ErrOrderCancelled) {
			return nil, guard.ErrOrderCancelled
		}
		s.logger.Error("Failed to change order status",
			zap.String("order_id", orderID),
			zap.String("new_status", string(req.Status)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", orderID),
		zap.String("previous_status", string(order.Status)),
		zap.String("new_status", string(req.Status)))

	event := events.OrderStatusChangedEvent{
		EventID:        uuid.New().String(),
		OrderID:        orderID,
		PreviousStatus: order.Status,
		NewStatus:      req.Status,
		Timestamp:      time.Now(),
	}
	if err := s.producer.PublishOrderStatusChanged(event); err != nil {
		s.logger.Warn("Failed to publish order status event",
			zap.String("event_id", event.EventID),
			zap.Error(err))
	}

	return updated, nil
}
