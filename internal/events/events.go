package events

import (
	"time"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
)

const (
	TopicOrderEvents       = "order-events"
	TopicStockEvents       = "stock-events"
	TopicOrderStatusEvents = "order-status-events"
)

// OrderCreatedEvent is published by the checkout service when a customer
// places an order. This service only ever consumes it; orders are never
// created here.
type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	Order     domain.Order `json:"order"`
	Timestamp time.Time    `json:"timestamp"`
	RequestID string       `json:"request_id,omitempty"`
}

// StockAdjustedEvent records a confirmed admin stock mutation.
type StockAdjustedEvent struct {
	EventID       string    `json:"event_id"`
	ProductID     string    `json:"product_id"`
	VariantID     string    `json:"variant_id,omitempty"`
	Operation     string    `json:"operation"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	Timestamp     time.Time `json:"timestamp"`
}

// OrderStatusChangedEvent records an admin-approved status transition.
type OrderStatusChangedEvent struct {
	EventID        string             `json:"event_id"`
	OrderID        string             `json:"order_id"`
	PreviousStatus domain.OrderStatus `json:"previous_status"`
	NewStatus      domain.OrderStatus `json:"new_status"`
	Timestamp      time.Time          `json:"timestamp"`
}
