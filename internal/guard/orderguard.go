package guard

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
)

// StatusChangeLockWindow is how long after placement an order's status is
// frozen. Protects against fat-fingering fresh orders.
const StatusChangeLockWindow = 2 * time.Hour

const confirmationLength = 6

var (
	ErrStatusLocked         = errors.New("order status can only be changed 2 hours after placement")
	ErrOrderCancelled       = errors.New("status cannot be changed for cancelled orders")
	ErrConfirmationMismatch = errors.New("enter the last 6 digits of the order id to confirm")
	ErrStatusChangePending  = errors.New("a status change for this order is already pending")
)

// statusPriority orders the admin view: work to do first, finished and
// dead orders last. Unknown statuses sink to the bottom.
var statusPriority = map[domain.OrderStatus]int{
	domain.StatusProcessing: 1,
	domain.StatusPacked:     2,
	domain.StatusDelivered:  3,
	domain.StatusCancelled:  4,
}

func StatusPriority(s domain.OrderStatus) int {
	if p, ok := statusPriority[s]; ok {
		return p
	}
	return 99
}

// ConfirmationCode is the challenge fragment for an order: its last six
// characters (the whole id when shorter).
func ConfirmationCode(orderID string) string {
	if len(orderID) <= confirmationLength {
		return orderID
	}
	return orderID[len(orderID)-confirmationLength:]
}

// SortOrders sorts in place by status priority ascending, then by
// creation time descending within the same status. Re-applied after
// every mutation, not just on load.
func SortOrders(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		pi, pj := StatusPriority(orders[i].Status), StatusPriority(orders[j].Status)
		if pi != pj {
			return pi < pj
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// OrderStatusGuard decides whether an order's status may change and holds
// the per-order pending flags while a change is underway.
type OrderStatusGuard struct {
	now func() time.Time

	mu      sync.Mutex
	pending map[string]bool
}

func NewOrderStatusGuard() *OrderStatusGuard {
	return &OrderStatusGuard{
		now:     time.Now,
		pending: make(map[string]bool),
	}
}

// Eligible reports whether order may leave its current status: the lock
// window must have elapsed (boundary inclusive) and Cancelled is
// terminal.
func (g *OrderStatusGuard) Eligible(order *domain.Order) error {
	if order.Status == domain.StatusCancelled {
		return ErrOrderCancelled
	}
	if g.now().Sub(order.CreatedAt) < StatusChangeLockWindow {
		return ErrStatusLocked
	}
	return nil
}

// Authorize runs the full gate for a status change: eligibility, then the
// typed challenge against the order id. It never touches the order.
func (g *OrderStatusGuard) Authorize(order *domain.Order, confirmation string) error {
	if err := g.Eligible(order); err != nil {
		return err
	}
	if confirmation == "" || confirmation != ConfirmationCode(order.OrderID) {
		return ErrConfirmationMismatch
	}
	return nil
}

// Run executes fn with the per-order pending flag held. The flag clears
// on success, failure, and panic alike; a second change for the same
// order while one is pending is rejected.
func (g *OrderStatusGuard) Run(orderID string, fn func() error) error {
	g.mu.Lock()
	if g.pending[orderID] {
		g.mu.Unlock()
		return ErrStatusChangePending
	}
	g.pending[orderID] = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.pending, orderID)
		g.mu.Unlock()
	}()

	return fn()
}

// Pending reports whether a status change for orderID is underway.
func (g *OrderStatusGuard) Pending(orderID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending[orderID]
}
