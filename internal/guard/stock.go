package guard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
)

// DefaultQuantity is the staged quantity for a key with no pending
// adjustment. The quantity control never goes below it.
const DefaultQuantity = 1

// DefaultAdjustTimeout bounds how long a confirmed adjustment may stay
// in flight before the key is forcibly released.
const DefaultAdjustTimeout = 15 * time.Second

var (
	ErrQuantityTooSmall   = errors.New("quantity must be at least 1")
	ErrUnknownOperation   = errors.New("operation must be add or subtract")
	ErrAdjustmentInFlight = errors.New("an adjustment for this item is already in flight")
	ErrNothingPending     = errors.New("no pending adjustment to confirm")
)

// Key identifies a stock counter: a product, or one of its variants.
type Key struct {
	ProductID string
	VariantID string
}

// Summary is the structured description shown to the operator before an
// adjustment takes effect.
type Summary struct {
	ProductName string    `json:"productName"`
	Variant     string    `json:"variant,omitempty"`
	Quantity    int       `json:"quantity"`
	Operation   Operation `json:"operation"`
}

// Issuer performs the single stock mutation for a confirmed adjustment.
type Issuer func(ctx context.Context, key Key, op Operation, qty int) error

type adjustState int

const (
	statePending adjustState = iota
	stateInFlight
)

type adjustment struct {
	state   adjustState
	summary Summary
}

// StockAdjuster mediates every stock mutation through an explicit
// begin/confirm handshake. Per key it is a three-state machine: idle,
// pending confirmation, in flight. At most one mutation per key may be
// outstanding; independent keys never block each other.
type StockAdjuster struct {
	mu      sync.Mutex
	staged  map[Key]*adjustment
	issue   Issuer
	timeout time.Duration
	logger  *zap.Logger
}

func NewStockAdjuster(issue Issuer, timeout time.Duration, logger *zap.Logger) *StockAdjuster {
	if timeout <= 0 {
		timeout = DefaultAdjustTimeout
	}
	return &StockAdjuster{
		staged:  make(map[Key]*adjustment),
		issue:   issue,
		timeout: timeout,
		logger:  logger,
	}
}

// Begin stages an adjustment for key and returns the summary to present
// to the operator. Nothing is mutated until Confirm. A key whose previous
// adjustment is still in flight rejects a new one.
func (a *StockAdjuster) Begin(key Key, productName, variant string, op Operation, qty int) (Summary, error) {
	if qty < DefaultQuantity {
		return Summary{}, ErrQuantityTooSmall
	}
	if op != OpAdd && op != OpSubtract {
		return Summary{}, ErrUnknownOperation
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if cur, ok := a.staged[key]; ok && cur.state == stateInFlight {
		return Summary{}, ErrAdjustmentInFlight
	}

	sum := Summary{
		ProductName: productName,
		Variant:     variant,
		Quantity:    qty,
		Operation:   op,
	}
	a.staged[key] = &adjustment{state: statePending, summary: sum}
	return sum, nil
}

// Cancel discards a pending adjustment. No request is issued. Cancelling
// an idle or in-flight key is a no-op.
func (a *StockAdjuster) Cancel(key Key) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cur, ok := a.staged[key]; ok && cur.state == statePending {
		delete(a.staged, key)
	}
}

// Confirm issues exactly one mutation for the pending adjustment on key.
// Whatever the outcome, the key returns to idle and its staged quantity
// resets, so a failed adjustment never wedges the key.
func (a *StockAdjuster) Confirm(ctx context.Context, key Key) error {
	a.mu.Lock()
	cur, ok := a.staged[key]
	if !ok {
		a.mu.Unlock()
		return ErrNothingPending
	}
	if cur.state == stateInFlight {
		a.mu.Unlock()
		return ErrAdjustmentInFlight
	}
	cur.state = stateInFlight
	sum := cur.summary
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		delete(a.staged, key)
		a.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	err := a.issue(ctx, key, sum.Operation, sum.Quantity)
	if err != nil {
		a.logger.Warn("stock adjustment failed",
			zap.String("product_id", key.ProductID),
			zap.String("variant_id", key.VariantID),
			zap.String("operation", string(sum.Operation)),
			zap.Int("quantity", sum.Quantity),
			zap.Error(err))
		return err
	}

	a.logger.Info("stock adjusted",
		zap.String("product_id", key.ProductID),
		zap.String("variant_id", key.VariantID),
		zap.String("operation", string(sum.Operation)),
		zap.Int("quantity", sum.Quantity))
	return nil
}

// InFlight reports whether key has an outstanding mutation. The commit
// control for a key is disabled while this is true.
func (a *StockAdjuster) InFlight(key Key) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	cur, ok := a.staged[key]
	return ok && cur.state == stateInFlight
}

// StagedQuantity returns the quantity staged for key, or DefaultQuantity
// when the key is idle.
func (a *StockAdjuster) StagedQuantity(key Key) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cur, ok := a.staged[key]; ok {
		return cur.summary.Quantity
	}
	return DefaultQuantity
}
