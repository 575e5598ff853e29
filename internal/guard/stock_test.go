package guard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type issuerRecorder struct {
	mu      sync.Mutex
	calls   []Summary
	keys    []Key
	err     error
	release chan struct{} // when set, issue blocks until closed
}

func (r *issuerRecorder) issue(ctx context.Context, key Key, op Operation, qty int) error {
	r.mu.Lock()
	r.calls = append(r.calls, Summary{Operation: op, Quantity: qty})
	r.keys = append(r.keys, key)
	release := r.release
	r.mu.Unlock()
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return r.err
}

func (r *issuerRecorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestAdjuster(r *issuerRecorder) *StockAdjuster {
	return NewStockAdjuster(r.issue, time.Second, zap.NewNop())
}

func TestBeginValidation(t *testing.T) {
	a := newTestAdjuster(&issuerRecorder{})
	key := Key{ProductID: "p1"}

	_, err := a.Begin(key, "Desk Lamp", "", OpAdd, 0)
	assert.ErrorIs(t, err, ErrQuantityTooSmall)

	_, err = a.Begin(key, "Desk Lamp", "", Operation("minusish"), 2)
	assert.ErrorIs(t, err, ErrUnknownOperation)

	sum, err := a.Begin(key, "Desk Lamp", "Black 40x40", OpSubtract, 3)
	require.NoError(t, err)
	assert.Equal(t, Summary{
		ProductName: "Desk Lamp",
		Variant:     "Black 40x40",
		Quantity:    3,
		Operation:   OpSubtract,
	}, sum)
}

func TestConfirmIssuesExactlyOneRequest(t *testing.T) {
	rec := &issuerRecorder{}
	a := newTestAdjuster(rec)
	key := Key{ProductID: "p1", VariantID: "v1"}

	_, err := a.Begin(key, "Desk Lamp", "Black", OpSubtract, 3)
	require.NoError(t, err)

	require.NoError(t, a.Confirm(context.Background(), key))
	assert.Equal(t, 1, rec.callCount())
	assert.Equal(t, Key{ProductID: "p1", VariantID: "v1"}, rec.keys[0])
	assert.Equal(t, OpSubtract, rec.calls[0].Operation)
	assert.Equal(t, 3, rec.calls[0].Quantity)

	// Key is back to idle: a second confirm has nothing to act on.
	assert.ErrorIs(t, a.Confirm(context.Background(), key), ErrNothingPending)
	assert.Equal(t, 1, rec.callCount())
}

func TestCancelIssuesNothing(t *testing.T) {
	rec := &issuerRecorder{}
	a := newTestAdjuster(rec)
	key := Key{ProductID: "p1"}

	_, err := a.Begin(key, "Desk Lamp", "", OpAdd, 5)
	require.NoError(t, err)

	a.Cancel(key)
	assert.Equal(t, 0, rec.callCount())
	assert.ErrorIs(t, a.Confirm(context.Background(), key), ErrNothingPending)
	assert.Equal(t, DefaultQuantity, a.StagedQuantity(key))
}

func TestInFlightFlagClearsOnFailureToo(t *testing.T) {
	rec := &issuerRecorder{err: errors.New("insufficient stock")}
	a := newTestAdjuster(rec)
	key := Key{ProductID: "p1"}

	_, err := a.Begin(key, "Desk Lamp", "", OpSubtract, 2)
	require.NoError(t, err)

	err = a.Confirm(context.Background(), key)
	assert.EqualError(t, err, "insufficient stock")

	// Not stuck: the key is idle again and accepts a new adjustment.
	assert.False(t, a.InFlight(key))
	assert.Equal(t, DefaultQuantity, a.StagedQuantity(key))
	_, err = a.Begin(key, "Desk Lamp", "", OpAdd, 1)
	assert.NoError(t, err)
}

func TestSecondCommitForSameKeyRejectedWhileInFlight(t *testing.T) {
	rec := &issuerRecorder{release: make(chan struct{})}
	a := newTestAdjuster(rec)
	key := Key{ProductID: "p1"}

	_, err := a.Begin(key, "Desk Lamp", "", OpAdd, 2)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Confirm(context.Background(), key) }()

	// Wait until the issuer is actually running.
	for rec.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	assert.True(t, a.InFlight(key))

	_, err = a.Begin(key, "Desk Lamp", "", OpAdd, 1)
	assert.ErrorIs(t, err, ErrAdjustmentInFlight)
	assert.ErrorIs(t, a.Confirm(context.Background(), key), ErrAdjustmentInFlight)

	close(rec.release)
	require.NoError(t, <-done)
	assert.False(t, a.InFlight(key))
	assert.Equal(t, 1, rec.callCount())
}

func TestIndependentKeysDoNotBlockEachOther(t *testing.T) {
	rec := &issuerRecorder{release: make(chan struct{})}
	a := newTestAdjuster(rec)
	k1 := Key{ProductID: "p1", VariantID: "v1"}
	k2 := Key{ProductID: "p1", VariantID: "v2"}

	_, err := a.Begin(k1, "Desk Lamp", "Black", OpAdd, 1)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Confirm(context.Background(), k1) }()
	for rec.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	// A different variant of the same product stays adjustable.
	_, err = a.Begin(k2, "Desk Lamp", "White", OpSubtract, 2)
	assert.NoError(t, err)

	close(rec.release)
	require.NoError(t, <-done)
}

func TestConfirmTimesOutHungIssuer(t *testing.T) {
	rec := &issuerRecorder{release: make(chan struct{})} // never closed
	a := NewStockAdjuster(rec.issue, 20*time.Millisecond, zap.NewNop())
	key := Key{ProductID: "p1"}

	_, err := a.Begin(key, "Desk Lamp", "", OpAdd, 1)
	require.NoError(t, err)

	err = a.Confirm(context.Background(), key)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, a.InFlight(key))
}
