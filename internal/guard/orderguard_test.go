package guard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
)

func guardAt(now time.Time) *OrderStatusGuard {
	g := NewOrderStatusGuard()
	g.now = func() time.Time { return now }
	return g
}

func TestEligibilityTimeLock(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := guardAt(now)

	fresh := &domain.Order{OrderID: "o1", Status: domain.StatusProcessing, CreatedAt: now.Add(-time.Hour)}
	assert.ErrorIs(t, g.Eligible(fresh), ErrStatusLocked)

	// Exactly at the boundary counts as eligible.
	boundary := &domain.Order{OrderID: "o2", Status: domain.StatusProcessing, CreatedAt: now.Add(-StatusChangeLockWindow)}
	assert.NoError(t, g.Eligible(boundary))

	justUnder := &domain.Order{OrderID: "o3", Status: domain.StatusProcessing, CreatedAt: now.Add(-StatusChangeLockWindow + time.Millisecond)}
	assert.ErrorIs(t, g.Eligible(justUnder), ErrStatusLocked)
}

func TestCancelledIsTerminal(t *testing.T) {
	now := time.Now()
	g := guardAt(now)

	old := &domain.Order{OrderID: "o1", Status: domain.StatusCancelled, CreatedAt: now.Add(-48 * time.Hour)}
	assert.ErrorIs(t, g.Eligible(old), ErrOrderCancelled)
	assert.ErrorIs(t, g.Authorize(old, ConfirmationCode(old.OrderID)), ErrOrderCancelled)
}

func TestConfirmationCode(t *testing.T) {
	assert.Equal(t, "9a3f21", ConfirmationCode("64bfa09e77c8d19e9a3f21"))
	assert.Equal(t, "abc", ConfirmationCode("abc"))
	assert.Equal(t, "abcdef", ConfirmationCode("abcdef"))
}

func TestAuthorizeChallenge(t *testing.T) {
	now := time.Now()
	g := guardAt(now)
	order := &domain.Order{
		OrderID:   "64bfa09e77c8d19e9a3f21",
		Status:    domain.StatusProcessing,
		CreatedAt: now.Add(-3 * time.Hour),
	}

	assert.ErrorIs(t, g.Authorize(order, ""), ErrConfirmationMismatch)
	assert.ErrorIs(t, g.Authorize(order, "wrong6"), ErrConfirmationMismatch)
	assert.ErrorIs(t, g.Authorize(order, "9A3F21"), ErrConfirmationMismatch) // exact match, case included
	assert.NoError(t, g.Authorize(order, "9a3f21"))
}

func TestRunClearsPendingOnEveryOutcome(t *testing.T) {
	g := NewOrderStatusGuard()

	require.NoError(t, g.Run("o1", func() error {
		assert.True(t, g.Pending("o1"))
		return nil
	}))
	assert.False(t, g.Pending("o1"))

	sentinel := errors.New("backend rejected")
	assert.ErrorIs(t, g.Run("o1", func() error { return sentinel }), sentinel)
	assert.False(t, g.Pending("o1"))

	assert.Panics(t, func() {
		_ = g.Run("o1", func() error { panic("boom") })
	})
	assert.False(t, g.Pending("o1"))
}

func TestRunRejectsConcurrentChangeForSameOrder(t *testing.T) {
	g := NewOrderStatusGuard()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- g.Run("o1", func() error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	assert.ErrorIs(t, g.Run("o1", func() error { return nil }), ErrStatusChangePending)
	// A different order is unaffected.
	assert.NoError(t, g.Run("o2", func() error { return nil }))

	close(release)
	require.NoError(t, <-done)
}

func TestSortOrders(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id string, s domain.OrderStatus, age time.Duration) domain.Order {
		return domain.Order{OrderID: id, Status: s, CreatedAt: base.Add(-age)}
	}

	orders := []domain.Order{
		mk("d", domain.StatusDelivered, 1*time.Hour),
		mk("p2", domain.StatusProcessing, 5*time.Hour),
		mk("c", domain.StatusCancelled, 2*time.Hour),
		mk("k", domain.StatusPacked, 3*time.Hour),
		mk("p1", domain.StatusProcessing, 1*time.Hour),
		mk("u", domain.OrderStatus("Refunded"), 1*time.Minute),
	}
	SortOrders(orders)

	var ids []string
	for _, o := range orders {
		ids = append(ids, o.OrderID)
	}
	// Priorities non-decreasing; within Processing, newest first; unknown
	// status sinks below Cancelled.
	assert.Equal(t, []string{"p1", "p2", "k", "d", "c", "u"}, ids)

	for i := 1; i < len(orders); i++ {
		prev, cur := orders[i-1], orders[i]
		assert.LessOrEqual(t, StatusPriority(prev.Status), StatusPriority(cur.Status))
		if StatusPriority(prev.Status) == StatusPriority(cur.Status) {
			assert.False(t, prev.CreatedAt.Before(cur.CreatedAt))
		}
	}
}

func TestStatusPriorityUnknown(t *testing.T) {
	assert.Equal(t, 99, StatusPriority(domain.OrderStatus("Mystery")))
	assert.Equal(t, 1, StatusPriority(domain.StatusProcessing))
	assert.Equal(t, 4, StatusPriority(domain.StatusCancelled))
}
