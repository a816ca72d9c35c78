package checkout

import (
	"testing"
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/internal/orders"
	"github.com/devnazarchuk/sneakers-shop/internal/storage"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

type trackerFixture struct {
	kv      *storage.MemoryStore
	store   *orders.Store
	tracker *Tracker
	now     time.Time
}

func newTrackerFixture() *trackerFixture {
	f := &trackerFixture{
		kv:  storage.NewMemoryStore(),
		now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.store = orders.NewStore(f.kv, logger.Nop())
	f.tracker = NewTracker(f.kv, f.store, 10*time.Minute, logger.Nop(), func() time.Time { return f.now })
	return f
}

func pendingOrder(sessionID string, date time.Time) models.Order {
	o := models.NewOrder(sessionID, []models.OrderItem{
		{ProductID: 1, Title: "Samba OG", Brand: "Adidas", Quantity: 1, Price: 99.99},
	}, nil)
	o.Date = date
	o.UpdatedAt = date
	return *o
}

func TestReconcileCancelsAbandonedPendingOrder(t *testing.T) {
	f := newTrackerFixture()

	// Checkout started 6 minutes ago, order 6 minutes old, still pending.
	started := f.now.Add(-6 * time.Minute)
	order := pendingOrder("cs_1", started)

	f.store.Save(order)

	f.now = started
	f.tracker.Begin("cs_1", "https://pay.example/cs_1", order)
	f.now = started.Add(6 * time.Minute)

	if !f.tracker.Reconcile(SignalPageHide, ReferrerPayment) {
		t.Fatal("Reconcile did not cancel an abandoned pending order")
	}

	got, ok := f.store.GetBySessionID("cs_1")

	if !ok {
		t.Fatal("cancelled order missing from store")
	}
	if got.Status != models.OrderStatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
	if got.CancellationReason == "" {
		t.Error("cancelled order carries no cancellation reason")
	}
	if got.CancellationReason != models.CancelledPageUnload {
		t.Errorf("reason = %s, want page_unload for a page-hide signal", got.CancellationReason)
	}

	if _, _, active := f.tracker.Active(); active {
		t.Error("session triple not cleared after reconcile")
	}
	if _, ok := f.kv.Get("order_cs_1"); ok {
		t.Error("order snapshot not cleared after reconcile")
	}
}

func TestReconcileStaleSessionClearsWithoutCancelling(t *testing.T) {
	f := newTrackerFixture()

	started := f.now.Add(-30 * time.Minute)
	order := pendingOrder("cs_2", started)

	f.store.Save(order)

	f.now = started
	f.tracker.Begin("cs_2", "https://pay.example/cs_2", order)
	f.now = started.Add(30 * time.Minute)

	if f.tracker.Reconcile(SignalFocusReturn, ReferrerPayment) {
		t.Error("Reconcile cancelled a session older than the window")
	}

	got, _ := f.store.GetBySessionID("cs_2")

	if got.Status != models.OrderStatusPending {
		t.Errorf("status = %s, want pending untouched", got.Status)
	}
	if _, _, active := f.tracker.Active(); active {
		t.Error("stale session triple not garbage-collected")
	}
}

func TestReconcileIgnoresNonPaymentReferrer(t *testing.T) {
	f := newTrackerFixture()

	order := pendingOrder("cs_3", f.now)
	f.store.Save(order)
	f.tracker.Begin("cs_3", "https://pay.example/cs_3", order)

	f.now = f.now.Add(2 * time.Minute)

	if f.tracker.Reconcile(SignalFocusReturn, ReferrerInternal) {
		t.Error("Reconcile cancelled on an internal-referrer signal")
	}

	got, _ := f.store.GetBySessionID("cs_3")

	if got.Status != models.OrderStatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
}

func TestReconcileSkipsAlreadyPaidSnapshot(t *testing.T) {
	f := newTrackerFixture()

	order := pendingOrder("cs_4", f.now)
	f.store.Save(order)
	f.tracker.Begin("cs_4", "https://pay.example/cs_4", order)

	// Webhook beat the navigation signal.
	f.store.UpdateStatus(order.ID, models.OrderStatusPaid)

	paid := order
	paid.Status = models.OrderStatusPaid
	f.tracker.Begin("cs_4", "https://pay.example/cs_4", paid)

	f.now = f.now.Add(2 * time.Minute)

	if f.tracker.Reconcile(SignalPageHide, ReferrerPayment) {
		t.Error("Reconcile cancelled a snapshot that was no longer pending")
	}

	got, _ := f.store.GetBySessionID("cs_4")

	if got.Status != models.OrderStatusPaid {
		t.Errorf("status = %s, want paid preserved", got.Status)
	}
}

func TestCompleteFlipsSnapshotToPaid(t *testing.T) {
	f := newTrackerFixture()

	order := pendingOrder("cs_5", f.now)
	f.store.Save(order)
	f.tracker.Begin("cs_5", "https://pay.example/cs_5", order)

	if !f.tracker.Complete("cs_5") {
		t.Fatal("Complete returned false with a live snapshot")
	}

	got, _ := f.store.GetBySessionID("cs_5")

	if got.Status != models.OrderStatusPaid {
		t.Errorf("status = %s, want paid", got.Status)
	}
	if _, _, active := f.tracker.Active(); active {
		t.Error("session triple survived completion")
	}
}

func TestCompleteWithoutSnapshotFallsBackToStore(t *testing.T) {
	f := newTrackerFixture()

	order := pendingOrder("cs_6", f.now)
	f.store.Save(order)

	if !f.tracker.Complete("cs_6") {
		t.Fatal("Complete returned false despite a store record")
	}

	got, _ := f.store.GetBySessionID("cs_6")

	if got.Status != models.OrderStatusPaid {
		t.Errorf("status = %s, want paid", got.Status)
	}
}

func TestReconcileWithoutActiveSessionIsNoop(t *testing.T) {
	f := newTrackerFixture()

	if f.tracker.Reconcile(SignalPageHide, ReferrerPayment) {
		t.Error("Reconcile wrote a cancellation with no active session")
	}
}
