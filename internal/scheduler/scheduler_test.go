package scheduler

import (
	"math/rand"
	"testing"
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/lifecycle"
	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/internal/orders"
	"github.com/devnazarchuk/sneakers-shop/internal/storage"
	"github.com/devnazarchuk/sneakers-shop/internal/tracking"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

func newTestScheduler(t *testing.T) (*Scheduler, *orders.Store, time.Time) {
	t.Helper()

	log := logger.Nop()
	store := orders.NewStore(storage.NewMemoryStore(), log)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gen := tracking.NewGenerator(rand.New(rand.NewSource(1)), func() time.Time { return now })
	advancer := lifecycle.NewAdvancer(store, gen, log, func() time.Time { return now })

	return New(store, advancer, time.Hour, log), store, now
}

func TestRunOnceExpiresAdvancesAndDeduplicates(t *testing.T) {
	sched, store, now := newTestScheduler(t)

	stale := models.NewOrder("cs_stale", nil, nil)
	stale.Date = now.Add(-10 * time.Minute)
	store.Save(*stale)

	paid := models.NewOrder("cs_paid", nil, nil)
	paid.Status = models.OrderStatusPaid
	paid.Date = now.Add(-30 * time.Minute)
	paid.UpdatedAt = now.Add(-30 * time.Minute)
	store.Save(*paid)

	sched.RunOnce()

	got, _ := store.GetByID("cs_stale")

	if got.Status != models.OrderStatusExpired {
		t.Errorf("stale pending order = %s, want expired", got.Status)
	}

	got, _ = store.GetByID("cs_paid")

	if got.Status != models.OrderStatusProcessing {
		t.Errorf("paid order = %s, want processing", got.Status)
	}
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	sched, _, _ := newTestScheduler(t)

	sched.Start()
	sched.Start()
	sched.Stop()
	sched.Stop()
}
