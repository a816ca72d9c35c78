package orders

import (
	"testing"
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/internal/storage"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

func newTestStore() *Store {
	return NewStore(storage.NewMemoryStore(), logger.Nop())
}

func order(id, sessionID string, status models.OrderStatus, date time.Time) models.Order {
	return models.Order{
		ID:        id,
		SessionID: sessionID,
		Date:      date,
		UpdatedAt: date,
		Status:    status,
		Items:     []models.OrderItem{{ProductID: 1, Title: "Air Max 90", Quantity: 1, Price: 120}},
	}
}

func TestSaveInsertsNewestFirst(t *testing.T) {
	s := newTestStore()
	now := time.Now().UTC()

	s.Save(order("a", "", models.OrderStatusPending, now))
	s.Save(order("b", "", models.OrderStatusPending, now.Add(time.Minute)))

	got := s.GetAll()

	if len(got) != 2 {
		t.Fatalf("got %d orders, want 2", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("order = [%s, %s], want newest-first [b, a]", got[0].ID, got[1].ID)
	}
}

func TestSaveUpsertsByID(t *testing.T) {
	s := newTestStore()
	now := time.Now().UTC()

	s.Save(order("a", "", models.OrderStatusPending, now))

	updated := order("a", "", models.OrderStatusPaid, now)
	s.Save(updated)

	got := s.GetAll()

	if len(got) != 1 {
		t.Fatalf("got %d orders, want 1", len(got))
	}
	if got[0].Status != models.OrderStatusPaid {
		t.Errorf("status = %s, want paid", got[0].Status)
	}
}

func TestSaveUpsertsBySessionID(t *testing.T) {
	s := newTestStore()
	now := time.Now().UTC()

	s.Save(order("client-id", "cs_123", models.OrderStatusPending, now))

	// Webhook write for the same session under a different id shape.
	s.Save(order("pi_456", "cs_123", models.OrderStatusPaid, now))

	got := s.GetAll()

	if len(got) != 1 {
		t.Fatalf("got %d orders, want 1 (session upsert)", len(got))
	}
	if got[0].ID != "pi_456" || got[0].Status != models.OrderStatusPaid {
		t.Errorf("got %s/%s, want pi_456/paid", got[0].ID, got[0].Status)
	}
}

func TestGetByIDAbsence(t *testing.T) {
	s := newTestStore()

	if _, ok := s.GetByID("missing"); ok {
		t.Error("GetByID on empty store should report absence")
	}
	if _, ok := s.GetBySessionID(""); ok {
		t.Error("GetBySessionID with empty session should report absence")
	}
}

func TestUpdateStatusNeverMovesBackward(t *testing.T) {
	s := newTestStore()
	now := time.Now().UTC()

	s.Save(order("a", "", models.OrderStatusProcessing, now))
	s.UpdateStatus("a", models.OrderStatusPaid)

	got, _ := s.GetByID("a")

	if got.Status != models.OrderStatusProcessing {
		t.Errorf("status = %s, want processing (backward write skipped)", got.Status)
	}
}

func TestUpdateStatusNeverExitsTerminal(t *testing.T) {
	s := newTestStore()
	now := time.Now().UTC()

	s.Save(order("a", "", models.OrderStatusCancelled, now))
	s.UpdateStatus("a", models.OrderStatusPaid)

	got, _ := s.GetByID("a")

	if got.Status != models.OrderStatusCancelled {
		t.Errorf("status = %s, want cancelled to stay terminal", got.Status)
	}
}

func TestDeduplicateKeepsLatest(t *testing.T) {
	s := newTestStore()
	now := time.Now().UTC()

	older := order("dup", "", models.OrderStatusPending, now.Add(-time.Hour))
	newer := order("dup", "", models.OrderStatusPaid, now)

	// Bypass Save's upsert to get a genuinely duplicated collection, the way
	// two racing writers could have produced it.
	s.persist([]models.Order{older, newer})

	s.Deduplicate()

	got := s.GetAll()

	if len(got) != 1 {
		t.Fatalf("got %d orders after dedup, want 1", len(got))
	}
	if !got[0].Date.Equal(newer.Date) {
		t.Errorf("dedup kept date %v, want the later %v", got[0].Date, newer.Date)
	}
}

func TestDeduplicateNoopKeepsStorageUntouched(t *testing.T) {
	s := newTestStore()
	now := time.Now().UTC()

	s.Save(order("a", "", models.OrderStatusPending, now))

	notified := 0
	defer s.Subscribe(func([]models.Order) { notified++ })()

	s.Deduplicate()

	if notified != 0 {
		t.Errorf("dedup of a clean collection broadcast %d times, want 0", notified)
	}
}

func TestSubscribeReceivesFullCollection(t *testing.T) {
	s := newTestStore()
	now := time.Now().UTC()

	var seen [][]models.Order
	unsubscribe := s.Subscribe(func(orders []models.Order) {
		seen = append(seen, orders)
	})

	s.Save(order("a", "", models.OrderStatusPending, now))
	s.Save(order("b", "", models.OrderStatusPending, now.Add(time.Second)))

	if len(seen) != 2 {
		t.Fatalf("got %d broadcasts, want 2", len(seen))
	}
	if len(seen[1]) != 2 {
		t.Errorf("second broadcast carried %d orders, want the full collection of 2", len(seen[1]))
	}

	unsubscribe()
	s.Save(order("c", "", models.OrderStatusPending, now.Add(2*time.Second)))

	if len(seen) != 2 {
		t.Errorf("got broadcast after unsubscribe")
	}
}

func TestCorruptStoreReadsAsEmpty(t *testing.T) {
	kv := storage.NewMemoryStore()
	kv.Set(ordersKey, "{not json")

	s := NewStore(kv, logger.Nop())

	if got := s.GetAll(); len(got) != 0 {
		t.Errorf("corrupt store read %d orders, want 0", len(got))
	}

	// The store must stay writable after a corrupt read.
	s.Save(order("a", "", models.OrderStatusPending, time.Now().UTC()))

	if got := s.GetAll(); len(got) != 1 {
		t.Errorf("store not writable after corrupt read, got %d orders", len(got))
	}
}
