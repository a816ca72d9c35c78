package checkout

import (
	"encoding/json"
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/internal/orders"
	"github.com/devnazarchuk/sneakers-shop/internal/storage"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

// Session-tracker keys. One in-flight session at a time; the snapshot key is
// derived from the session id.
const (
	activeSessionKey = "active_checkout_session"
	startedAtKey     = "checkout_started_at"
	checkoutURLKey   = "checkout_url"
	snapshotPrefix   = "order_"
)

// Tracker follows one in-flight external checkout at a time and reconciles
// it into a cancellation when the user comes back without paying.
type Tracker struct {
	kv     storage.Store
	store  *orders.Store
	logger logger.Logger
	window time.Duration
	now    func() time.Time
}

// NewTracker creates a session tracker with the given abandonment window.
func NewTracker(kv storage.Store, store *orders.Store, window time.Duration, log logger.Logger, now func() time.Time) *Tracker {
	if now == nil {
		now = models.GetCurrentTime
	}

	return &Tracker{
		kv:     kv,
		store:  store,
		logger: log,
		window: window,
		now:    now,
	}
}

// Begin records the session triple and mirrors the pending order snapshot
// under the session-scoped key.
func (t *Tracker) Begin(sessionID, url string, order models.Order) {
	if err := t.kv.Set(activeSessionKey, sessionID); err != nil {
		t.logger.Error("Failed to record active session", "error", err)
	}
	if err := t.kv.Set(startedAtKey, t.now().Format(time.RFC3339)); err != nil {
		t.logger.Error("Failed to record session start", "error", err)
	}
	if err := t.kv.Set(checkoutURLKey, url); err != nil {
		t.logger.Error("Failed to record checkout url", "error", err)
	}

	raw, err := json.Marshal(order)

	if err != nil {
		t.logger.Error("Failed to encode order snapshot", "error", err)
		return
	}

	if err := t.kv.Set(snapshotPrefix+sessionID, string(raw)); err != nil {
		t.logger.Error("Failed to persist order snapshot", "error", err)
	}
}

// Active returns the in-flight session, if any.
func (t *Tracker) Active() (sessionID string, startedAt time.Time, ok bool) {
	sessionID, ok = t.kv.Get(activeSessionKey)

	if !ok || sessionID == "" {
		return "", time.Time{}, false
	}

	raw, ok := t.kv.Get(startedAtKey)

	if !ok {
		return sessionID, time.Time{}, true
	}

	startedAt, err := time.Parse(time.RFC3339, raw)

	if err != nil {
		t.logger.Warn("Unparseable session start, treating session as stale", "value", raw)
		return sessionID, time.Time{}, true
	}

	return sessionID, startedAt, true
}

// Reconcile resolves the in-flight session against a navigation signal. When
// the signal classifies as an abandonment and the snapshot order is still
// pending, a cancelled order is written; otherwise the session state is just
// garbage-collected. Returns true when a cancellation was written.
func (t *Tracker) Reconcile(signal Signal, referrer ReferrerCategory) bool {
	sessionID, startedAt, ok := t.Active()

	if !ok {
		return false
	}

	// Whatever happens below, the session is finished after a boundary
	// signal: either it becomes a cancelled order or it is garbage.
	defer t.clear(sessionID)

	if !IsAbandonment(t.now(), startedAt, t.window, referrer) {
		t.logger.Debug("Session not classified as abandonment",
			"sessionID", sessionID,
			"signal", signal,
			"referrer", referrer)
		return false
	}

	snapshot, ok := t.snapshot(sessionID)

	if !ok {
		if stored, found := t.store.GetBySessionID(sessionID); found {
			snapshot = stored
			ok = true
		}
	}

	if !ok || snapshot.Status != models.OrderStatusPending {
		return false
	}

	now := t.now()
	snapshot.Status = models.OrderStatusCancelled
	snapshot.CancellationReason = reasonFor(signal)
	snapshot.UpdatedAt = now

	t.store.Save(snapshot)
	t.logger.Info("Checkout abandoned, wrote cancelled order",
		"sessionID", sessionID,
		"reason", snapshot.CancellationReason)
	return true
}

// Complete is the success boundary: flips the snapshot order to paid and
// clears the session. The lifecycle advancer picks the order up from there.
func (t *Tracker) Complete(sessionID string) bool {
	if sessionID == "" {
		return false
	}

	defer t.clear(sessionID)

	if snapshot, ok := t.snapshot(sessionID); ok {
		snapshot.Status = models.OrderStatusPaid
		snapshot.UpdatedAt = t.now()
		t.store.Save(snapshot)
		return true
	}

	if order, found := t.store.GetBySessionID(sessionID); found {
		t.store.UpdateStatus(order.ID, models.OrderStatusPaid)
		return true
	}

	t.logger.Warn("Success boundary hit with no matching order", "sessionID", sessionID)
	return false
}

func (t *Tracker) snapshot(sessionID string) (models.Order, bool) {
	raw, ok := t.kv.Get(snapshotPrefix + sessionID)

	if !ok {
		return models.Order{}, false
	}

	var order models.Order

	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		t.logger.Error("Failed to parse order snapshot", "sessionID", sessionID, "error", err)
		return models.Order{}, false
	}

	return order, true
}

func (t *Tracker) clear(sessionID string) {
	for _, key := range []string{activeSessionKey, startedAtKey, checkoutURLKey, snapshotPrefix + sessionID} {
		if err := t.kv.Delete(key); err != nil {
			t.logger.Error("Failed to clear session key", "key", key, "error", err)
		}
	}
}
