package orders

import (
	"encoding/json"
	"sync"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/internal/storage"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

// ordersKey is the persisted collection key. The whole collection is the unit
// of mutation and the unit of broadcast.
const ordersKey = "orders"

// Store is the order collection: a keyed-unique list persisted newest-first
// under one key. It owns the change notifier; every mutation broadcasts the
// full current collection so mounted surfaces re-read rather than diff.
//
// All mutations go through one mutex and re-read the persisted collection
// before writing. The original product accepted lost updates between
// overlapping sweeps; serializing here removes that window on purpose.
type Store struct {
	kv     storage.Store
	logger logger.Logger

	mu sync.Mutex // serializes mutations

	subMu   sync.Mutex
	subs    map[int]func([]models.Order)
	nextSub int
}

// NewStore creates an order store over the given persistence boundary.
func NewStore(kv storage.Store, log logger.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: log,
		subs:   make(map[int]func([]models.Order)),
	}
}

// load reads the persisted collection. A missing or corrupt value degrades to
// an empty collection; a broken store must never block the shop.
func (s *Store) load() []models.Order {
	raw, ok := s.kv.Get(ordersKey)

	if !ok {
		return nil
	}

	var orders []models.Order

	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		s.logger.Error("Failed to parse stored orders, treating store as empty", "error", err)
		return nil
	}

	return orders
}

// persist writes the collection back. Write faults are logged and swallowed.
func (s *Store) persist(orders []models.Order) {
	raw, err := json.Marshal(orders)

	if err != nil {
		s.logger.Error("Failed to encode orders", "error", err)
		return
	}

	if err := s.kv.Set(ordersKey, string(raw)); err != nil {
		s.logger.Error("Failed to persist orders", "error", err)
	}
}

// GetAll returns the full collection in persisted order, newest-first by
// insertion.
func (s *Store) GetAll() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// GetByID returns the order with the given id.
func (s *Store) GetByID(id string) (models.Order, bool) {
	for _, o := range s.GetAll() {
		if o.ID == id {
			return o, true
		}
	}

	return models.Order{}, false
}

// GetBySessionID returns the order correlated with the given checkout session.
func (s *Store) GetBySessionID(sessionID string) (models.Order, bool) {
	if sessionID == "" {
		return models.Order{}, false
	}

	for _, o := range s.GetAll() {
		if o.SessionID == sessionID {
			return o, true
		}
	}

	return models.Order{}, false
}

// Save upserts an order: by id first, then by sessionId, else insert-at-front.
// Duplicate writes from the webhook and the client resolve here; last write
// wins, no error raised.
func (s *Store) Save(order models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.load()
	matched := false

	for i := range stored {
		if stored[i].ID == order.ID {
			stored[i] = order
			matched = true
			break
		}
	}

	if !matched && order.SessionID != "" {
		for i := range stored {
			if stored[i].SessionID == order.SessionID {
				stored[i] = order
				matched = true
				break
			}
		}
	}

	if !matched {
		stored = append([]models.Order{order}, stored...)
	}

	s.persist(stored)
	s.broadcast(stored)
}

// UpdateStatus updates just the status of one order and broadcasts the full
// collection. Terminal statuses are never exited and the status never moves
// backward; a violating write is logged and skipped.
func (s *Store) UpdateStatus(id string, status models.OrderStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.load()

	for i := range stored {
		if stored[i].ID != id {
			continue
		}

		if stored[i].Status == status {
			return
		}

		if !allowTransition(stored[i].Status, status) {
			s.logger.Warn("Skipping status write that would move backward",
				"orderID", id,
				"from", stored[i].Status,
				"to", status)
			return
		}

		stored[i].Status = status
		stored[i].UpdatedAt = models.GetCurrentTime()

		s.persist(stored)
		s.broadcast(stored)
		return
	}

	s.logger.Warn("Status update for unknown order", "orderID", id, "status", status)
}

// Deduplicate collapses entries sharing the same id, keeping the one with the
// latest date. Storage is rewritten and subscribers notified only when the
// collection actually shrank.
func (s *Store) Deduplicate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.load()

	best := make(map[string]int, len(stored))
	deduped := make([]models.Order, 0, len(stored))

	for _, o := range stored {
		if i, seen := best[o.ID]; seen {
			if o.Date.After(deduped[i].Date) {
				deduped[i] = o
			}
			continue
		}

		best[o.ID] = len(deduped)
		deduped = append(deduped, o)
	}

	if len(deduped) == len(stored) {
		return
	}

	s.logger.Info("Removed duplicate orders", "before", len(stored), "after", len(deduped))
	s.persist(deduped)
	s.broadcast(deduped)
}

// Mutate applies fn to the order with the given id under the store lock and
// persists the result. The lifecycle advancer uses it so a read-modify-write
// of a single order cannot interleave with another sweep.
func (s *Store) Mutate(id string, fn func(*models.Order) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.load()

	for i := range stored {
		if stored[i].ID != id {
			continue
		}

		if !fn(&stored[i]) {
			return
		}

		s.persist(stored)
		s.broadcast(stored)
		return
	}
}

// allowTransition reports whether an order status may move from one value to
// another along the canonical path.
func allowTransition(from, to models.OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}

	return statusRank(to) >= statusRank(from)
}

func statusRank(s models.OrderStatus) int {
	switch s {
	case models.OrderStatusPending:
		return 0
	case models.OrderStatusPaid, models.OrderStatusCancelled, models.OrderStatusFailed, models.OrderStatusExpired:
		return 1
	case models.OrderStatusProcessing:
		return 2
	case models.OrderStatusShipped:
		return 3
	case models.OrderStatusDelivered:
		return 4
	default:
		return 0
	}
}
