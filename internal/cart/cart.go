package cart

import (
	"encoding/json"
	"sync"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/internal/storage"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

const cartKey = "cart"

// Store is the shopping cart: order lines keyed by product, size and color.
// Same degradation contract as the order store; a broken cart reads as empty.
type Store struct {
	kv     storage.Store
	logger logger.Logger
	mu     sync.Mutex
}

// NewStore creates a cart over the given persistence boundary.
func NewStore(kv storage.Store, log logger.Logger) *Store {
	return &Store{kv: kv, logger: log}
}

func (s *Store) load() []models.OrderItem {
	raw, ok := s.kv.Get(cartKey)

	if !ok {
		return nil
	}

	var items []models.OrderItem

	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Error("Failed to parse stored cart, treating cart as empty", "error", err)
		return nil
	}

	return items
}

func (s *Store) persist(items []models.OrderItem) {
	raw, err := json.Marshal(items)

	if err != nil {
		s.logger.Error("Failed to encode cart", "error", err)
		return
	}

	if err := s.kv.Set(cartKey, string(raw)); err != nil {
		s.logger.Error("Failed to persist cart", "error", err)
	}
}

// Items returns the current cart lines.
func (s *Store) Items() []models.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Add puts a line in the cart, merging quantity into an existing line for the
// same product, size and color.
func (s *Store) Add(item models.OrderItem) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load()

	for i := range items {
		if sameLine(items[i], item) {
			items[i].Quantity += item.Quantity
			s.persist(items)
			return
		}
	}

	s.persist(append(items, item))
}

// UpdateQuantity sets the quantity of one line; zero or less removes it.
func (s *Store) UpdateQuantity(productID int, size, color string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load()

	for i := range items {
		if items[i].ProductID != productID || items[i].Size != size || items[i].Color != color {
			continue
		}

		if quantity <= 0 {
			s.persist(append(items[:i], items[i+1:]...))
			return
		}

		items[i].Quantity = quantity
		s.persist(items)
		return
	}
}

// Remove deletes one line.
func (s *Store) Remove(productID int, size, color string) {
	s.UpdateQuantity(productID, size, color, 0)
}

// Clear empties the cart. Invoked after a successful checkout and from the
// cart page; order history is untouched.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(cartKey); err != nil {
		s.logger.Error("Failed to clear cart", "error", err)
	}
}

func sameLine(a, b models.OrderItem) bool {
	return a.ProductID == b.ProductID && a.Size == b.Size && a.Color == b.Color
}
