package favorites

import (
	"encoding/json"
	"sync"

	"github.com/devnazarchuk/sneakers-shop/internal/storage"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

const favoritesKey = "favorites"

// Store holds the favorited product ids.
type Store struct {
	kv     storage.Store
	logger logger.Logger
	mu     sync.Mutex
}

// NewStore creates a favorites store.
func NewStore(kv storage.Store, log logger.Logger) *Store {
	return &Store{kv: kv, logger: log}
}

func (s *Store) load() []int {
	raw, ok := s.kv.Get(favoritesKey)

	if !ok {
		return nil
	}

	var ids []int

	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.logger.Error("Failed to parse stored favorites", "error", err)
		return nil
	}

	return ids
}

func (s *Store) persist(ids []int) {
	raw, err := json.Marshal(ids)

	if err != nil {
		s.logger.Error("Failed to encode favorites", "error", err)
		return
	}

	if err := s.kv.Set(favoritesKey, string(raw)); err != nil {
		s.logger.Error("Failed to persist favorites", "error", err)
	}
}

// List returns the favorited product ids.
func (s *Store) List() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Toggle flips one product and reports whether it is now a favorite.
func (s *Store) Toggle(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.load()

	for i, id := range ids {
		if id == productID {
			s.persist(append(ids[:i], ids[i+1:]...))
			return false
		}
	}

	s.persist(append(ids, productID))
	return true
}
