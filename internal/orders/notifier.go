package orders

import "github.com/devnazarchuk/sneakers-shop/internal/models"

// Subscribe registers fn to receive the full collection after every mutation
// and returns an unsubscribe handle. Subscribers replace their local copy
// outright; there is no incremental diffing contract.
func (s *Store) Subscribe(fn func([]models.Order)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()

		delete(s.subs, id)
	}
}

func (s *Store) broadcast(orders []models.Order) {
	s.subMu.Lock()
	subs := make([]func([]models.Order), 0, len(s.subs))

	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(orders)
	}
}
