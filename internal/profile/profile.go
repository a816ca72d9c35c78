package profile

import (
	"encoding/json"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/internal/storage"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

const profileKey = "userProfile"

// Store holds the customer profile. The cancellation paths read it to attach
// customer info to the orders they write.
type Store struct {
	kv     storage.Store
	logger logger.Logger
}

// NewStore creates a profile store.
func NewStore(kv storage.Store, log logger.Logger) *Store {
	return &Store{kv: kv, logger: log}
}

// Get returns the stored profile, if any.
func (s *Store) Get() (models.CustomerInfo, bool) {
	raw, ok := s.kv.Get(profileKey)

	if !ok {
		return models.CustomerInfo{}, false
	}

	var info models.CustomerInfo

	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		s.logger.Error("Failed to parse stored profile", "error", err)
		return models.CustomerInfo{}, false
	}

	return info, true
}

// Save stores the profile.
func (s *Store) Save(info models.CustomerInfo) {
	raw, err := json.Marshal(info)

	if err != nil {
		s.logger.Error("Failed to encode profile", "error", err)
		return
	}

	if err := s.kv.Set(profileKey, string(raw)); err != nil {
		s.logger.Error("Failed to persist profile", "error", err)
	}
}

// Logout wipes the whole local store: profile, cart, favorites and the order
// history alike.
func (s *Store) Logout() {
	if err := s.kv.Clear(); err != nil {
		s.logger.Error("Failed to wipe store on logout", "error", err)
	}

	s.logger.Info("Local store wiped on logout")
}
