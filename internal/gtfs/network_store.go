package gtfs

import (
	"sync"

	"netcover.onebusaway.org/internal/models"
)

// NetworkStore is a thread-safe in-memory store for loaded network records,
// indexed by network ID.
type NetworkStore struct {
	mu   sync.RWMutex
	data map[int]*models.NetworkData
}

// NewNetworkStore returns an empty store. The underlying map is lazily
// initialized on first use in Set.
func NewNetworkStore() *NetworkStore {
	return &NetworkStore{}
}

// Set stores the records of the given network, replacing previous ones.
func (s *NetworkStore) Set(networkID int, newData *models.NetworkData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[int]*models.NetworkData)
	}
	s.data[networkID] = newData
}

// Get retrieves the records of the given network.
func (s *NetworkStore) Get(networkID int) (*models.NetworkData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, exists := s.data[networkID]
	return data, exists
}

// Delete removes the records of the given network.
func (s *NetworkStore) Delete(networkID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, networkID)
}
