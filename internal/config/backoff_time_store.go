package config

import (
	"sync"
	"time"
)

const (
	BASE_BACKOFF   = 1 * time.Second
	MAX_BACKOFF    = 2 * time.Minute
	BACKOFF_FACTOR = 2.0
	JITTER_FACTOR  = 0.5
)

type backoffData struct {
	BackoffDelay time.Duration
	NextRetryAt  time.Time
}

// BackoffStore tracks, per network ID, when a network that failed to load
// may be tried again.
type BackoffStore struct {
	mu       sync.RWMutex
	backoffs map[int]backoffData
	now      func() time.Time
}

func NewBackoffStore() *BackoffStore {
	return &BackoffStore{
		backoffs: make(map[int]backoffData),
		now:      time.Now,
	}
}

func (s *BackoffStore) NextRetryAt(networkID int) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if backoff, exists := s.backoffs[networkID]; exists {
		return backoff.NextRetryAt.UTC(), true
	}
	return time.Time{}, false
}

// ShouldRetry reports whether the network has no pending backoff or its
// backoff has elapsed.
func (s *BackoffStore) ShouldRetry(networkID int) bool {
	next, ok := s.NextRetryAt(networkID)
	return !ok || !s.now().Before(next)
}

// UpdateBackoff records a failure and pushes the next retry further out.
func (s *BackoffStore) UpdateBackoff(networkID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backoff, exists := s.backoffs[networkID]
	if exists {
		backoff.BackoffDelay = calculateNewBackoffDelay(backoff.BackoffDelay)
	} else {
		backoff.BackoffDelay = BASE_BACKOFF
	}
	backoff.NextRetryAt = s.now().Add(withJitter(backoff.BackoffDelay)).UTC()
	s.backoffs[networkID] = backoff
}

func (s *BackoffStore) ResetBackoff(networkID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.backoffs, networkID)
}

func calculateNewBackoffDelay(backoffDelay time.Duration) time.Duration {
	backoffDelay *= BACKOFF_FACTOR
	if backoffDelay >= MAX_BACKOFF {
		backoffDelay = MAX_BACKOFF
	}
	return backoffDelay
}
