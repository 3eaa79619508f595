package analysis

import (
	"sort"
	"sync"
)

// AnalysisStore keeps the latest report of each network, indexed by
// network ID. It is safe for concurrent use.
type AnalysisStore struct {
	mu      sync.RWMutex
	reports map[int]*Report
}

func NewAnalysisStore() *AnalysisStore {
	return &AnalysisStore{reports: make(map[int]*Report)}
}

func (s *AnalysisStore) Set(networkID int, report *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[networkID] = report
}

func (s *AnalysisStore) Get(networkID int) (*Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[networkID]
	return report, ok
}

// All returns the stored reports ordered by network ID.
func (s *AnalysisStore) All() []*Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NetworkID < out[j].NetworkID })
	return out
}

// Retain drops the reports of networks not in ids and returns the dropped
// network IDs.
func (s *AnalysisStore) Retain(ids map[int]bool) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var dropped []int
	for id := range s.reports {
		if !ids[id] {
			delete(s.reports, id)
			dropped = append(dropped, id)
		}
	}
	sort.Ints(dropped)
	return dropped
}
