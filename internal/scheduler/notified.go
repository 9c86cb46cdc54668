package scheduler

import (
	"sort"
	"sync"
	"time"
)

// NotifiedSet holds the ids of events that already fired in this session.
// It is created with the scheduler and only cleared by Reset.
type NotifiedSet struct {
	mu  sync.RWMutex
	ids map[string]time.Time
}

func NewNotifiedSet() *NotifiedSet {
	return &NotifiedSet{ids: make(map[string]time.Time)}
}

func (s *NotifiedSet) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Mark records id as fired at at. It returns false if id had already fired.
func (s *NotifiedSet) Mark(id string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = at
	return true
}

// IDs returns the fired ids in sorted order.
func (s *NotifiedSet) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *NotifiedSet) FiredAt(id string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.ids[id]
	return at, ok
}

func (s *NotifiedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Reset forgets every fired id. Only a full application reset calls it.
func (s *NotifiedSet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]time.Time)
}
