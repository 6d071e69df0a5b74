package entity

import (
	"sort"
	"sync"
)

// States is an in-memory StateWriter keyed by entity id.
type States struct {
	mu     sync.RWMutex
	states map[string]State
	writes int
}

// NewStates returns an empty store.
func NewStates() *States {
	return &States{states: make(map[string]State)}
}

// WriteState stores st, replacing the previous state of the same entity.
func (s *States) WriteState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[st.EntityID] = st
	s.writes++
}

// Get returns the state of one entity.
func (s *States) Get(entityID string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[entityID]
	return st, ok
}

// All returns every state sorted by entity id.
func (s *States) All() []State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]State, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

// Writes returns how many states have been written in total.
func (s *States) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
