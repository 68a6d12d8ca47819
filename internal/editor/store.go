package editor

import "sync"

// Store serialises dispatches against one plan document. HTTP handlers for
// the same draft may race; the mutex guarantees each action sees the state
// the previous one produced.
type Store struct {
	mu    sync.Mutex
	state State
}

// NewStore wraps an initial document snapshot.
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// Dispatch applies one action and reports whether it applied.
func (s *Store) Dispatch(action Action) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, result := Apply(s.state, action)
	s.state = next
	return result
}

// State returns the current snapshot. Snapshots are deep copies, so callers
// may keep them across later dispatches.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}
