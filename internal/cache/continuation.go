package cache

import "sync"

// Continuations holds the full text of truncated replies awaiting a MORE
// request, one slot per identity. Entries are single-use: Take removes the
// slot atomically, so two concurrent MORE requests for the same identity
// cannot both receive the text.
type Continuations struct {
	mu    sync.Mutex
	slots map[string]string
}

// NewContinuations creates an empty continuation store.
func NewContinuations() *Continuations {
	return &Continuations{slots: make(map[string]string)}
}

// Put stores the full text for identity, overwriting any pending entry.
func (s *Continuations) Put(identity, full string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[identity] = full
}

// Take reads and deletes the slot for identity in one locked step.
func (s *Continuations) Take(identity string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	full, ok := s.slots[identity]
	if ok {
		delete(s.slots, identity)
	}
	return full, ok
}

// Len returns the number of pending continuations.
func (s *Continuations) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Clear drops all pending continuations.
func (s *Continuations) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = make(map[string]string)
}
