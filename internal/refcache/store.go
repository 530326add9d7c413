package refcache

import "sync/atomic"

// Store holds the live Generation behind a single atomically-replaceable
// reference. Reads are wait-free; Install is an atomic publish with
// last-writer-wins semantics. Refresh execution (compute-and-install) is
// serialized by the cache, not by the store.
type Store struct {
	current atomic.Pointer[Generation]
}

// NewStore creates a store with an empty generation installed, so Current
// never returns nil.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(emptyGeneration())
	return s
}

// Current returns the most recently installed generation.
func (s *Store) Current() *Generation {
	return s.current.Load()
}

// Install atomically publishes g as the live generation. All subsequent
// Current calls observe it.
func (s *Store) Install(g *Generation) {
	s.current.Store(g)
}
