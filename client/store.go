// Package client is a typed state layer for building bazaar frontends. It
// mirrors the shape of the web app's contexts: a generic reducer store,
// an auth store with persisted tokens, a product store for catalogue
// browsing and a theme store. No server packages are imported.
package client

import "sync"

// Reducer computes the next state from the current state and an action.
// Reducers must be pure: no I/O, no mutation of the incoming state.
type Reducer[S, A any] func(S, A) S

// Store holds a state value that only changes through Dispatch. Reads get
// a snapshot; subscribers are called after every transition.
type Store[S, A any] struct {
	mu     sync.RWMutex
	state  S
	reduce Reducer[S, A]
	subs   map[int]func(S)
	nextID int
}

func NewStore[S, A any](initial S, reduce Reducer[S, A]) *Store[S, A] {
	return &Store[S, A]{
		state:  initial,
		reduce: reduce,
		subs:   make(map[int]func(S)),
	}
}

// State returns the current state snapshot.
func (s *Store[S, A]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch runs the action through the reducer and notifies subscribers
// with the new state.
func (s *Store[S, A]) Dispatch(action A) {
	s.mu.Lock()
	s.state = s.reduce(s.state, action)
	next := s.state
	subs := make([]func(S), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Subscribe registers fn to run after every transition. The returned
// function unsubscribes.
func (s *Store[S, A]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
