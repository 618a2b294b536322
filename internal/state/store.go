package state

import (
	"sync"
	"sync/atomic"
)

// ReduceFunc computes the next state.
type ReduceFunc func(*State, Action) *State

// Dispatch sends an action through the middleware chain.
type Dispatch func(Action)

// Middleware wraps dispatch. getState returns the latest state and is safe to
// call before and after next.
type Middleware func(getState func() *State) func(next Dispatch) Dispatch

// Store owns one session's state. Dispatches are serialized; State may be
// read concurrently.
type Store struct {
	mu       sync.Mutex
	state    atomic.Pointer[State]
	reduce   ReduceFunc
	dispatch Dispatch

	subMu  sync.Mutex
	subs   map[int]func(*State)
	nextID int
}

// NewStore creates a store. Middleware runs in the order given, the first
// entry seeing the action first.
func NewStore(initial *State, reduce ReduceFunc, middleware ...Middleware) *Store {
	s := &Store{reduce: reduce, subs: map[int]func(*State){}}
	s.state.Store(initial)

	d := Dispatch(s.apply)
	for i := len(middleware) - 1; i >= 0; i-- {
		d = middleware[i](s.State)(d)
	}
	s.dispatch = d
	return s
}

// State returns the current state.
func (s *Store) State() *State {
	return s.state.Load()
}

// Dispatch applies an action. Calls from several goroutines are serialized.
// Middleware and subscribers must not call Dispatch re-entrantly.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch(a)
}

// Subscribe registers fn to run after every state change. The returned
// function removes it.
func (s *Store) Subscribe(fn func(*State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) apply(a Action) {
	prev := s.state.Load()
	next := s.reduce(prev, a)
	if next == prev {
		return
	}
	s.state.Store(next)

	s.subMu.Lock()
	fns := make([]func(*State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(next)
	}
}
