package auth

import (
	"sync"

	"github.com/desertthunder/tunebook/internal/models"
)

// State is a snapshot of the process-wide session.
type State struct {
	User  *models.Identity `json:"user,omitempty"`
	Token string           `json:"token,omitempty"`
}

// Authenticated reports whether the state carries a user.
func (s State) Authenticated() bool {
	return s.User != nil && s.User.ID != ""
}

// UserID returns the current user's id or "".
func (s State) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// Session holds the current identity for the whole process and notifies subscribers when it changes.
//
// Subscribers are called synchronously, outside the lock, in subscription order.
type Session struct {
	mu    sync.RWMutex
	state State
	next  int
	subs  map[int]func(State)
	order []int
}

// NewSession creates an empty, logged out [Session].
func NewSession() *Session {
	return &Session{subs: map[int]func(State){}}
}

// Get returns the current state.
func (s *Session) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Set replaces the current state and notifies subscribers.
func (s *Session) Set(state State) {
	s.mu.Lock()
	s.state = state
	subs := s.snapshot()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// Clear logs the process out and notifies subscribers so user-scoped state can be dropped.
func (s *Session) Clear() {
	s.Set(State{})
}

// Subscribe registers fn for every future change. The returned function removes the subscription.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.subs[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// snapshot copies the subscriber list; callers hold the lock.
func (s *Session) snapshot() []func(State) {
	subs := make([]func(State), 0, len(s.order))
	for _, id := range s.order {
		subs = append(subs, s.subs[id])
	}
	return subs
}
