package auth

import (
	"errors"
	"sync"
)

// ErrSlotUnavailable is returned by a slot whose backing storage is gone.
var ErrSlotUnavailable = errors.New("identity storage unavailable")

// Slot is the shared storage slot the auth provider integration writes the
// current user id into. An empty value means logged out.
type Slot interface {
	Read() (string, error)
}

// Watchable slots push a notification whenever their value is written,
// the equivalent of a cross-tab storage event.
type Watchable interface {
	Watch(fn func()) (cancel func())
}

// MemorySlot is an in-process Slot shared by every tab of one browser
// session.
type MemorySlot struct {
	mu       sync.Mutex
	value    string
	err      error
	watchers map[int]func()
	next     int
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{watchers: make(map[int]func())}
}

func (s *MemorySlot) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.value, nil
}

// Set stores the user id written on login.
func (s *MemorySlot) Set(userID string) {
	s.write(func() { s.value = userID })
}

// Clear removes the user id on logout.
func (s *MemorySlot) Clear() {
	s.write(func() { s.value = "" })
}

// Break makes every later Read fail with ErrSlotUnavailable.
func (s *MemorySlot) Break() {
	s.write(func() { s.err = ErrSlotUnavailable })
}

func (s *MemorySlot) write(mutate func()) {
	s.mu.Lock()
	mutate()
	watchers := make([]func(), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn()
	}
}

func (s *MemorySlot) Watch(fn func()) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}
