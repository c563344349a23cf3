// Package nav passes data between views. A value staged by one view is
// consumed exactly once by the view it navigates to.
package nav

import gosync "sync"

// Slot holds at most one staged value of type T.
type Slot[T any] struct {
	mu     gosync.Mutex
	value  T
	staged bool
}

// Stage replaces any previously staged value with v.
func (s *Slot[T]) Stage(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.staged = true
}

// Take returns the staged value and empties the slot. ok is false when
// nothing was staged.
func (s *Slot[T]) Take() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.staged {
		return v, false
	}
	v, s.value, s.staged = s.value, *new(T), false
	return v, true
}

// Clear drops any staged value.
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value, s.staged = zero, false
}

// Pending reports whether a value is staged.
func (s *Slot[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staged
}
