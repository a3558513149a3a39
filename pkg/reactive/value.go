// Package reactive provides the small set of stream primitives the view-models
// are built from: a state holder with conflating subscriptions, a stream item
// that carries either a value or a terminal error, and live-query helpers.
package reactive

import "sync"

// Value holds the latest value of some state and pushes changes to subscribers.
// Subscribers always see the most recent value; intermediate values may be
// skipped when a subscriber is slower than the writer.
type Value[T any] struct {
	mu   sync.Mutex
	v    T
	subs map[chan T]struct{}
}

// NewValue creates a Value holding init.
func NewValue[T any](init T) *Value[T] {
	return &Value[T]{
		v:    init,
		subs: make(map[chan T]struct{}),
	}
}

// Get returns the current value.
func (s *Value[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}

// Set replaces the current value and notifies subscribers.
func (s *Value[T]) Set(v T) {
	s.mu.Lock()
	s.v = v
	for ch := range s.subs {
		offer(ch, v)
	}
	s.mu.Unlock()
}

// Update applies f to the current value atomically and notifies subscribers.
func (s *Value[T]) Update(f func(T) T) T {
	s.mu.Lock()
	s.v = f(s.v)
	v := s.v
	for ch := range s.subs {
		offer(ch, v)
	}
	s.mu.Unlock()
	return v
}

// Subscribe returns a channel that immediately yields the current value and
// then every later value. The returned cancel func closes the channel.
func (s *Value[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)
	s.mu.Lock()
	ch <- s.v
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// offer replaces any undelivered value in ch with v. Writers are serialized
// by the owning mutex, so the send never blocks.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}
