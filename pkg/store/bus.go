package store

import (
	"context"
	"errors"
	"sync"

	"todo/pkg/reactive"
)

// Bus wraps a Store with in-process change notification.
// Every successful mutation signals all subscribers, which is what turns the
// plain queries into live streams.
type Bus struct {
	Store
	mu   sync.RWMutex
	subs map[chan struct{}]struct{}
}

// NewBus creates a Bus wrapping the given store.
func NewBus(store Store) *Bus {
	return &Bus{
		Store: store,
		subs:  make(map[chan struct{}]struct{}),
	}
}

// Subscribe returns a channel that receives a signal after every change.
// Signals coalesce: a subscriber that is behind sees one pending signal.
func (b *Bus) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan struct{}) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Notify signals every subscriber without changing anything, forcing live
// streams to re-read the table.
func (b *Bus) Notify() {
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
			// a signal is already pending
		}
	}
	b.mu.RUnlock()
}

// ObserveAll streams the full table: once now and again after every change.
func (b *Bus) ObserveAll(ctx context.Context) <-chan reactive.Item[[]Row] {
	sig := b.Subscribe()
	return reactive.Watch(ctx, sig, b.Store.All, func() { b.Unsubscribe(sig) })
}

// ObserveByID streams one row. A nil value means the row does not exist.
func (b *Bus) ObserveByID(ctx context.Context, id string) <-chan reactive.Item[*Row] {
	sig := b.Subscribe()
	query := func(ctx context.Context) (*Row, error) {
		r, err := b.Store.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return r, err
	}
	return reactive.Watch(ctx, sig, query, func() { b.Unsubscribe(sig) })
}

func (b *Bus) Upsert(ctx context.Context, r Row) error {
	if err := b.Store.Upsert(ctx, r); err != nil {
		return err
	}
	b.Notify()
	return nil
}

func (b *Bus) Update(ctx context.Context, id, title, description string) error {
	if err := b.Store.Update(ctx, id, title, description); err != nil {
		return err
	}
	b.Notify()
	return nil
}

func (b *Bus) SetCompleted(ctx context.Context, id string, completed bool) error {
	if err := b.Store.SetCompleted(ctx, id, completed); err != nil {
		return err
	}
	b.Notify()
	return nil
}

func (b *Bus) Delete(ctx context.Context, id string) (int, error) {
	n, err := b.Store.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	b.Notify()
	return n, nil
}

func (b *Bus) DeleteAll(ctx context.Context) error {
	if err := b.Store.DeleteAll(ctx); err != nil {
		return err
	}
	b.Notify()
	return nil
}

func (b *Bus) DeleteCompleted(ctx context.Context) (int, error) {
	n, err := b.Store.DeleteCompleted(ctx)
	if err != nil {
		return 0, err
	}
	b.Notify()
	return n, nil
}
