package view

import (
	"context"
	"sync"
)

// Optimistic holds a value that is updated locally before the server
// confirms it. A failed write restores the previous value unless a newer
// write or reset happened in the meantime.
type Optimistic[T any] struct {
	mu      sync.Mutex
	value   T
	version uint64
}

func (o *Optimistic[T]) Value() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Reset replaces the value with an authoritative one, e.g. after a load.
func (o *Optimistic[T]) Reset(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.value = v
	o.version++
}

// Apply shows next immediately and then calls write. On failure the value
// is rolled back and write's error returned.
func (o *Optimistic[T]) Apply(ctx context.Context, next T, write func(context.Context, T) error) error {
	return o.Update(ctx, func(T) T { return next }, write)
}

// Update is Apply with next computed from the current value under the lock.
func (o *Optimistic[T]) Update(ctx context.Context, change func(T) T, write func(context.Context, T) error) error {
	o.mu.Lock()
	prev := o.value
	next := change(prev)
	o.value = next
	o.version++
	version := o.version
	o.mu.Unlock()

	err := write(ctx, next)
	if err == nil {
		return nil
	}

	o.mu.Lock()
	if o.version == version {
		o.value = prev
	}
	o.mu.Unlock()
	return err
}
