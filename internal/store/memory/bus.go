package memory

import (
	"context"
	"sync"

	"notification_center/internal/repository"
)

const busBuffer = 64

// Bus is an in-process ChangeFeed. Every listener sees every published change,
// including its own; filtering by origin is the listener's job.
type Bus struct {
	mu        sync.RWMutex
	listeners map[chan repository.Change]struct{}
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[chan repository.Change]struct{})}
}

func (b *Bus) Publish(_ context.Context, change repository.Change) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.listeners {
		select {
		case ch <- change:
		default:
			// Drop for a stalled listener.
		}
	}
	return nil
}

func (b *Bus) Listen(ctx context.Context, handle func(repository.Change)) error {
	ch := make(chan repository.Change, busBuffer)
	b.mu.Lock()
	b.listeners[ch] = struct{}{}
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.listeners, ch)
		b.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change := <-ch:
			handle(change)
		}
	}
}

// Listeners reports how many Listen calls are active.
func (b *Bus) Listeners() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
