package repository

import "context"

// SlotStore is a string-keyed, string-valued persistent store. Each key holds
// one whole document that is overwritten on every write.
type SlotStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Change announces a write to a slot. A nil Value means the key was removed.
type Change struct {
	Key    string  `json:"key"`
	Value  *string `json:"value"`
	Origin string  `json:"origin"`
}

// ChangeFeed carries slot changes between instances sharing a SlotStore.
type ChangeFeed interface {
	Publish(ctx context.Context, change Change) error
	// Listen blocks, calling handle for every change, until ctx is done or
	// the transport fails.
	Listen(ctx context.Context, handle func(Change)) error
}
