// Package localstore provides the durable per-device key/value cache.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is the narrow contract the sync layer needs from the device
// cache. Implementations guarantee round-trip value fidelity.
type Store interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(ctx context.Context, key string) ([]byte, bool, error)
	// SetItem stores the value under key, replacing any prior value.
	SetItem(ctx context.Context, key string, value []byte) error
	// RemoveItem deletes the key. Removing an absent key is not an
	// error.
	RemoveItem(ctx context.Context, key string) error
	// Keys lists every stored key.
	Keys(ctx context.Context) ([]string, error)
}

// GetJSON reads and decodes a stored JSON value.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var out T
	raw, ok, err := s.GetItem(ctx, key)
	if err != nil || !ok {
		return out, ok, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("decode %q: %w", key, err)
	}
	return out, true, nil
}

// SetJSON encodes and stores a value as JSON.
func SetJSON[T any](ctx context.Context, s Store, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.SetItem(ctx, key, raw)
}
