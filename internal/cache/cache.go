package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Cache stores rendered output by key.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error

	// Purge removes every entry.
	Purge(ctx context.Context) error

	// Close releases the cache's resources.
	Close() error
}

// Key derives a cache key from a template's source and the scope it is
// rendered with. Scopes are encoded as JSON, whose object keys are
// sorted, so equal scopes give equal keys.
func Key(source []byte, scope any) (string, error) {
	data, err := json.Marshal(scope)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	h := sha256.New()
	h.Write(source)
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
