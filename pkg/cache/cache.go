// Package cache provides pluggable caching for server responses and
// derived artifacts. The CLI uses a file-backed cache under the user's
// cache directory; the reference server uses the Redis backend; the
// null backend disables caching entirely.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTLs.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// an expired or missing entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Keyer generates cache keys for the things qtopo caches. Centralizing
// key construction keeps the CLI and the server from drifting apart on
// key formats.
type Keyer interface {
	// HTTPKey generates a key for a cached HTTP response.
	HTTPKey(namespace, key string) string

	// PresetKey generates a key for a server's connection preset catalog.
	PresetKey(serverURL string) string

	// ConfigKey generates a key for a server's runtime configuration.
	ConfigKey(serverURL string) string

	// TopologyKey generates a key for a stored topology snapshot.
	TopologyKey(pk string) string
}

// DefaultKeyer is the standard key generator. Keys are
// "<prefix>:<sha256(parts)>" so arbitrary inputs (URLs, ids) never leak
// filesystem- or redis-hostile characters into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return hashKey("http:"+namespace, key)
}

// PresetKey generates a key for the preset catalog of a server.
func (k *DefaultKeyer) PresetKey(serverURL string) string {
	return hashKey("presets", serverURL)
}

// ConfigKey generates a key for the runtime configuration of a server.
func (k *DefaultKeyer) ConfigKey(serverURL string) string {
	return hashKey("config", serverURL)
}

// TopologyKey generates a key for a topology snapshot.
func (k *DefaultKeyer) TopologyKey(pk string) string {
	return hashKey("topology", pk)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
