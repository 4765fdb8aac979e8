package cache

// ScopedKeyer wraps a Keyer with a prefix for per-user isolation. The
// server uses this so two users pushing topologies against the same
// Redis instance never share cache entries.
//
// Example usage:
//
//	// User-specific keys
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
//
//	// Shared keys (preset catalogs are the same for everyone)
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// PresetKey generates a prefixed key for a preset catalog.
func (k *ScopedKeyer) PresetKey(serverURL string) string {
	return k.prefix + k.inner.PresetKey(serverURL)
}

// ConfigKey generates a prefixed key for a runtime configuration.
func (k *ScopedKeyer) ConfigKey(serverURL string) string {
	return k.prefix + k.inner.ConfigKey(serverURL)
}

// TopologyKey generates a prefixed key for a topology snapshot.
func (k *ScopedKeyer) TopologyKey(pk string) string {
	return k.prefix + k.inner.TopologyKey(pk)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
