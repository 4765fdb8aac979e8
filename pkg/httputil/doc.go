// Package httputil provides HTTP utilities for the topology server client.
//
// # Overview
//
// This package provides infrastructure shared by everything that talks
// to a topology server:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores HTTP responses in the filesystem (~/.cache/qtopo/)
// with configurable TTL. Preset catalogs and runtime configuration
// rarely change, so caching them avoids a round trip on every command.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	var presets []topology.Preset
//	if ok, _ := cache.Get("presets:"+serverURL, &presets); !ok {
//	    presets = fetchFromServer()
//	    cache.Set("presets:"+serverURL, presets)
//	}
//
// Cache keys should be namespaced by server to avoid collisions.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Wrap the transient error in [RetryableError] so Retry knows to attempt
// the operation again:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    ...
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/qtopo/
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `qtopo cache clear` or by deleting the
// cache directory.
package httputil
