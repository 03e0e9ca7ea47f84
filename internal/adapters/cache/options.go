package cache

import "time"

type config struct {
	ttl        time.Duration
	maxEntries int64
}

// Option applies a configuration option to the cache.
type Option func(*config)

// WithTTL sets how long a snapshot stays valid.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the number of cached snapshots.
func WithMaxEntries(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}
