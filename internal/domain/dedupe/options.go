// Package dedupe implements the cross-module review deduplication guard.
package dedupe

import "time"

// Option applies a configuration option to the InMemoryGuard.
type Option func(*InMemoryGuard)

// WithWindow sets the suppression window.
func WithWindow(window time.Duration) Option {
	return func(g *InMemoryGuard) {
		if window > 0 {
			g.window = window
		}
	}
}

// WithShardCount sets the number of internal shards.
func WithShardCount(count int) Option {
	return func(g *InMemoryGuard) {
		if count > 0 {
			g.shardCount = count
		}
	}
}

// WithMaxPerShard bounds how many markers a shard keeps before expired
// entries are pruned.
func WithMaxPerShard(maxSize int) Option {
	return func(g *InMemoryGuard) {
		if maxSize > 0 {
			g.maxPerShard = maxSize
		}
	}
}

// WithClock overrides the time source. Tests use this to move through the
// window without sleeping.
func WithClock(now func() time.Time) Option {
	return func(g *InMemoryGuard) {
		if now != nil {
			g.now = now
		}
	}
}
