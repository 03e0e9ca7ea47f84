// Package dedupe implements the cross-module review deduplication guard.
//
// A word recognized in a conversation and reviewed in a flashcard deck
// seconds later is one piece of evidence, not two. The guard remembers the
// most recent observation per (user, word) pair and reports whether a new
// observation falls inside the suppression window. It is a gate, not a
// ledger: the marker is overwritten on every observation, scored or not.
package dedupe

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
)

// DefaultWindow is the span within which repeat observations of the same
// word count as corroboration rather than new evidence.
const DefaultWindow = 2 * time.Hour

const (
	defaultShardCount   = 16
	defaultMaxPerShard  = 32768
	pruneCheckThreshold = 1024 // prune a shard once it grows past this
)

// Guard gates scheduling updates for near-simultaneous reviews.
type Guard interface {
	// CheckAndRecord atomically reports whether an observation for the
	// (userID, wordKey) pair was recorded within the window and stores e as
	// the new last-seen marker. The check and the write are a single
	// operation: of two racing events, exactly one sees seen=false.
	CheckAndRecord(ctx context.Context, userID, wordKey string, e model.ReviewEvent) (bool, error)

	// WasReviewedRecently reports whether any observation for the pair is
	// inside the window, without recording anything.
	WasReviewedRecently(ctx context.Context, userID, wordKey string) (bool, error)

	// LastReview returns the most recent observation for the pair, if any.
	LastReview(ctx context.Context, userID, wordKey string) (model.ReviewEvent, bool, error)

	// Forget drops the marker for the pair, re-opening the gate. Used when
	// an event passed the gate but failed to persist.
	Forget(ctx context.Context, userID, wordKey string) error
}

// marker is the per-pair last-seen state.
type marker struct {
	event    model.ReviewEvent
	storedAt time.Time
}

type shard struct {
	mu      sync.RWMutex
	markers map[string]marker
}

// InMemoryGuard implements Guard with sharded maps. Shards keep lock scope
// narrow so concurrent reviews of different words never contend.
type InMemoryGuard struct {
	window      time.Duration
	shards      []*shard
	shardCount  int
	maxPerShard int
	size        atomic.Int64
	now         func() time.Time
}

// NewInMemoryGuard creates an in-memory guard with configuration options.
func NewInMemoryGuard(opts ...Option) *InMemoryGuard {
	g := &InMemoryGuard{
		window:      DefaultWindow,
		shardCount:  defaultShardCount,
		maxPerShard: defaultMaxPerShard,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.shards = make([]*shard, g.shardCount)
	for i := range g.shards {
		g.shards[i] = &shard{markers: make(map[string]marker)}
	}

	return g
}

// Window returns the configured suppression window.
func (g *InMemoryGuard) Window() time.Duration {
	return g.window
}

func (g *InMemoryGuard) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return g.shards[int(h.Sum32())%len(g.shards)]
}

func pairKey(userID, wordKey string) string {
	return userID + "\x1f" + wordKey
}

// CheckAndRecord atomically checks the window and overwrites the marker.
func (g *InMemoryGuard) CheckAndRecord(_ context.Context, userID, wordKey string, e model.ReviewEvent) (bool, error) {
	key := pairKey(userID, wordKey)
	sh := g.shardFor(key)
	now := g.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	prev, exists := sh.markers[key]
	seen := exists && now.Sub(prev.storedAt) < g.window

	sh.markers[key] = marker{event: e, storedAt: now}
	if !exists {
		g.size.Add(1)
	}

	if len(sh.markers) > pruneCheckThreshold && len(sh.markers) > g.maxPerShard {
		g.pruneLocked(sh, now)
	}

	return seen, nil
}

// WasReviewedRecently reports whether the pair's marker is inside the window.
func (g *InMemoryGuard) WasReviewedRecently(_ context.Context, userID, wordKey string) (bool, error) {
	key := pairKey(userID, wordKey)
	sh := g.shardFor(key)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	prev, exists := sh.markers[key]
	return exists && g.now().Sub(prev.storedAt) < g.window, nil
}

// LastReview returns the most recent observation for the pair.
func (g *InMemoryGuard) LastReview(_ context.Context, userID, wordKey string) (model.ReviewEvent, bool, error) {
	key := pairKey(userID, wordKey)
	sh := g.shardFor(key)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	prev, exists := sh.markers[key]
	if !exists {
		return model.ReviewEvent{}, false, nil
	}
	return prev.event, true, nil
}

// Forget drops the marker for the pair.
func (g *InMemoryGuard) Forget(_ context.Context, userID, wordKey string) error {
	key := pairKey(userID, wordKey)
	sh := g.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, exists := sh.markers[key]; exists {
		delete(sh.markers, key)
		g.size.Add(-1)
	}
	return nil
}

// Size returns the number of tracked pairs, expired markers included.
func (g *InMemoryGuard) Size() int64 {
	return g.size.Load()
}

// pruneLocked drops expired markers. Must be called with sh.mu held.
func (g *InMemoryGuard) pruneLocked(sh *shard, now time.Time) {
	for key, m := range sh.markers {
		if now.Sub(m.storedAt) >= g.window {
			delete(sh.markers, key)
			g.size.Add(-1)
		}
	}
}
