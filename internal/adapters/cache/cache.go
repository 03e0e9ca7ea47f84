// Package cache holds short-lived known-word snapshots so stage
// classification and content generation do not hit the store on every
// request.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	"github.com/wiaanjvr/fluency-next-sub011/pkg/metrics"
)

const (
	defaultTTL         = 5 * time.Minute
	defaultMaxEntries  = 10_000
	countersPerEntry   = 10
	defaultBufferItems = 64
)

// Snapshot is one cached view of a learner's known words.
type Snapshot struct {
	Records  []model.WordKnowledgeRecord
	CachedAt time.Time
}

// KnownWords caches per-learner known-word snapshots with a TTL.
// Entries are invalidated explicitly after every write that can change
// a word's status, so a stale snapshot never outlives the TTL or the
// write that obsoleted it.
type KnownWords struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewKnownWords creates the snapshot cache.
func NewKnownWords(opts ...Option) (*KnownWords, error) {
	cfg := config{
		ttl:        defaultTTL,
		maxEntries: defaultMaxEntries,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.maxEntries * countersPerEntry,
		MaxCost:     cfg.maxEntries,
		BufferItems: defaultBufferItems,
	})
	if err != nil {
		return nil, err
	}

	return &KnownWords{cache: c, ttl: cfg.ttl}, nil
}

func snapshotKey(userID, language string) string {
	return userID + "|" + language
}

// Get returns the cached snapshot for the learner, if present.
func (k *KnownWords) Get(userID, language string) (Snapshot, bool) {
	v, ok := k.cache.Get(snapshotKey(userID, language))
	if !ok {
		metrics.RecordCacheMiss()
		return Snapshot{}, false
	}

	snap, ok := v.(Snapshot)
	if !ok {
		metrics.RecordCacheMiss()
		return Snapshot{}, false
	}

	metrics.RecordCacheHit()
	return snap, true
}

// Put stores a snapshot for the learner.
func (k *KnownWords) Put(userID, language string, records []model.WordKnowledgeRecord, now time.Time) {
	snap := Snapshot{Records: records, CachedAt: now}
	k.cache.SetWithTTL(snapshotKey(userID, language), snap, 1, k.ttl)
}

// Invalidate drops the learner's snapshot after a write.
func (k *KnownWords) Invalidate(userID, language string) {
	k.cache.Del(snapshotKey(userID, language))
	metrics.RecordCacheInvalidation()
}

// Wait blocks until pending writes are applied. Test hook.
func (k *KnownWords) Wait() {
	k.cache.Wait()
}

// Close releases the cache's internal goroutines.
func (k *KnownWords) Close() {
	k.cache.Close()
}
