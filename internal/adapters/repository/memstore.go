package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
)

const defaultShardCount = 16

// recordKey is the natural key of a record.
func recordKey(userID, language, lemma string) string {
	return userID + "\x1f" + language + "\x1f" + lemma
}

type memShard struct {
	mu      sync.RWMutex
	records map[string]model.WordKnowledgeRecord
}

// MemStore is a sharded in-memory Store. Version checks happen under the
// shard lock of the record's key, which serializes writers of the same
// record while leaving unrelated records uncontended.
type MemStore struct {
	shards     []*memShard
	shardCount int
}

// MemOption applies a configuration option to the MemStore.
type MemOption func(*MemStore)

// WithMemShardCount sets the number of internal shards.
func WithMemShardCount(count int) MemOption {
	return func(s *MemStore) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{shardCount: defaultShardCount}

	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*memShard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &memShard{records: make(map[string]model.WordKnowledgeRecord)}
	}

	return s
}

func (s *MemStore) shardFor(key string) *memShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[int(h.Sum32())%len(s.shards)]
}

// Get returns the record for the natural key.
func (s *MemStore) Get(_ context.Context, userID, language, lemma string) (model.WordKnowledgeRecord, error) {
	key := recordKey(userID, language, lemma)
	sh := s.shardFor(key)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, ok := sh.records[key]
	if !ok {
		return model.WordKnowledgeRecord{}, ErrNotFound
	}
	return rec.Clone(), nil
}

// Create inserts a new record at version 1.
func (s *MemStore) Create(_ context.Context, rec model.WordKnowledgeRecord) (model.WordKnowledgeRecord, error) {
	if err := rec.CheckInvariants(); err != nil {
		return model.WordKnowledgeRecord{}, err
	}

	key := recordKey(rec.UserID, rec.Language, rec.Lemma)
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, exists := sh.records[key]; exists {
		return model.WordKnowledgeRecord{}, ErrAlreadyExists
	}

	stored := rec.Clone()
	stored.Version = 1
	sh.records[key] = stored
	return stored.Clone(), nil
}

// Update applies rec if the stored version matches rec.Version.
func (s *MemStore) Update(_ context.Context, rec model.WordKnowledgeRecord) (model.WordKnowledgeRecord, error) {
	if err := rec.CheckInvariants(); err != nil {
		return model.WordKnowledgeRecord{}, err
	}

	key := recordKey(rec.UserID, rec.Language, rec.Lemma)
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	current, exists := sh.records[key]
	if !exists {
		return model.WordKnowledgeRecord{}, ErrNotFound
	}
	if current.Version != rec.Version {
		return model.WordKnowledgeRecord{}, ErrVersionConflict
	}

	stored := rec.Clone()
	stored.Version = rec.Version + 1
	sh.records[key] = stored
	return stored.Clone(), nil
}

// ListByUser returns every record for one learning track.
func (s *MemStore) ListByUser(_ context.Context, userID, language string) ([]model.WordKnowledgeRecord, error) {
	var out []model.WordKnowledgeRecord
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, rec := range sh.records {
			if rec.UserID == userID && rec.Language == language {
				out = append(out, rec.Clone())
			}
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

// DueWords returns up to limit due records, hardest first.
func (s *MemStore) DueWords(ctx context.Context, userID, language string, now time.Time, limit int) ([]model.WordKnowledgeRecord, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	all, err := s.ListByUser(ctx, userID, language)
	if err != nil {
		return nil, err
	}

	var due []model.WordKnowledgeRecord
	for _, rec := range all {
		if rec.DueAt(now) {
			due = append(due, rec)
		}
	}

	SortDue(due)

	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// CountAtLeast counts records with status at or above min.
func (s *MemStore) CountAtLeast(_ context.Context, userID, language string, min model.Status) (int, error) {
	count := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, rec := range sh.records {
			if rec.UserID == userID && rec.Language == language && rec.Status >= min {
				count++
			}
		}
		sh.mu.RUnlock()
	}
	return count, nil
}

// Learners enumerates every tracked (user, language) pair.
func (s *MemStore) Learners(_ context.Context) ([]Learner, error) {
	seen := make(map[Learner]struct{})
	var out []Learner
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, rec := range sh.records {
			l := Learner{UserID: rec.UserID, Language: rec.Language}
			if _, ok := seen[l]; !ok {
				seen[l] = struct{}{}
				out = append(out, l)
			}
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

// SortDue orders due records by review priority: never-reviewed words
// first, then the lowest ease factor (hardest words), then the earliest
// due time.
func SortDue(records []model.WordKnowledgeRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if (a.Repetitions == 0) != (b.Repetitions == 0) {
			return a.Repetitions == 0
		}
		if a.EaseFactor != b.EaseFactor {
			return a.EaseFactor < b.EaseFactor
		}
		return a.NextReviewAt.Before(b.NextReviewAt)
	})
}
